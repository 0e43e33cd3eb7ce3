package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/taxonomy"
)

// CreatedResponse carries the id of a new record.
type CreatedResponse struct {
	ID string `json:"id"`
}

// FindQuestions answers GET /questions with the filters segment, group,
// subject, type, tag and q, paged by page (0-based) and size.
func (s *Server) FindQuestions(c *gin.Context) {
	page, ok := queryInt(c, "page", 0)
	if !ok {
		return
	}
	size, ok := queryInt(c, "size", bank.DefaultPageSize)
	if !ok {
		return
	}

	f := bank.Filter{
		Classification: taxonomy.Classification{
			SegmentID: c.Query("segment"),
			GroupID:   c.Query("group"),
			SubjectID: c.Query("subject"),
		},
		Tag:  c.Query("tag"),
		Text: c.Query("q"),
	}
	if raw := c.Query("type"); raw != "" {
		k, err := question.ParseKind(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		f.Kind = k
	}

	res, err := s.bank.Find(c.Request.Context(), f, bank.Page{Number: page, Size: size})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) GetQuestion(c *gin.Context) {
	q, err := s.bank.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) CreateQuestion(c *gin.Context) {
	var q question.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	id, err := s.bank.Create(c.Request.Context(), q)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

func (s *Server) UpdateQuestion(c *gin.Context) {
	var q question.Question
	if err := c.ShouldBindJSON(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	if err := s.bank.Update(ctx, id, q); err != nil {
		s.writeError(c, err)
		return
	}
	updated, err := s.bank.Get(ctx, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteQuestion(c *gin.Context) {
	if err := s.bank.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
