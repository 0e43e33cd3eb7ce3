package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/render"
)

// PaperRequest composes a paper from stored questions, in order. Marks
// overrides the question's own total when set.
type PaperRequest struct {
	Meta      composer.Meta `json:"meta"`
	Questions []PaperItem   `json:"questions" binding:"dive"`
}

// PaperItem selects one question.
type PaperItem struct {
	ID    string `json:"id" binding:"required"`
	Marks *int   `json:"marks"`
}

// PaperSummary is a row of GET /papers.
type PaperSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TotalMarks int    `json:"totalMarks"`
	Questions  int    `json:"questions"`
	CreatedAt  string `json:"createdAt"`
}

func (s *Server) ListPapers(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return
	}
	rows, err := s.papers.List(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]PaperSummary, len(rows))
	for i, r := range rows {
		out[i] = PaperSummary{
			ID:         r.ID,
			Title:      r.Title,
			TotalMarks: r.TotalMarks,
			Questions:  r.Questions,
			CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, out)
}

// CreatePaper runs the request through a Composer, so marks overrides,
// ordering and save-time checks behave as in the terminal UI.
func (s *Server) CreatePaper(c *gin.Context) {
	var req PaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	comp := composer.New()
	comp.SetMeta(req.Meta)

	var fields []bank.FieldError
	for i, item := range req.Questions {
		field := fmt.Sprintf("questions[%d].id", i)
		q, err := s.bank.Get(ctx, item.ID)
		if errors.Is(err, bank.ErrNotFound) {
			fields = append(fields, bank.FieldError{Field: field, Error: "no such question"})
			continue
		}
		if err != nil {
			s.writeError(c, err)
			return
		}
		if !comp.Add(*q) {
			fields = append(fields, bank.FieldError{Field: field, Error: "selected twice"})
			continue
		}
		if item.Marks != nil {
			comp.SetMarks(q.ID, *item.Marks)
		}
	}
	if len(fields) > 0 {
		s.writeError(c, &bank.ValidationError{Fields: fields})
		return
	}

	p, err := comp.Save(ctx, s.papers)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.log.Info("paper saved", "id", p.ID, "questions", len(p.Entries), "total_marks", p.TotalMarks)
	c.JSON(http.StatusCreated, p)
}

func (s *Server) GetPaper(c *gin.Context) {
	p, err := s.papers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PrintPaper renders a saved paper as plain text. width and height query
// parameters override the configured layout.
func (s *Server) PrintPaper(c *gin.Context) {
	layout := s.layout
	var ok bool
	if layout.Width, ok = queryInt(c, "width", layout.Width); !ok {
		return
	}
	if layout.PageHeight, ok = queryInt(c, "height", layout.PageHeight); !ok {
		return
	}

	p, err := s.papers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(render.Render(*p, layout)))
}
