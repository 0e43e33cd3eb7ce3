package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListSegments(c *gin.Context) {
	segs, err := s.tax.ListSegments(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, segs)
}

func (s *Server) ListGroups(c *gin.Context) {
	groups, err := s.tax.ListGroups(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (s *Server) ListSubjects(c *gin.Context) {
	subjects, err := s.tax.ListSubjects(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// SuggestTags answers GET /tags?q=<partial>&exclude=a,b. Exclusions may
// also be repeated.
func (s *Server) SuggestTags(c *gin.Context) {
	idx, err := s.bank.Tags(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	var exclude []string
	for _, v := range c.QueryArray("exclude") {
		exclude = append(exclude, strings.Split(v, ",")...)
	}
	out := idx.Suggest(c.Query("q"), exclude)
	if out == nil {
		out = []string{}
	}
	c.JSON(http.StatusOK, out)
}
