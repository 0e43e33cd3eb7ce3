// Package api exposes the question bank and paper composition over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/render"
	"github.com/abhisek/qbank/internal/store"
	"github.com/abhisek/qbank/internal/taxonomy"
)

// Deps are the services the handlers call.
type Deps struct {
	Bank     *bank.Service
	Taxonomy *taxonomy.Index
	Papers   store.PaperRepo
	Layout   render.Layout
	Logger   *slog.Logger

	// AllowOrigins lists CORS origins. Empty allows any origin.
	AllowOrigins []string
}

// Server holds the handler dependencies.
type Server struct {
	bank   *bank.Service
	tax    *taxonomy.Index
	papers store.PaperRepo
	layout render.Layout
	log    *slog.Logger
}

// NewRouter builds the gin engine with every /api/v1 route registered.
func NewRouter(d Deps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{bank: d.Bank, tax: d.Taxonomy, papers: d.Papers, layout: d.Layout, log: log}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if len(d.AllowOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = d.AllowOrigins
	}
	r.Use(cors.New(cc))

	api := r.Group("/api/v1")
	{
		tax := api.Group("/taxonomy")
		{
			tax.GET("/segments", s.ListSegments)
			tax.GET("/segments/:id/groups", s.ListGroups)
			tax.GET("/groups/:id/subjects", s.ListSubjects)
		}

		api.GET("/tags", s.SuggestTags)

		questions := api.Group("/questions")
		{
			questions.GET("", s.FindQuestions)
			questions.POST("", s.CreateQuestion)
			questions.GET("/:id", s.GetQuestion)
			questions.PUT("/:id", s.UpdateQuestion)
			questions.DELETE("/:id", s.DeleteQuestion)
		}

		papers := api.Group("/papers")
		{
			papers.GET("", s.ListPapers)
			papers.POST("", s.CreatePaper)
			papers.GET("/:id", s.GetPaper)
			papers.GET("/:id/print", s.PrintPaper)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "route not found"})
	})
	return r
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
