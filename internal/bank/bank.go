// Package bank is the question repository service: validation, passage
// rules and filtered lookup on top of the store.
package bank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/store"
	"github.com/abhisek/qbank/internal/tags"
	"github.com/abhisek/qbank/internal/taxonomy"
)

// DefaultPageSize is used when a Page has no size.
const DefaultPageSize = 10

// Filter narrows Find. Empty fields do not filter.
type Filter struct {
	Classification taxonomy.Classification `json:"classification"`
	Kind           question.Kind           `json:"type,omitempty"`
	Tag            string                  `json:"tag,omitempty"`
	Text           string                  `json:"text,omitempty"`
}

// Page selects a window of results. Number is 0-based.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"size"`
}

// Result is one page of top-level questions and the total match count.
type Result struct {
	Records []question.Question `json:"records"`
	Total   int                 `json:"total"`
}

// Service validates and stores questions.
type Service struct {
	repo     store.QuestionRepo
	taxonomy *taxonomy.Index
	log      *slog.Logger
}

// New creates a Service. A nil taxonomy index skips hierarchy agreement
// checks; a nil logger discards logs.
func New(repo store.QuestionRepo, tax *taxonomy.Index, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, taxonomy: tax, log: log}
}

// Validate returns a *ValidationError describing every problem with q, or
// nil. It never touches the store except to check the classification
// against the taxonomy.
func (s *Service) Validate(ctx context.Context, q question.Question) error {
	fields := check(q)
	if len(fields) == 0 && s.taxonomy != nil && (q.Classification.GroupID != "" || q.Classification.SubjectID != "") {
		ok, err := s.taxonomy.Agrees(ctx, q.Classification)
		if err != nil {
			return &PersistenceError{Op: "validate", Err: err}
		}
		if !ok {
			fields = append(fields, FieldError{Field: "classification", Error: "does not match the taxonomy"})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Create validates q and stores it with everything it owns. Passage marks
// are stored as 0 whatever the input.
func (s *Service) Create(ctx context.Context, q question.Question) (string, error) {
	rec := prepare(q)
	if err := s.Validate(ctx, rec); err != nil {
		return "", err
	}
	if err := s.repo.Create(ctx, &rec); err != nil {
		s.log.Error("create question failed", "err", err)
		return "", &PersistenceError{Op: "create", Err: err}
	}
	s.log.Info("question created", "id", rec.ID, "type", rec.Kind, "children", len(rec.Children))
	return rec.ID, nil
}

// Update replaces question id with q. Options, tags and children are
// replaced as a whole; children receive fresh ids.
func (s *Service) Update(ctx context.Context, id string, q question.Question) error {
	rec := prepare(q)
	rec.ID = id
	if err := s.Validate(ctx, rec); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, &rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("update %s: %w", id, ErrNotFound)
		}
		s.log.Error("update question failed", "id", id, "err", err)
		return &PersistenceError{Op: "update", Err: err}
	}
	s.log.Info("question updated", "id", id)
	return nil
}

// Delete removes question id and, for a passage, its children, as one
// unit.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete %s: %w", id, ErrNotFound)
		}
		s.log.Error("delete question failed", "id", id, "err", err)
		return &PersistenceError{Op: "delete", Err: err}
	}
	s.log.Info("question deleted", "id", id)
	return nil
}

// Get returns the question with its children.
func (s *Service) Get(ctx context.Context, id string) (*question.Question, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
		}
		return nil, &PersistenceError{Op: "get", Err: err}
	}
	return q, nil
}

// Find returns one page of top-level questions, newest first. When two or
// more taxonomy levels are set and contradict the hierarchy the result is
// empty and questions are not queried.
func (s *Service) Find(ctx context.Context, f Filter, p Page) (Result, error) {
	empty := Result{Records: []question.Question{}}

	if s.taxonomy != nil && levelsSet(f.Classification) >= 2 {
		ok, err := s.taxonomy.Agrees(ctx, f.Classification)
		if err != nil {
			return empty, &PersistenceError{Op: "find", Err: err}
		}
		if !ok {
			s.log.Debug("filter contradicts taxonomy", "classification", f.Classification)
			return empty, nil
		}
	}

	size := p.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	number := max(p.Number, 0)

	recs, total, err := s.repo.Find(ctx, store.QuestionFilter{
		SegmentID: f.Classification.SegmentID,
		GroupID:   f.Classification.GroupID,
		SubjectID: f.Classification.SubjectID,
		Kind:      f.Kind,
		Tag:       strings.TrimSpace(f.Tag),
		Text:      strings.TrimSpace(f.Text),
		Offset:    number * size,
		Limit:     size,
	})
	if err != nil {
		return empty, &PersistenceError{Op: "find", Err: err}
	}
	return Result{Records: recs, Total: total}, nil
}

// Tags builds the tag index from every stored question.
func (s *Service) Tags(ctx context.Context) (*tags.Index, error) {
	all, err := s.repo.AllTags(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list tags of", Err: err}
	}
	return tags.NewIndex(all), nil
}

// prepare returns a cleaned deep copy so the caller's draft is never
// modified, whatever the outcome. Stray options or children are left in
// place for validation to report.
func prepare(q question.Question) question.Question {
	rec := q.Clone()
	rec.Body = strings.TrimSpace(rec.Body)
	rec.Tags = tags.Normalize(rec.Tags)
	if rec.Kind == question.KindPassage {
		rec.Marks = 0
	}
	return rec
}

func levelsSet(c taxonomy.Classification) int {
	n := 0
	for _, id := range []string{c.SegmentID, c.GroupID, c.SubjectID} {
		if id != "" {
			n++
		}
	}
	return n
}
