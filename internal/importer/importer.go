// Package importer loads questions in bulk from a JSON file of the form
// {"questions": [...]} and writes the same format back out.
package importer

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abhisek/qbank/internal/question"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "qbank://import.schema.json"

var compiled = mustCompile()

func mustCompile() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("import schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		panic(fmt.Sprintf("import schema: %v", err))
	}
	return c.MustCompile(schemaURL)
}

// Bank is the subset of *bank.Service the importer needs.
type Bank interface {
	Validate(ctx context.Context, q question.Question) error
	Create(ctx context.Context, q question.Question) (string, error)
}

// File is the import and export document.
type File struct {
	Questions []question.Question `json:"questions"`
}

// Problem is one schema violation.
type Problem struct {
	Path    string
	Message string
}

// SchemaError reports a file that does not match the import format.
// Nothing is created when it is returned.
type SchemaError struct {
	Problems []Problem
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Path + ": " + p.Message
	}
	return "invalid import file: " + strings.Join(parts, "; ")
}

// Failure is a question that could not be created.
type Failure struct {
	Index int
	Body  string
	Err   error
}

// Report lists what an import did, in file order. In a dry run Created
// stays empty and Valid counts the questions that would be created.
type Report struct {
	Created  []string
	Valid    int
	Failures []Failure
	DryRun   bool
}

// Total is the number of questions in the file.
func (r *Report) Total() int {
	return r.Valid + len(r.Failures)
}

// Options tune Import.
type Options struct {
	// DryRun validates every question without creating any.
	DryRun bool

	Logger *slog.Logger
}

// Parse reads and schema-validates an import document.
func Parse(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, &SchemaError{Problems: []Problem{{Path: "/", Message: "not valid JSON: " + err.Error()}}}
	}
	if err := compiled.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("validate import file: %w", err)
		}
		return nil, &SchemaError{Problems: problems(ve)}
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode import file: %w", err)
	}
	return &f, nil
}

// Import parses r and creates each question through b. Questions are
// independent: a failing question is reported and the rest continue.
// Ids and timestamps in the file are ignored.
func Import(ctx context.Context, r io.Reader, b Bank, opts Options) (*Report, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	f, err := Parse(r)
	if err != nil {
		return nil, err
	}

	rep := &Report{DryRun: opts.DryRun}
	for i, q := range f.Questions {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		q = stripIdentity(q)

		if opts.DryRun {
			if err := b.Validate(ctx, q); err != nil {
				rep.Failures = append(rep.Failures, Failure{Index: i, Body: q.Body, Err: err})
				continue
			}
			rep.Valid++
			continue
		}

		id, err := b.Create(ctx, q)
		if err != nil {
			log.Warn("import question failed", "index", i, "err", err)
			rep.Failures = append(rep.Failures, Failure{Index: i, Body: q.Body, Err: err})
			continue
		}
		rep.Created = append(rep.Created, id)
		rep.Valid++
	}
	log.Info("import finished", "created", len(rep.Created), "failed", len(rep.Failures), "dry_run", opts.DryRun)
	return rep, nil
}

// Export writes questions in the import format.
func Export(w io.Writer, qs []question.Question) error {
	if qs == nil {
		qs = []question.Question{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(File{Questions: qs})
}

func stripIdentity(q question.Question) question.Question {
	q = q.Clone()
	q.ID = ""
	q.CreatedAt, q.UpdatedAt = time.Time{}, time.Time{}
	for i := range q.Children {
		q.Children[i].ID = ""
	}
	return q
}

var printer = message.NewPrinter(language.English)

// problems flattens a validation error into its leaf causes.
func problems(ve *jsonschema.ValidationError) []Problem {
	var out []Problem
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Problem{
				Path:    "/" + strings.Join(e.InstanceLocation, "/"),
				Message: e.ErrorKind.LocalizedString(printer),
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}
