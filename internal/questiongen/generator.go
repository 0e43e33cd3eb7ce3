// Package questiongen drafts bank questions with an LLM provider. Drafts
// pass the same validation as hand-authored questions before they are
// offered to the author; nothing is stored here.
package questiongen

import (
	"context"

	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/taxonomy"
)

// Generator produces question drafts.
type Generator interface {
	Generate(ctx context.Context, input Input) (*Result, error)
}

// Checker validates a draft the way the bank would on create.
// *bank.Service satisfies it.
type Checker interface {
	Validate(ctx context.Context, q question.Question) error
}

// Input describes the drafts to request.
type Input struct {
	// Kind restricts drafts to one question type. Empty lets the model
	// choose.
	Kind question.Kind

	// Topic is free text, e.g. "refraction of light at plane surfaces".
	Topic string

	// Count is the number of drafts to request.
	Count int

	// Marks is the suggested marks per question (per child for passages).
	// Zero lets the model choose.
	Marks int

	// Classification is applied to every draft.
	Classification taxonomy.Classification

	// Tags are added to every draft's own tags.
	Tags []string

	// Existing holds bodies of questions already in the bank on this
	// topic. They are listed in the prompt and matching drafts are
	// dropped.
	Existing []string
}

// Rejection is a draft that failed validation or duplicated another.
type Rejection struct {
	Draft  question.Question
	Reason string
}

// Result holds the accepted drafts in model order and the rejected ones.
type Result struct {
	Drafts   []question.Question
	Rejected []Rejection
}
