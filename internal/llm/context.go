package llm

import "context"

type purposeKey struct{}

// UnknownPurpose labels calls made without WithPurpose.
const UnknownPurpose = "unknown"

// WithPurpose labels the calls made with ctx, e.g. "question-draft". The
// label is stored with each recorded request.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or UnknownPurpose.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return UnknownPurpose
}
