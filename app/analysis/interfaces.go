package analysis

import (
	"context"
)

// Result is the outcome of one analysis attempt. A provider that reaches the
// model but gets a refusal or failure reports it here with Success false
// rather than returning an error; errors are reserved for attempts that
// never produced an outcome at all.
type Result struct {
	Analysis        string
	Duration        int // seconds
	TimestampsValid bool
	SponsorExcluded bool
	Success         bool
	Error           string
}

// Provider analyzes one video. Implementations are selected at construction:
// the Gemini provider in production, fixtures in tests.
type Provider interface {
	Analyze(ctx context.Context, videoURL string, durationSeconds int) (*Result, error)
}

var _ Provider = (*Gemini)(nil)
