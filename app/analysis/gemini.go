package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/podlens/podlens/app/youtube"
)

const analysisPrompt = `You are a podcast analyzer who summarizes YouTube videos and distills potential investment recommendations.

Analyze whether the video has explicit investment recommendations:
1. **Stock** - Does this video recommend a specific stock and why?
2. **Sector** - Does this video recommend a specific sector and why?
3. **Portfolio strategy** - Does this video recommend a specific portfolio strategy and why?

If none of the above, give a concise summary of the video with timestamps to key moments.

Exclude commercials and sponsor reads from the analysis entirely.

Output format: always present both a summary and timestamps of key moments in the form (M:SS) that directly reference the video.`

// Gemini analyzes videos with the Gemini API
type Gemini struct {
	client *genai.Client
	model  string
	// Optional; used to resolve the video duration when the caller does not
	// already know it
	metadata youtube.MetadataProvider
}

func NewGemini(ctx context.Context, apiKey, model string, metadata youtube.MetadataProvider) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{
		client:   client,
		model:    model,
		metadata: metadata,
	}, nil
}

// Analyze submits the video to Gemini and validates the response.
// Pass the duration when known to avoid a redundant metadata lookup.
func (g *Gemini) Analyze(ctx context.Context, videoURL string, durationSeconds int) (*Result, error) {
	if durationSeconds <= 0 {
		durationSeconds = g.resolveDuration(ctx, videoURL)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(analysisPrompt),
		genai.NewPartFromURI(videoURL, "video/mp4"),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		MediaResolution: genai.MediaResolutionLow,
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return &Result{Success: false, Error: err.Error()}, nil
	}

	analysisText := response.Text()
	if analysisText == "" {
		return &Result{Success: false, Error: "empty response from model"}, nil
	}

	return &Result{
		Analysis:        analysisText,
		Duration:        durationSeconds,
		TimestampsValid: ValidateTimestamps(analysisText, durationSeconds),
		SponsorExcluded: SponsorExcluded(analysisText),
		Success:         true,
	}, nil
}

func (g *Gemini) resolveDuration(ctx context.Context, videoURL string) int {
	if g.metadata == nil {
		return 0
	}

	info, err := g.metadata.VideoInfo(ctx, videoURL)
	if err != nil {
		slog.Warn("Failed to resolve video duration", "url", videoURL, "error", err)
		return 0
	}

	return info.Duration
}
