// Package ideas generates event idea candidates for an interest using the
// Anthropic API. Callers fall back to canned templates when generation fails,
// so every error path here is non-fatal upstream.
package ideas

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// MaxIdeas caps how many ideas a single generation can return.
const MaxIdeas = 25

// defaultMinIdeas and MaxIdeas bound the range the model is asked for
// when the caller does not request a specific count. A wide pool gives
// the venue research phase more to work with.
const defaultMinIdeas = 15

// Client generates event ideas.
type Client interface {
	Generate(ctx context.Context, req Request) ([]Idea, error)
}

// Request describes the interest and locale to generate ideas for.
type Request struct {
	Interest string
	City     string
	Campus   string
	Count    int
}

// Idea is a single event concept. Query is the venue search string to
// research it with; it defaults to Title when the model omits it.
type Idea struct {
	Title string `json:"title"`
	Query string `json:"query"`
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewClient creates a new idea generation client backed by the SDK.
func NewClient(apiKey, model string, maxTokens int64) Client {
	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
		model:     model,
		maxTokens: maxTokens,
	}
}

// buildPrompt asks for a wide idea pool by default; an explicit in-range
// Count pins the number instead.
func buildPrompt(req Request) string {
	howMany := fmt.Sprintf("between %d and %d", defaultMinIdeas, MaxIdeas)
	if req.Count > 0 && req.Count <= MaxIdeas {
		howMany = fmt.Sprintf("%d", req.Count)
	}
	return fmt.Sprintf(
		"Suggest %s event ideas for students interested in %q near %s in %s. "+
			"Ideas should be specific enough to search for a real venue.",
		howMany, req.Interest, req.Campus, req.City,
	)
}

const systemPrompt = `You generate event ideas for a campus social platform.
Respond with a JSON array only, no prose. Each element has the shape
{"title": "...", "query": "..."} where title is a short event name and query
is a venue search string for that idea.`

func (c *sdkClient) Generate(ctx context.Context, req Request) ([]Idea, error) {
	prompt := buildPrompt(req)

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []sdk.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "ideas: create message")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	ideas := ParseIdeas(text.String())
	if len(ideas) == 0 {
		return nil, eris.New("ideas: model returned no usable ideas")
	}

	zap.L().Debug("ideas: generated",
		zap.String("interest", req.Interest),
		zap.Int("count", len(ideas)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	return ideas, nil
}
