package planner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campusmeet/planner-cli/pkg/ideas"
)

// ideate asks the model for event ideas for the interest. Generation
// failure is recoverable: the canned templates keep the run alive, and
// the second return value reports whether that happened.
func (p *Planner) ideate(ctx context.Context, interest string) ([]ideas.Idea, bool) {
	generated, err := p.ideas.Generate(ctx, ideas.Request{
		Interest: interest,
		City:     p.city,
		Campus:   p.campus,
	})
	if err != nil {
		zap.L().Warn("planner: idea generation failed, using templates",
			zap.String("interest", interest),
			zap.Error(err),
		)
		return p.templateIdeas(interest), true
	}
	return generated, false
}

func (p *Planner) templateIdeas(interest string) []ideas.Idea {
	out := make([]ideas.Idea, 0, len(p.rules.IdeaTemplates))
	for _, tmpl := range p.rules.IdeaTemplates {
		title := fmt.Sprintf(tmpl, interest)
		out = append(out, ideas.Idea{Title: title, Query: title})
	}
	return out
}
