package ideas

import (
	"encoding/json"
	"strings"
)

// ParseIdeas extracts ideas from raw model output. It first tries the
// JSON array the prompt asks for, tolerating surrounding prose or a
// markdown code fence. If no JSON parses it falls back to treating each
// non-empty line as a bare title. Results are capped at MaxIdeas.
func ParseIdeas(raw string) []Idea {
	if ideas := parseJSONIdeas(raw); len(ideas) > 0 {
		return capIdeas(ideas)
	}
	return capIdeas(parseLineIdeas(raw))
}

func parseJSONIdeas(raw string) []Idea {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil
	}

	var parsed []Idea
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil
	}

	ideas := make([]Idea, 0, len(parsed))
	for _, idea := range parsed {
		idea.Title = strings.TrimSpace(idea.Title)
		idea.Query = strings.TrimSpace(idea.Query)
		if idea.Title == "" {
			continue
		}
		if idea.Query == "" {
			idea.Query = idea.Title
		}
		ideas = append(ideas, idea)
	}
	return ideas
}

func parseLineIdeas(raw string) []Idea {
	var ideas []Idea
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. ")
		line = strings.Trim(line, `"`)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		ideas = append(ideas, Idea{Title: line, Query: line})
	}
	return ideas
}

func capIdeas(ideas []Idea) []Idea {
	if len(ideas) > MaxIdeas {
		return ideas[:MaxIdeas]
	}
	return ideas
}
