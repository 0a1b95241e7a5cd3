package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and trim", "  Board Game Night  ", "board game night"},
		{"punctuation to spaces", "Trivia! @ Rocky's (Midtown)", "trivia rocky s midtown"},
		{"collapse whitespace", "movie   night\t\tdowntown", "movie night downtown"},
		{"diacritics folded", "Café Intermezzo", "cafe intermezzo"},
		{"empty", "", ""},
		{"only punctuation", "?!—…", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	t.Run("identity is 1", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 1.0, Similarity("Casual hiking meetup", "Casual hiking meetup"), 1e-9)
	})

	t.Run("symmetric", func(t *testing.T) {
		t.Parallel()
		a, b := "bowling night @ Midtown Bowl", "Midtown Bowl league night"
		assert.InDelta(t, Similarity(a, b), Similarity(b, a), 1e-9)
	})

	t.Run("both empty is 0 by convention", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, Similarity("", ""))
	})

	t.Run("one empty is 0", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, Similarity("hiking", ""))
	})

	t.Run("disjoint is 0", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, Similarity("pottery workshop", "soccer watch party"))
	})

	t.Run("partial overlap", func(t *testing.T) {
		t.Parallel()
		// tokens: {board, game, night} vs {board, game, cafe} -> 2/4
		assert.InDelta(t, 0.5, Similarity("board game night", "board game cafe"), 1e-9)
	})

	t.Run("always within unit interval", func(t *testing.T) {
		t.Parallel()
		pairs := [][2]string{
			{"a b c", "c d e"},
			{"x", "x y z w"},
			{"Trivia Night @ Rocky's", "trivia night rockys"},
		}
		for _, p := range pairs {
			s := Similarity(p[0], p[1])
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	})

	t.Run("case and punctuation ignored", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 1.0, Similarity("Karaoke Night!", "karaoke   night"), 1e-9)
	})
}
