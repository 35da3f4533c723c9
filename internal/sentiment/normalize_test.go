package sentiment

import (
	"testing"

	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "fullwidth", input: "ｇｏｏｄ", want: "good"},
		{name: "ligature", input: "ﬁne", want: "fine"},
		{name: "control chars", input: "bad\x00\x07 day", want: "bad day"},
		{name: "keeps newlines and tabs", input: "a\nb\tc", want: "a\nb\tc"},
		{name: "plain ascii untouched", input: "Nothing to do.", want: "Nothing to do."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.input))
		})
	}
}

func TestPlainTextAnalyzer_ScoresFullwidthLikeASCII(t *testing.T) {
	a := PlainTextAnalyzer{Next: NewVaderAnalyzer()}

	assert.Equal(t, a.Score("This is great"), a.Score("This is ｇｒｅａｔ"))
	assert.NotEqual(t, models.NeutralScore(), a.Score("This is ｇｒｅａｔ"))
}
