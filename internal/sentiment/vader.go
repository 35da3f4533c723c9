package sentiment

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/sentiboard/internal/models"
)

var (
	vaderInstance *govader.SentimentIntensityAnalyzer
	vaderOnce     sync.Once

	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// lexicon returns the process-wide VADER analyzer. The lexicon is loaded on
// first use and only read afterwards, so it is shared by every caller.
func lexicon() *govader.SentimentIntensityAnalyzer {
	vaderOnce.Do(func() {
		slog.Info("[Sentiment] Loading VADER lexicon")
		vaderInstance = govader.NewSentimentIntensityAnalyzer()
	})
	return vaderInstance
}

// VaderAnalyzer scores text with the VADER lexicon.
type VaderAnalyzer struct{}

func NewVaderAnalyzer() VaderAnalyzer {
	return VaderAnalyzer{}
}

func (VaderAnalyzer) Score(text string) models.PolarityScore {
	if strings.TrimSpace(text) == "" {
		return models.NeutralScore()
	}

	s := lexicon().PolarityScores(text)

	// VADER reports all zeros when nothing in the text carries a token.
	if s.Positive+s.Negative+s.Neutral == 0 {
		return models.NeutralScore()
	}

	score, err := models.NewPolarityScore(s.Compound, s.Positive, s.Negative, s.Neutral)
	if err != nil {
		slog.Warn("[Sentiment] VADER returned an out of range score, using neutral",
			slog.String("error", err.Error()))
		return models.NeutralScore()
	}
	return score
}

// PlainTextAnalyzer normalizes the text, renders markdown to plain text and
// drops links before handing the text to Next.
type PlainTextAnalyzer struct {
	Next Analyzer
}

func (p PlainTextAnalyzer) Score(text string) models.PolarityScore {
	return p.Next.Score(ConvertMarkdownToText(NormalizeText(text)))
}

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // keep only the link text
	input = urlPattern.ReplaceAllString(input, "")
	return strings.Join(strings.Fields(input), " ")
}

func ConvertMarkdownToText(input string) string {
	links := RemoveLinks(input)
	output := blackfriday.Run([]byte(links),
		blackfriday.WithNoExtensions(),
		blackfriday.WithRenderer(plainRenderer()))
	plainText := strings.Join(strings.Fields(stripTags(string(output))), " ")

	return plainText
}

// plainRenderer leaves quotes and dashes alone so the lexicon sees the
// characters that were typed.
func plainRenderer() blackfriday.Renderer {
	return blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.UseXHTML,
	})
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	replacer := strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'")
	return replacer.Replace(text)
}
