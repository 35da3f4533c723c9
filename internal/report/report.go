// Package report renders a one-shot analysis for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spacesedan/sentiboard/internal/dashboard"
	"github.com/spacesedan/sentiboard/internal/models"
)

type Report struct {
	Analysis dashboard.Analysis `json:"analysis"`
	Overview dashboard.Overview `json:"overview"`
	Insights dashboard.Insights `json:"insights"`
}

// Source is the part of dashboard.Service a report is built from.
type Source interface {
	Overview() (dashboard.Overview, error)
	Insights() (dashboard.Insights, error)
}

// Build gathers the history-wide views after analysis was recorded.
func Build(src Source, analysis dashboard.Analysis) (Report, error) {
	overview, err := src.Overview()
	if err != nil {
		return Report{}, fmt.Errorf("[Report] failed to build overview: %w", err)
	}
	insights, err := src.Insights()
	if err != nil {
		return Report{}, fmt.Errorf("[Report] failed to build insights: %w", err)
	}
	return Report{Analysis: analysis, Overview: overview, Insights: insights}, nil
}

func Render(r Report) string {
	sections := []string{
		titleStyle.Render("Sentiment analysis"),
		renderScore(r.Analysis),
		sectionStyle.Render("Sentences"),
		renderSentences(r.Analysis.Sentences),
		sectionStyle.Render("History"),
		renderSummary(r.Overview),
	}
	if ranked := renderRankings(r.Insights); ranked != "" {
		sections = append(sections, sectionStyle.Render("Top sentences"), ranked)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func renderScore(a dashboard.Analysis) string {
	s := a.Record.Score
	lines := []string{
		fmt.Sprintf("Overall: %s (compound %.4f)", labelStyle(a.Label.String()).Render(a.Label.String()), s.Compound),
		fmt.Sprintf("Positive %.3f  Negative %.3f  Neutral %.3f", s.Positive, s.Negative, s.Neutral),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderSentences(sentences []models.LabeledSentence) string {
	if len(sentences) == 0 {
		return mutedStyle.Render("  (none)")
	}
	lines := make([]string, 0, len(sentences))
	for i, s := range sentences {
		lines = append(lines, fmt.Sprintf("%2d. %s %s %s",
			i+1,
			labelStyle(s.Label.String()).Render(fmt.Sprintf("%-8s", s.Label)),
			mutedStyle.Render(fmt.Sprintf("%+.4f", s.Score)),
			s.Sentence))
	}
	return strings.Join(lines, "\n")
}

func renderSummary(o dashboard.Overview) string {
	c := o.Summary.Counts
	return strings.Join([]string{
		fmt.Sprintf("Analyses: %d  Average compound: %.4f", o.Summary.Total, o.Summary.Average),
		fmt.Sprintf("%s %d  %s %d  %s %d",
			labelStyle("positive").Render("positive"), c.Positive,
			labelStyle("negative").Render("negative"), c.Negative,
			labelStyle("neutral").Render("neutral"), c.Neutral),
	}, "\n")
}

func renderRankings(in dashboard.Insights) string {
	var lines []string
	add := func(label string, entries []models.SentenceEntry) {
		if len(entries) == 0 {
			return
		}
		lines = append(lines, labelStyle(label).Render(label))
		for _, e := range entries {
			lines = append(lines, fmt.Sprintf("  %s %s", mutedStyle.Render(fmt.Sprintf("%+.4f", e.Score)), e.Sentence))
		}
	}
	add("positive", in.Rankings.MostPositive)
	add("negative", in.Rankings.MostNegative)
	add("neutral", in.Rankings.MostNeutral)
	return strings.Join(lines, "\n")
}
