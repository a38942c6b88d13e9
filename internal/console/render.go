// Package console renders the interactive story session.
package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/bedtime/internal/core"
	"github.com/dotcommander/bedtime/internal/domain/story"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	storyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(1, 2)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A0AEC0"))
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
)

const defaultWidth = 72

// Renderer formats session output for a terminal of a fixed width.
type Renderer struct {
	width int
}

func NewRenderer(width int) *Renderer {
	if width < 20 {
		width = defaultWidth
	}
	return &Renderer{width: width}
}

func (r *Renderer) Banner() string {
	title := titleStyle.Render("BEDTIME STORY GENERATOR")
	sub := mutedStyle.Render("For children ages 5-10")
	features := []string{
		"Smart story categorization",
		"Structured story arcs",
		"Quality evaluation",
		"Reader feedback",
	}
	lines := make([]string, 0, len(features))
	for _, f := range features {
		lines = append(lines, "  • "+f)
	}
	body := lipgloss.JoinVertical(lipgloss.Left, title, sub, "", strings.Join(lines, "\n"))
	return storyStyle.Width(r.width).Render(body)
}

// Story renders the story text under heading.
func (r *Renderer) Story(heading, text string) string {
	head := titleStyle.Render(heading)
	body := storyStyle.Width(r.width).Render(strings.TrimSpace(text))
	return lipgloss.JoinVertical(lipgloss.Left, head, body)
}

// Summary is the one-line footer shown under a story.
func (r *Renderer) Summary(category story.Category, eval story.Evaluation) string {
	return fmt.Sprintf("%s %s   %s %.1f/10",
		labelStyle.Render("Category:"), strings.ToUpper(category.String()),
		labelStyle.Render("Quality Score:"), eval.OverallScore)
}

// ScoreCard lists the sub-scores and the evaluator's feedback.
func (r *Renderer) ScoreCard(eval story.Evaluation, threshold float64) string {
	rows := []struct {
		label string
		score int
	}{
		{"Age appropriateness", eval.AgeAppropriateness},
		{"Story structure", eval.StoryStructure},
		{"Engagement", eval.Engagement},
		{"Educational value", eval.EducationalValue},
	}

	lines := make([]string, 0, len(rows)+3)
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%-22s %2d/10", labelStyle.Render(row.label), row.score))
	}

	verdict := failStyle.Render(fmt.Sprintf("%.1f/10 (below %.1f)", eval.OverallScore, threshold))
	if eval.Approved(threshold) {
		verdict = passStyle.Render(fmt.Sprintf("%.1f/10", eval.OverallScore))
	}
	lines = append(lines, fmt.Sprintf("%-22s %s", labelStyle.Render("Overall"), verdict))

	if fb := strings.TrimSpace(eval.Feedback); fb != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(r.width-4).Render(mutedStyle.Render(fb)))
	}
	return strings.Join(lines, "\n")
}

// Progress describes a refinement transition, or "" for states not shown.
func (r *Renderer) Progress(t core.Transition) string {
	switch t.State {
	case core.StateEvaluated:
		return mutedStyle.Render(fmt.Sprintf("  evaluated draft %d: %.1f/10", t.Iteration+1, t.Evaluation.OverallScore))
	case core.StateRefined:
		return mutedStyle.Render(fmt.Sprintf("  refined draft %d", t.Iteration+2))
	case core.StateApproved:
		return passStyle.Render("  story approved")
	case core.StateExhausted:
		return failStyle.Render("  refinement budget spent, keeping the latest draft")
	default:
		return ""
	}
}

func (r *Renderer) Error(err error) string {
	return errStyle.Render("Error: ") + err.Error()
}

func (r *Renderer) Goodbye() string {
	return titleStyle.Render("Sweet dreams!")
}
