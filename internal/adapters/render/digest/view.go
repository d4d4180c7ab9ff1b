package digest

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/hnglance/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth = 100
	barWidth     = 16
)

type RenderOptions struct {
	Now time.Time
	// StaleAfter marks records whose last update is older than this. Zero disables the marker.
	StaleAfter time.Duration
	// Width wraps summaries; zero uses a default.
	Width int
	// Brief omits the summaries.
	Brief bool
}

func renderView(records []domain.Record, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Hacker News"),
		s.header.Render(fmt.Sprintf("stories: %d", len(records))),
	}

	if len(records) == 0 {
		lines = append(lines, s.empty.Render("No cached stories. Run `hnglance refresh` first."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	topScore := 0
	for _, record := range records {
		topScore = max(topScore, record.Info.Score)
	}

	for index, record := range records {
		lines = append(lines, s.section.Render(renderStory(index+1, record, topScore, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderStory(rank int, record domain.Record, topScore int, opts RenderOptions, s styles) string {
	parts := []string{
		s.story.Render(fmt.Sprintf("%2d. %s", rank, storyTitle(record))),
		metaLine(record, topScore, opts, s),
	}

	if opts.Brief {
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	summaryStyle := s.summary.Width(width)

	if summary := strings.TrimSpace(record.PageSummary); summary != "" {
		parts = append(parts, summaryStyle.Render(summary))
	}
	if summary := strings.TrimSpace(record.DiscussionSummary); summary != "" {
		parts = append(parts, s.label.Render("From the comments:"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func storyTitle(record domain.Record) string {
	title := strings.TrimSpace(record.Info.Title)
	if title == "" {
		title = "item " + record.ID.String()
	}
	return title
}

func metaLine(record domain.Record, topScore int, opts RenderOptions, s styles) string {
	info := record.Info
	meta := fmt.Sprintf("%d points, %d comments", info.Score, info.Descendants)
	if info.By != "" {
		meta += " by " + info.By
	}
	if origin := info.OriginTime(); !origin.IsZero() {
		meta += ", " + formatAge(origin, opts.Now)
	}

	updatedStyle := lipgloss.NewStyle().Foreground(freshnessColor(record.UpdatedAt, opts.Now, opts.StaleAfter))
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		renderScoreBar(info.Score, topScore, barWidth, s),
		" ",
		s.meta.Render(meta),
		" ",
		updatedStyle.Render(fmt.Sprintf("(updated %s)", formatAge(record.UpdatedAt, opts.Now))),
	)

	if opts.StaleAfter > 0 && !opts.Now.IsZero() && !record.UpdatedAt.IsZero() && opts.Now.Sub(record.UpdatedAt) > opts.StaleAfter {
		line += " " + s.warning.Render("[stale]")
	}

	return line
}

func renderScoreBar(score, topScore, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := 0
	if topScore > 0 {
		filled = int(math.Round(float64(width) * float64(max(score, 0)) / float64(topScore)))
	}
	filled = min(max(filled, 0), width)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func formatAge(at, now time.Time) string {
	if at.IsZero() {
		return "never"
	}
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return plural(int(elapsed.Hours()), "hour") + " ago"
	default:
		return plural(int(elapsed.Hours()/24), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp from 240 (faded) to 255 (bright).
	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}

// freshnessColor is brightest for records updated just now and fades toward the stale threshold.
func freshnessColor(updatedAt, now time.Time, staleAfter time.Duration) lipgloss.Color {
	if now.IsZero() || updatedAt.IsZero() || staleAfter <= 0 {
		return lipgloss.Color("255")
	}

	remaining := staleAfter.Seconds() - now.Sub(updatedAt).Seconds()
	return interpolateColor(remaining, 0, staleAfter.Seconds())
}
