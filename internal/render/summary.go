// Package render turns daily statistics into a report document and image.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/minedigest/internal/model"
	"github.com/verte-zerg/minedigest/internal/stats"
)

const (
	// DefaultTitle heads every report unless overridden.
	DefaultTitle = "🎮 Daily Mining Report"
	// DefaultFooter is the report footer text.
	DefaultFooter = "minedigest daily report"
	// TrendImageName is the attachment name of the trend image.
	TrendImageName = "trend.png"
	// Color is the embed accent color.
	Color = 5814783

	topSourceCount = 5
	dateLabel      = "January 02, 2006 (Monday)"
)

// Summarize builds the report document for one day with the default title.
func Summarize(st model.DailyStats, streak int, day, now time.Time) model.Summary {
	return summarize(DefaultTitle, DefaultFooter, st, streak, day, now)
}

func summarize(title, footer string, st model.DailyStats, streak int, day, now time.Time) model.Summary {
	s := model.Summary{
		Title:       title,
		Description: fmt.Sprintf("**%s**", day.Format(dateLabel)),
		Color:       Color,
		Footer:      footer,
		Timestamp:   now,
		ImageName:   TrendImageName,
		Fields: []model.SummaryField{
			{Name: "⏱️ Play Time", Value: fmt.Sprintf("**%.1f** hours", st.ActiveSpanHours), Inline: true},
			{Name: "📊 Characters", Value: fmt.Sprintf("**%s** chars", humanize.Comma(int64(st.TotalChars))), Inline: true},
			{Name: "🔥 Streak", Value: fmt.Sprintf("**%d** %s", streak, plural(streak, "day", "days")), Inline: true},
			{Name: "✨ Anki Cards", Value: fmt.Sprintf("**%d** %s", st.AnkiCardCount, plural(st.AnkiCardCount, "card", "cards")), Inline: true},
			{Name: "🎯 Games Played", Value: fmt.Sprintf("**%d** %s", st.DistinctSourceCount, plural(st.DistinctSourceCount, "game", "games")), Inline: true},
		},
	}
	if len(st.Sources) > 0 {
		s.Fields = append(s.Fields, model.SummaryField{
			Name:  "🎮 Games",
			Value: sourceList(st.Sources),
		})
	}
	return s
}

func sourceList(sources []model.SourceStat) string {
	top, rest := stats.TopSources(sources, topSourceCount)
	var b strings.Builder
	for i, src := range top {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, src.Name)
		fmt.Fprintf(&b, "   └ %d lines / %s chars\n", src.Events, humanize.Comma(int64(src.Chars)))
	}
	if rest > 0 {
		fmt.Fprintf(&b, "\n...and %d more", rest)
	}
	return strings.TrimRight(b.String(), "\n")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Text renders a summary as plain text without markdown emphasis.
func Text(s model.Summary) string {
	var b strings.Builder
	b.WriteString(s.Title)
	b.WriteString("\n")
	b.WriteString(stripEmphasis(s.Description))
	b.WriteString("\n\n")
	for _, f := range s.Fields {
		value := stripEmphasis(f.Value)
		if f.Inline {
			fmt.Fprintf(&b, "%s: %s\n", f.Name, value)
			continue
		}
		fmt.Fprintf(&b, "\n%s\n%s\n", f.Name, value)
	}
	if s.Footer != "" {
		fmt.Fprintf(&b, "\n%s", s.Footer)
		if !s.Timestamp.IsZero() {
			fmt.Fprintf(&b, " · %s", s.Timestamp.Format(time.RFC3339))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func stripEmphasis(s string) string {
	return strings.ReplaceAll(s, "**", "")
}
