package render

import (
	"time"

	"github.com/verte-zerg/minedigest/internal/calendar"
	"github.com/verte-zerg/minedigest/internal/model"
)

// Renderer renders reports with configurable title and footer.
type Renderer struct {
	Title  string
	Footer string
}

// New returns a renderer. Empty values fall back to the defaults.
func New(title, footer string) *Renderer {
	if title == "" {
		title = DefaultTitle
	}
	if footer == "" {
		footer = DefaultFooter
	}
	return &Renderer{Title: title, Footer: footer}
}

// Render builds the summary and trend image for a report.
func (r *Renderer) Render(report model.Report, now time.Time) (model.Digest, error) {
	title, footer := r.Title, r.Footer
	if title == "" {
		title = DefaultTitle
	}
	if footer == "" {
		footer = DefaultFooter
	}
	summary := summarize(title, footer, report.Stats, report.Streak, report.Day, now)
	digest := model.Digest{
		Day:     report.Day.Format(calendar.DayLayout),
		Summary: summary,
	}
	if len(report.Trend) == 0 {
		digest.Summary.ImageName = ""
		return digest, nil
	}
	img, err := TrendPNG(report.Trend)
	if err != nil {
		return model.Digest{}, err
	}
	digest.Image = img
	return digest, nil
}
