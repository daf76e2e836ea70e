// Package deliver sends rendered digests to their destination.
package deliver

import (
	"encoding/json"
	"time"

	"github.com/verte-zerg/minedigest/internal/model"
)

type payload struct {
	Username string  `json:"username,omitempty"`
	Embeds   []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Image       *embedImage  `json:"image,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embedImage struct {
	URL string `json:"url"`
}

func newPayload(d model.Digest, username string) payload {
	s := d.Summary
	e := embed{
		Title:       s.Title,
		Description: s.Description,
		Color:       s.Color,
	}
	for _, f := range s.Fields {
		e.Fields = append(e.Fields, embedField(f))
	}
	if s.Footer != "" {
		e.Footer = &embedFooter{Text: s.Footer}
	}
	if !s.Timestamp.IsZero() {
		e.Timestamp = s.Timestamp.Format(time.RFC3339)
	}
	if len(d.Image) > 0 && s.ImageName != "" {
		e.Image = &embedImage{URL: "attachment://" + s.ImageName}
	}
	return payload{Username: username, Embeds: []embed{e}}
}

// PayloadJSON returns the webhook message body for d.
func PayloadJSON(d model.Digest, username string) ([]byte, error) {
	return json.Marshal(newPayload(d, username))
}
