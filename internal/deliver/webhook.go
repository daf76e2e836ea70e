package deliver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/verte-zerg/minedigest/internal/model"
)

const (
	// DefaultTimeout bounds a single webhook request.
	DefaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// StatusError reports a webhook response outside the success codes.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned status %d", e.Code)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.Code, e.Body)
}

// Webhook posts digests to a Discord-compatible webhook.
type Webhook struct {
	URL      string
	Username string
	Client   *http.Client
}

// NewWebhook returns a webhook client with a bounded timeout.
func NewWebhook(url, username string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Webhook{
		URL:      url,
		Username: username,
		Client:   &http.Client{Timeout: timeout},
	}
}

// Deliver uploads the digest as a multipart message. Only 200 and 204 count
// as success.
func (w *Webhook) Deliver(ctx context.Context, d model.Digest) error {
	if w.URL == "" {
		return fmt.Errorf("webhook url is empty")
	}
	body, contentType, err := w.encode(d)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, body)
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
}

func (w *Webhook) encode(d model.Digest) (io.Reader, string, error) {
	payloadJSON, err := PayloadJSON(d, w.Username)
	if err != nil {
		return nil, "", fmt.Errorf("encode payload: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("payload_json", string(payloadJSON)); err != nil {
		return nil, "", err
	}
	if len(d.Image) > 0 && d.Summary.ImageName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files[0]"; filename=%q`, d.Summary.ImageName))
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(d.Image); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
