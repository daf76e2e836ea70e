package deliver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/minedigest/internal/model"
)

// Dir writes digests to a directory instead of sending them.
type Dir struct {
	Path     string
	Username string
}

// NewDir returns a directory sink rooted at path.
func NewDir(path, username string) *Dir {
	return &Dir{Path: path, Username: username}
}

// Deliver writes <day>.json with the message body and <day>.png with the image.
func (d *Dir) Deliver(ctx context.Context, digest model.Digest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	raw, err := PayloadJSON(digest, d.Username)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return err
	}
	pretty.WriteByte('\n')
	if err := os.WriteFile(filepath.Join(d.Path, digest.Day+".json"), pretty.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	if len(digest.Image) > 0 {
		if err := os.WriteFile(filepath.Join(d.Path, digest.Day+".png"), digest.Image, 0o644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
	}
	return nil
}
