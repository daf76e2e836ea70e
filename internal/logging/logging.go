// Package logging builds the structured logger shared by commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Prefix tags every log line.
const Prefix = "minedigest"

// New returns a logger writing to w at the named level. Verbose forces debug.
func New(w io.Writer, level string, verbose bool) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}
	if verbose {
		lvl = log.DebugLevel
	}
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          Prefix,
		Level:           lvl,
	}), nil
}
