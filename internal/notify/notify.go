// Package notify raises desktop notifications when a run needs attention.
package notify

import (
	"fmt"
	"strings"

	"github.com/gen2brain/beeep"
)

// AppName is shown as the notification source.
const AppName = "minedigest"

// Notifier sends desktop notifications. A disabled notifier does nothing.
type Notifier struct {
	enabled bool
	send    func(title, message string) error
}

// New returns a notifier backed by the desktop notification service.
func New(enabled bool) *Notifier {
	beeep.AppName = AppName
	return &Notifier{
		enabled: enabled,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// Enabled reports whether notifications are sent.
func (n *Notifier) Enabled() bool {
	return n != nil && n.enabled
}

// Failure reports the days that could not be delivered or read.
func (n *Notifier) Failure(failed, unavailable []string) error {
	if !n.Enabled() || (len(failed) == 0 && len(unavailable) == 0) {
		return nil
	}
	var parts []string
	if len(failed) > 0 {
		parts = append(parts, fmt.Sprintf("delivery failed: %s", strings.Join(failed, ", ")))
	}
	if len(unavailable) > 0 {
		parts = append(parts, fmt.Sprintf("data unavailable: %s", strings.Join(unavailable, ", ")))
	}
	if err := n.send("Daily report not sent", strings.Join(parts, "\n")); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}
