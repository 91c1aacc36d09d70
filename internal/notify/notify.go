package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Notifier sends system notifications.
type Notifier struct {
	Enabled bool
}

// Send sends a system notification. On macOS it shells out to osascript;
// on other platforms it is a no-op.
func (n *Notifier) Send(title, message string) error {
	if !n.Enabled {
		return nil
	}
	if runtime.GOOS != "darwin" {
		return nil
	}
	return sendMacOSNotification(title, message)
}

func sendMacOSNotification(title, message string) error {
	title = strings.ReplaceAll(title, `"`, `\"`)
	message = strings.ReplaceAll(message, `"`, `\"`)

	script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
	cmd := exec.Command("osascript", "-e", script)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// FormatGateOutcome formats a gate result notification.
func FormatGateOutcome(pass bool, successRate float64, failures []string) (title, message string) {
	if pass {
		title = "Evaluation gate passed"
		message = fmt.Sprintf("success rate %.0f%%", successRate*100)
		return title, message
	}
	title = "Evaluation gate failed"
	if len(failures) > 0 {
		message = failures[0]
	} else {
		message = fmt.Sprintf("success rate %.0f%%", successRate*100)
	}
	return title, message
}
