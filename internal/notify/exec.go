package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ExecNotifier shells out to notify-send on Linux and osascript on macOS.
type ExecNotifier struct{}

func (ExecNotifier) Send(ctx context.Context, n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.CommandContext(ctx, "notify-send", "--app-name="+AppName, n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.CommandContext(ctx, "osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
