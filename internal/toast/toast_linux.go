//go:build linux

package toast

import (
	"fmt"
	"os/exec"
)

// Show displays a Linux desktop notification via notify-send. Alarm
// notifications go out with critical urgency so they persist until the
// user dismisses them, like the ring itself. The "--" guard keeps a
// label starting with a dash from being parsed as a flag.
func Show(title, message string) error {
	cmd := exec.Command("notify-send",
		"--app-name=reveil", "--urgency=critical", "--", title, message)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("toast failed: %w\n%s", err, out)
	}
	return nil
}
