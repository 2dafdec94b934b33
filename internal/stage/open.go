package stage

import (
	"os/exec"
	"runtime"
)

// openWithDefaultHandler asks the desktop environment to open the file with
// whatever is registered for its type.
func openWithDefaultHandler(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
