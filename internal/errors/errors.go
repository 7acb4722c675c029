package errors

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/studyplan/internal/logger"
)

// configHint is appended to configuration failures so the user knows where to
// look; the previous schedule stays in effect until the settings are fixed.
const configHint = "Your previous schedule is unchanged. Review your settings with 'studyplan settings'."

// Format renders err for the terminal with an "Error: " prefix.
func Format(err error) string {
	if err == nil {
		return ""
	}
	if IsConfigError(err) {
		return fmt.Sprintf("Error: %v\n%s", err, configHint)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Report logs err and writes its formatted form to w. It returns the process
// exit code: 0 for a nil error, 2 for configuration errors and 1 otherwise.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	logger.Error("Command execution failed", "error", err)
	fmt.Fprintln(w, Format(err))
	if IsConfigError(err) {
		return 2
	}
	return 1
}

// Fatal reports err on stderr and exits when it is non-nil.
func Fatal(err error) {
	if code := Report(os.Stderr, err); code != 0 {
		os.Exit(code)
	}
}
