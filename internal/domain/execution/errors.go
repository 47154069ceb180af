package execution

import (
	"errors"
	"fmt"
	"strings"
)

// SubprocessError reports a command that exited non-zero or could not run.
type SubprocessError struct {
	CommandLine string
	Dir         string
	ExitCode    int
	Output      string
	Err         error
}

func (e *SubprocessError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "command %q failed", e.CommandLine)
	if e.Dir != "" {
		fmt.Fprintf(&sb, " in %s", e.Dir)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	} else {
		fmt.Fprintf(&sb, " with exit code %d", e.ExitCode)
	}
	if e.Output != "" {
		fmt.Fprintf(&sb, "\n\nOutput:\n%s", e.Output)
	}
	return sb.String()
}

func (e *SubprocessError) Unwrap() error {
	return e.Err
}

// IsSubprocessError returns true if the error is a subprocess error.
func IsSubprocessError(err error) bool {
	var subErr *SubprocessError
	return errors.As(err, &subErr)
}
