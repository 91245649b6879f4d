package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wpieterse/pipegen/internal/errors"
)

// configHint follows input mistakes that can come from a flag, an
// environment variable or a config file.
const configHint = "Run 'pipegen config show' to see the resolved configuration."

// FormatError renders err for stderr. Input mistakes get a hint on where the
// bad value may come from. Errors that were not built for users are marked
// as unexpected so they are not mistaken for a problem with the input.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	if !errors.IsUserFacing(err) {
		fmt.Fprintf(&b, "Error: unexpected failure: %v\n", err)
		return b.String()
	}

	fmt.Fprintf(&b, "Error: %v\n", err)
	if errors.GetSeverity(err) == errors.SeverityWarning {
		b.WriteString(configHint + "\n")
	}
	return b.String()
}

// usageError marks a command line mistake as user input.
func usageError(err error) error {
	if err == nil {
		return nil
	}
	return errors.NewValidationError(err.Error()).WithField("args")
}

func noArgs(cmd *cobra.Command, args []string) error {
	return usageError(cobra.NoArgs(cmd, args))
}
