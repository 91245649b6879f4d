package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"

	conciter "github.com/sourcegraph/conc/iter"
	"github.com/spf13/cobra"

	"github.com/wpieterse/pipegen/internal/errors"
	"github.com/wpieterse/pipegen/internal/pipeline"
)

const stdinName = "-"

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [files...]",
		Short: "Check pipeline manifests",
		Long: `Parse each manifest and check that every step has a label, a command and
an agent. With no arguments, or with "-", the manifest is read from stdin.

Examples:
  pipegen validate .buildkite/pipeline.yml
  pipegen | pipegen validate`,
		RunE: runValidate,
	}
}

// validationResult is the outcome for one manifest.
type validationResult struct {
	name   string
	steps  int
	phases int
	err    error
}

func runValidate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{stdinName}
	}

	// stdin is read once and shared, so "-" may be given more than once
	var stdin []byte
	if slices.Contains(args, stdinName) {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return errors.Wrap(err, "read stdin")
		}
		stdin = data
	}

	results := conciter.Map(args, func(name *string) validationResult {
		return validateManifest(*name, stdin)
	})

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", r.name, r.err)
			continue
		}
		fmt.Fprintf(out, "ok %s (%d steps, %d phases)\n", r.name, r.steps, r.phases)
	}

	if failed > 0 {
		return errors.NewValidationError(fmt.Sprintf("%d of %d manifests are invalid", failed, len(results))).
			WithCause(errors.ErrMalformedManifest)
	}
	return nil
}

func validateManifest(name string, stdin []byte) validationResult {
	result := validationResult{name: name}

	data := stdin
	if name == stdinName {
		result.name = "stdin"
	} else {
		var err error
		data, err = os.ReadFile(name)
		if err != nil {
			result.err = errors.Wrapf(err, "read %s", name)
			return result
		}
	}

	m, err := pipeline.Parse(data)
	if err == nil {
		err = m.Validate()
	}
	if err != nil {
		var me *errors.ManifestError
		if errors.As(err, &me) {
			me.WithSource(result.name)
		}
		result.err = err
		return result
	}

	result.steps = m.StepCount()
	result.phases = len(m.Phases())
	return result
}
