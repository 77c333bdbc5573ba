package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/kamaal505/MLAnalytics/internal/output"
)

// inputPath returns the positional input argument, or asks for one.
func inputPath(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}
	return promptInputPath(cmd.InOrStdin(), cmd.OutOrStdout())
}

// promptInputPath asks for the JSON file to analyze. Non-terminal input
// gets huh's line-based accessible mode.
func promptInputPath(in io.Reader, out io.Writer) (string, error) {
	var path string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Enter the path to the JSON file").
				Placeholder("evaluations.json").
				Value(&path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("a path is required")
					}
					return nil
				}),
		),
	).
		WithInput(in).
		WithOutput(out)

	if f, ok := in.(*os.File); !ok || !output.IsTerminal(f) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("reading input path: %w", err)
	}
	return strings.TrimSpace(path), nil
}
