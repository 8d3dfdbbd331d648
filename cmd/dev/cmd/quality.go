package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

func stepCmd(use, short string, step func() error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := step(); err != nil {
				return fmt.Errorf("%s failed: %w", use, err)
			}
			return nil
		},
	}
}

func TestCmd() *cobra.Command {
	return stepCmd("test", "Run unit tests", test.Test)
}

func LintCmd() *cobra.Command {
	return stepCmd("lint", "Run linters", test.Lint)
}

// IntegrationTestCmd runs tests that talk to a sensor on a real bus.
func IntegrationTestCmd() *cobra.Command {
	return stepCmd("integration-test", "Run hardware integration tests", test.Integ)
}

// RunCmd starts the http server against the simulated sensor.
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Serve readings from the simulated sensor",
		RunE: func(cmd *cobra.Command, args []string) error {
			listen, _ := cmd.Flags().GetString("listen")
			goArgs := []string{"run", mainPackage, "--verbose", "--adapter", "mock", "serve", "--listen", listen}
			slog.Info("starting rangefinder", "args", goArgs)
			run := exec.CommandContext(cmd.Context(), "go", goArgs...)
			run.Stdout = os.Stdout
			run.Stderr = os.Stderr
			return run.Run()
		},
	}
	cmd.Flags().String("listen", ":5000", "listen address")
	return cmd
}
