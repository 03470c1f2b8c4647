package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"texest/internal/driver"
	"texest/internal/driverr"
	"texest/internal/expr"
	"texest/internal/obs"
	"texest/internal/report"

	"github.com/spf13/cobra"
)

var (
	colorFlag  string
	formatFlag string
	debugFlag  bool
)

// rootCmd is texest's entry point: it loads every positional file argument
// (or stdin when none are given), evaluates and runs the test cases they
// describe, and reports the outcome.
var rootCmd = &cobra.Command{
	Use:   "texest [flags] [file ...]",
	Short: "Run declarative black-box tests of command-line programs and services",
	Long: `texest reads test specifications expressed in a structured document
language, executes each as one or more child processes with controlled
inputs, and asserts properties of their exit status, standard streams, and
any files they produce.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// SetVersion sets the version for the root command, injected at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application, called from
// main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "texest version %s\n" .Version}}`)

	err := rootCmd.Execute()
	printError(os.Stderr, err)
	os.Exit(driverr.ExitCode(err))
}

// printError writes err to w. A *driverr.InvalidInputError carries one
// violation per line in report order, and every line is written on its own,
// matching how the original reports every violation of every error instead
// of truncating to the first.
func printError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var invalid *driverr.InvalidInputError
	if errors.As(err, &invalid) {
		for _, msg := range invalid.Messages {
			fmt.Fprintln(w, msg)
		}
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

func runRoot(cmd *cobra.Command, args []string) error {
	level := obs.LevelInfo
	if debugFlag {
		level = obs.LevelDebug
	}
	obs.Init(level, cmd.ErrOrStderr())

	mode, err := parseColorMode(colorFlag)
	if err != nil {
		return &driverr.InvalidInputError{Messages: []string{err.Error()}}
	}

	var reporter report.Reporter
	switch formatFlag {
	case "json":
		reporter = report.NewJSONReporter(cmd.OutOrStdout())
	case "simple", "":
		reporter = report.NewSimpleReporter(cmd.OutOrStdout(), report.NewColorMarker(mode))
	default:
		return &driverr.InvalidInputError{Messages: []string{"--format must be one of: simple, json"}}
	}

	inputs, err := loadInputs(cmd, args)
	if err != nil {
		return &driverr.InvalidInputError{Messages: []string{err.Error()}}
	}

	d := driver.New(reporter, expr.DefaultPortReserver{})
	return d.Run(context.Background(), inputs)
}

func loadInputs(cmd *cobra.Command, args []string) ([]driver.Input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs := make([]driver.Input, 0, len(args))
	for _, name := range args {
		in, err := driver.ReadInput(name, cmd.InOrStdin(), os.ReadFile)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func parseColorMode(s string) (report.ColorMode, error) {
	switch s {
	case "", "auto":
		return report.ColorAuto, nil
	case "always":
		return report.ColorAlways, nil
	case "never":
		return report.ColorNever, nil
	default:
		return "", errInvalidColorMode(s)
	}
}

type errInvalidColorMode string

func (e errInvalidColorMode) Error() string {
	return "--color must be one of: auto, always, never (got " + string(e) + ")"
}

func init() {
	rootCmd.Flags().StringVar(&colorFlag, "color", "auto", "colorize output: auto, always, never")
	rootCmd.Flags().StringVar(&formatFlag, "format", "simple", "report format: simple, json")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
}
