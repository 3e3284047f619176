package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/cobra"

	"github.com/tetigi/kraken-core/kraken"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	ui := newUI()
	root, err := newRootCommand(ui)
	if err != nil {
		ui.Error(err.Error())
		return extractExitCode(err)
	}
	if err := root.Execute(); err != nil {
		ui.Error(err.Error())
		return extractExitCode(err)
	}
	return exitOK
}

// cliOptions are the flags shared by the root command and its
// subcommands, threaded through the same way the teacher's cobra
// commands share a Meta struct.
type cliOptions struct {
	keepGoing bool
	jobs      int
	verbose   int
}

func newRootCommand(ui cli.Ui) (*cobra.Command, error) {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:                   "kraken [flags] [selector ...]",
		Short:                 "Run the demo project's tasks",
		Long:                  "kraken resolves the given task selectors against the demo project and executes them.",
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		SilenceErrors:         true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelectors(cmd.Context(), ui, opts, args)
		},
	}
	root.PersistentFlags().BoolVar(&opts.keepGoing, "keep-going", false, "keep running independent tasks after a failure")
	root.PersistentFlags().IntVarP(&opts.jobs, "jobs", "j", 1, "maximum number of tasks to run at once")
	root.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity (repeatable)")

	root.AddCommand(newGraphCommand(ui, opts))
	return root, nil
}

func newGraphCommand(ui cli.Ui, opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "graph [selector ...]",
		Short: "Print the execution graph for the given selectors instead of running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printGraph(ui, opts, args)
		},
	}
}

func newDemoContext(opts *cliOptions) (*kraken.Context, error) {
	if opts.jobs < 1 {
		return nil, usageError("--jobs must be at least 1, got %d", opts.jobs)
	}

	level := hclog.Warn
	switch {
	case opts.verbose >= 2:
		level = hclog.Trace
	case opts.verbose == 1:
		level = hclog.Debug
	}
	log := hclog.New(&hclog.LoggerOptions{
		Name:   "kraken",
		Level:  level,
		Output: os.Stderr,
	})

	ctx := kraken.NewContext(".", log)
	if err := buildDemoProject(ctx); err != nil {
		return nil, fmt.Errorf("building demo project: %w", err)
	}
	if err := ctx.Finalize(); err != nil {
		return nil, fmt.Errorf("finalizing project: %w", err)
	}
	return ctx, nil
}

func runSelectors(ctx context.Context, ui cli.Ui, opts *cliOptions, selectors []string) error {
	kctx, err := newDemoContext(opts)
	if err != nil {
		return err
	}

	result, err := kctx.Execute(ctx, selectors, kraken.ExecuteOptions{
		KeepGoing:   opts.keepGoing,
		Parallelism: opts.jobs,
	})
	if result != nil {
		for _, path := range result.Order {
			printStatusLine(ui, path, result.Statuses[path].String())
		}
	}
	if err != nil {
		return &ExitCodeError{Cause: err, ExitCode: exitCommandFailed}
	}
	return nil
}

func printGraph(ui cli.Ui, opts *cliOptions, selectors []string) error {
	kctx, err := newDemoContext(opts)
	if err != nil {
		return err
	}

	roots, err := kraken.ResolveSelectors(kctx.Root(), selectors)
	if err != nil {
		return &ExitCodeError{Cause: err, ExitCode: exitUsageError}
	}
	repr, err := kraken.DebugGraph(roots)
	if err != nil {
		return &ExitCodeError{Cause: err, ExitCode: exitCommandFailed}
	}
	ui.Output(repr)
	return nil
}
