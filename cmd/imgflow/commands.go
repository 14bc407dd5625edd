package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/systemstart/imgflow/pkg/actions"
	"github.com/systemstart/imgflow/pkg/api"
	"github.com/systemstart/imgflow/pkg/config"
	"github.com/systemstart/imgflow/pkg/processing"
	"github.com/systemstart/imgflow/pkg/progress"
	"github.com/systemstart/imgflow/pkg/services"
)

type options struct {
	settings config.Settings

	clipboard bool
	retry     uint
}

func newRunCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Run a workflow over files or glob patterns",
		Long: "Run a workflow over every file matching the given paths or doublestar\n" +
			"patterns. With --clipboard the file paths are read from the clipboard.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.settings.Workflow, "workflow", "w", opts.settings.Workflow, "workflow alias to run")
	flags.BoolVar(&opts.clipboard, "clipboard", false, "read input paths from the clipboard")
	flags.IntVar(&opts.settings.Concurrency, "concurrency", opts.settings.Concurrency, "number of inputs processed at once")
	flags.DurationVar(&opts.settings.StepTimeout, "step-timeout", opts.settings.StepTimeout, "timeout per step (0 = none)")
	flags.UintVar(&opts.retry, "retry", 0, "attempts for steps failing with a service error (overrides the document)")
	flags.BoolVar(&opts.settings.Plain, "plain", opts.settings.Plain, "print raw markdown progress")
	return cmd
}

func runWorkflow(cmd *cobra.Command, opts *options, args []string) error {
	doc, err := api.LoadDocument(opts.settings.Config)
	if err != nil {
		return err
	}

	steps, err := doc.Workflow(opts.settings.Workflow)
	if err != nil {
		return err
	}

	var clip processing.TextSource
	if opts.clipboard && len(args) == 0 {
		clip = services.SystemClipboard{}
	}
	inputs, err := processing.DiscoverInputs(args, clip)
	if err != nil {
		return err
	}

	slog.Info("running workflow",
		"workflow", opts.settings.Workflow,
		"document", doc.FilePath,
		"inputs", len(inputs),
		"steps", len(steps))

	term := progress.NewTerminal(cmd.OutOrStdout(), opts.settings.Plain)
	results, runErr := processing.RunAll(cmd.Context(), inputs, processing.RunOptions{
		Steps:       steps,
		Services:    doc.Services,
		Registry:    actions.NewRegistry(actions.DefaultDependencies()),
		Sink:        term.Sink(),
		Concurrency: opts.settings.Concurrency,
		Wrappers: []processing.StepWrapper{
			processing.RetryWrapper(retryPolicy(doc.Retry, opts.retry)),
			processing.TimeoutWrapper(opts.settings.StepTimeout),
		},
	})

	for _, r := range results {
		if r.Err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), r.Output.Value)
		}
	}
	return runErr
}

// retryPolicy applies the attempts override to the document policy.
func retryPolicy(doc *api.RetryConfig, attempts uint) *api.RetryConfig {
	if attempts == 0 {
		return doc
	}
	policy := api.RetryConfig{Attempts: attempts, Delay: time.Second, MaxDelay: 10 * time.Second}
	if doc != nil {
		policy.Delay, policy.MaxDelay = doc.Delay, doc.MaxDelay
	}
	return &policy
}

func newWorkflowsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "workflows",
		Short: "List the workflows of the document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := api.LoadDocument(opts.settings.Config)
			if err != nil {
				return err
			}
			for _, alias := range doc.Aliases() {
				steps := doc.Workflows[alias]
				labels := make([]string, len(steps))
				for i, s := range steps {
					labels[i] = fmt.Sprintf("%s (%s)", s.Label(), s.Action)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", alias, strings.Join(labels, " → "))
			}
			return nil
		},
	}
}

func newActionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the available actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range actions.NewRegistry(actions.DefaultDependencies()).Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
