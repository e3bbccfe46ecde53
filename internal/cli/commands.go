package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ribat/admissions/internal/app/models"
)

func formatterFor(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// filterFlags are shared by list and export
type filterFlags struct {
	status string
	class  string
	search string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.status, "status", "", "filter by status (pending|approved|rejected)")
	cmd.Flags().StringVar(&f.class, "class", "", "filter by class code")
	cmd.Flags().StringVar(&f.search, "search", "", "search name, father name, roll number or phone")
}

func (f *filterFlags) filter() models.ApplicationFilter {
	return models.ApplicationFilter{
		Status:    models.ApplicationStatus(f.status),
		ClassCode: f.class,
		Search:    f.search,
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show application counts by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openFor(cmd, rootOpts, open)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open storage", err)
			}
			defer closeFn()

			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return operationError("failed to compute stats", err)
			}
			return formatterFor(cmd, rootOpts).Stats(stats)
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions, open Opener) *cobra.Command {
	var (
		filters filterFlags
		page    int
		size    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openFor(cmd, rootOpts, open)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open storage", err)
			}
			defer closeFn()

			filter := filters.filter()
			filter.Page, filter.Size = page, size
			apps, total, err := svc.List(cmd.Context(), filter)
			if err != nil {
				return operationError("failed to list applications", err)
			}
			return formatterFor(cmd, rootOpts).Applications(apps, total)
		},
	}

	filters.register(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", 0, "page size (0 lists everything)")
	return cmd
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions, open Opener) *cobra.Command {
	var (
		filters filterFlags
		output  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export applications as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openFor(cmd, rootOpts, open)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open storage", err)
			}
			defer closeFn()

			csv, err := svc.Export(cmd.Context(), filters.filter())
			if err != nil {
				return operationError("failed to export applications", err)
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), csv)
				return err
			}
			if err := os.WriteFile(output, []byte(csv), 0o644); err != nil {
				return WrapExitError(ExitCommandError, "failed to write export file", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the CSV to a file instead of stdout")
	return cmd
}

// NewApproveCommand creates the approve command.
func NewApproveCommand(rootOpts *RootOptions, open Opener) *cobra.Command {
	var roll, section string

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending application with a roll number and section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openFor(cmd, rootOpts, open)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open storage", err)
			}
			defer closeFn()

			app, err := svc.Approve(cmd.Context(), args[0], roll, section)
			if err != nil {
				return operationError("failed to approve application", err)
			}
			return formatterFor(cmd, rootOpts).Application(app)
		},
	}

	cmd.Flags().StringVar(&roll, "roll", "", "roll number to assign")
	cmd.Flags().StringVar(&section, "section", "", "section to assign")
	_ = cmd.MarkFlagRequired("roll")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}

// NewRejectCommand creates the reject command.
func NewRejectCommand(rootOpts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openFor(cmd, rootOpts, open)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open storage", err)
			}
			defer closeFn()

			app, err := svc.Reject(cmd.Context(), args[0])
			if err != nil {
				return operationError("failed to reject application", err)
			}
			return formatterFor(cmd, rootOpts).Application(app)
		},
	}
}
