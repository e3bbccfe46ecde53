package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ribat/admissions/internal/app/services"
	"github.com/ribat/admissions/internal/bootstrap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Opener gives a command an admission service over the configured storage.
// The returned func releases the storage.
type Opener func(ctx context.Context, opts *RootOptions, logOutput io.Writer) (*services.AdmissionService, func(), error)

// NewRootCommand creates the root command backed by the configured storage driver.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOpener(OpenConfiguredStorage)
}

// NewRootCommandWithOpener creates the root command with a custom storage opener.
func NewRootCommandWithOpener(open Opener) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "admissionctl",
		Short: "Manage madrasa admission applications",
		Long: `Review, approve, reject and export admission applications
from the command line against the configured storage driver.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", bootstrap.DefaultConfigPath, "path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewStatsCommand(opts, open))
	cmd.AddCommand(NewListCommand(opts, open))
	cmd.AddCommand(NewExportCommand(opts, open))
	cmd.AddCommand(NewApproveCommand(opts, open))
	cmd.AddCommand(NewRejectCommand(opts, open))

	return cmd
}

// OpenConfiguredStorage loads the config file and opens its storage driver.
// With the memory driver every invocation starts from the seeded data.
func OpenConfiguredStorage(ctx context.Context, opts *RootOptions, logOutput io.Writer) (*services.AdmissionService, func(), error) {
	if !opts.Verbose {
		logOutput = io.Discard
	}

	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(opts.ConfigPath, logOutput)
	if err != nil {
		return nil, nil, err
	}

	storage, err := bootstrap.SetupStorage(ctx, cfg, lgr)
	if err != nil {
		return nil, nil, err
	}

	return services.NewAdmissionService(storage.Repos.Applications, lgr), storage.Close, nil
}

func openFor(cmd *cobra.Command, opts *RootOptions, open Opener) (*services.AdmissionService, func(), error) {
	svc, closeFn, err := open(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	if closeFn == nil {
		closeFn = func() {}
	}
	return svc, closeFn, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
