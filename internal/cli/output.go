package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/pkg/apperrors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the store refused the operation
	ExitCommandError = 2 // bad flags, unreadable config, storage unavailable
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// operationError maps a store error to an ExitError with a readable message
func operationError(action string, err error) error {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return WrapExitError(ExitFailure, action, errors.New(custom.Message))
	}
	return WrapExitError(ExitFailure, action, err)
}

// CLIResponse is the JSON envelope written in --format json.
type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func (f *OutputFormatter) json(data interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(CLIResponse{Status: "ok", Data: data})
}

// Stats writes the status counts
func (f *OutputFormatter) Stats(stats *models.Stats) error {
	if f.Format == "json" {
		return f.json(stats)
	}
	_, err := fmt.Fprintf(f.Writer, "Total:    %d\nPending:  %d\nApproved: %d\nRejected: %d\n",
		stats.TotalStudents, stats.PendingAdmissions, stats.ApprovedStudents, stats.RejectedStudents)
	return err
}

// Applications writes a table of applications
func (f *OutputFormatter) Applications(apps []*models.Application, total int) error {
	if f.Format == "json" {
		return f.json(map[string]interface{}{"items": apps, "total": total})
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFATHER\tPHONE\tCLASS\tSTATUS\tROLL\tSECTION")
	for _, app := range apps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			app.ID, app.FullName, app.FatherName, app.PhoneNumber,
			models.ClassName(app.ClassApplyingFor), app.Status,
			valueOr(app.RollNumber, "-"), valueOr(app.Section, "-"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(f.Writer, "%d of %d application(s)\n", len(apps), total)
	return err
}

// Application writes one application after a decision
func (f *OutputFormatter) Application(app *models.Application) error {
	if f.Format == "json" {
		return f.json(app)
	}
	line := fmt.Sprintf("%s %s: %s", app.ID, app.FullName, app.Status)
	if app.RollNumber != nil {
		line += fmt.Sprintf(" (roll %s, section %s)", *app.RollNumber, valueOr(app.Section, "-"))
	}
	_, err := fmt.Fprintln(f.Writer, line)
	return err
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
