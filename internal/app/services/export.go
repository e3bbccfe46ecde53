package services

import (
	"context"
	"strings"

	"github.com/ribat/admissions/internal/app/models"
)

// CSVHeader is the first line of every export
const CSVHeader = "Name,Father Name,Phone,Class,Status,Roll No,Section"

// RenderCSV renders applications in the dashboard export format.
// Fields are joined with commas and not quoted; rows are separated by "\n" with no trailing newline.
func RenderCSV(apps []*models.Application) string {
	rows := make([]string, 0, len(apps)+1)
	rows = append(rows, CSVHeader)
	for _, app := range apps {
		rows = append(rows, strings.Join([]string{
			app.FullName,
			app.FatherName,
			app.PhoneNumber,
			models.ClassName(app.ClassApplyingFor),
			string(app.Status),
			orDash(app.RollNumber),
			orDash(app.Section),
		}, ","))
	}
	return strings.Join(rows, "\n")
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// Export renders every application matching filter in collection order, ignoring its paging fields
func (s *AdmissionService) Export(ctx context.Context, filter models.ApplicationFilter) (string, error) {
	filter.Page, filter.Size = 0, 0
	filter.Order = models.OrderInserted
	apps, _, err := s.List(ctx, filter)
	if err != nil {
		return "", err
	}
	s.logger.Debug().Int("rows", len(apps)).Msg("Exporting applications")
	return RenderCSV(apps), nil
}
