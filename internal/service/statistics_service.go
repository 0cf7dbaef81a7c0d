package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pticket/helpdesk/internal/calendar"
	"github.com/pticket/helpdesk/internal/repository"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// StatisticsService builds ticket reports for managers.
type StatisticsService struct {
	stats repository.StatisticsRepository
}

// NewStatisticsService constructs the service.
func NewStatisticsService(stats repository.StatisticsRepository) *StatisticsService {
	return &StatisticsService{stats: stats}
}

// Report is the aggregate snapshot behind the statistics views.
type Report struct {
	From                  time.Time
	To                    time.Time
	ByStatus              []repository.StatusCount
	ByPriority            []repository.PriorityCount
	ByDepartment          []repository.DepartmentCount
	Technicians           []repository.TechnicianLoad
	AvgResolutionHours    float64
	TotalTickets          int
	OpenTickets           int
	ResolvedOrClosedCount int
}

// BuildReport gathers all aggregates for the period.
func (s *StatisticsService) BuildReport(ctx context.Context, from, to time.Time) (*Report, error) {
	if to.Before(from) {
		return nil, apperrors.NewValidationError("period end before start", nil)
	}

	report := &Report{From: from, To: to}

	var err error
	if report.ByStatus, err = s.stats.CountByStatus(ctx, from, to); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if report.ByPriority, err = s.stats.CountByPriority(ctx, from, to); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if report.ByDepartment, err = s.stats.CountByDepartment(ctx, from, to); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if report.Technicians, err = s.stats.TechnicianLoads(ctx, from, to); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	if report.AvgResolutionHours, err = s.stats.AverageResolutionHours(ctx, from, to); err != nil {
		return nil, apperrors.ToDomainError(err)
	}

	for _, sc := range report.ByStatus {
		report.TotalTickets += sc.Count
		switch sc.Status {
		case "resolved", "closed":
			report.ResolvedOrClosedCount += sc.Count
		default:
			report.OpenTickets += sc.Count
		}
	}
	return report, nil
}

// ExportExcel renders the report as an xlsx workbook. Dates in the summary
// sheet are printed in the Jalali calendar, matching the rest of the UI.
func (s *StatisticsService) ExportExcel(ctx context.Context, from, to time.Time) (*bytes.Buffer, error) {
	report, err := s.BuildReport(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	f.SetSheetName("Sheet1", summary)

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	fromJ := calendar.FromTime(report.From)
	toJ := calendar.FromTime(report.To)
	f.SetCellValue(summary, "A1", "گزارش تیکت‌ها")
	f.SetCellValue(summary, "A2", "از تاریخ")
	f.SetCellValue(summary, "B2", fromJ.Persian())
	f.SetCellValue(summary, "A3", "تا تاریخ")
	f.SetCellValue(summary, "B3", toJ.Persian())
	f.SetCellValue(summary, "A4", "کل تیکت‌ها")
	f.SetCellValue(summary, "B4", report.TotalTickets)
	f.SetCellValue(summary, "A5", "تیکت‌های باز")
	f.SetCellValue(summary, "B5", report.OpenTickets)
	f.SetCellValue(summary, "A6", "میانگین زمان حل (ساعت)")
	f.SetCellValue(summary, "B6", fmt.Sprintf("%.1f", report.AvgResolutionHours))
	f.SetCellStyle(summary, "A1", "A6", header)

	const byStatus = "By Status"
	if _, err := f.NewSheet(byStatus); err != nil {
		return nil, err
	}
	f.SetCellValue(byStatus, "A1", "وضعیت")
	f.SetCellValue(byStatus, "B1", "تعداد")
	f.SetCellStyle(byStatus, "A1", "B1", header)
	for i, sc := range report.ByStatus {
		row := i + 2
		f.SetCellValue(byStatus, fmt.Sprintf("A%d", row), string(sc.Status))
		f.SetCellValue(byStatus, fmt.Sprintf("B%d", row), sc.Count)
	}

	const byDept = "By Department"
	if _, err := f.NewSheet(byDept); err != nil {
		return nil, err
	}
	f.SetCellValue(byDept, "A1", "واحد")
	f.SetCellValue(byDept, "B1", "تعداد")
	f.SetCellStyle(byDept, "A1", "B1", header)
	for i, dc := range report.ByDepartment {
		row := i + 2
		f.SetCellValue(byDept, fmt.Sprintf("A%d", row), dc.DepartmentName)
		f.SetCellValue(byDept, fmt.Sprintf("B%d", row), dc.Count)
	}

	const techs = "Technicians"
	if _, err := f.NewSheet(techs); err != nil {
		return nil, err
	}
	f.SetCellValue(techs, "A1", "کارشناس")
	f.SetCellValue(techs, "B1", "باز")
	f.SetCellValue(techs, "C1", "حل‌شده")
	f.SetCellStyle(techs, "A1", "C1", header)
	for i, tl := range report.Technicians {
		row := i + 2
		f.SetCellValue(techs, fmt.Sprintf("A%d", row), tl.FullName)
		f.SetCellValue(techs, fmt.Sprintf("B%d", row), tl.OpenCount)
		f.SetCellValue(techs, fmt.Sprintf("C%d", row), tl.Resolved)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
