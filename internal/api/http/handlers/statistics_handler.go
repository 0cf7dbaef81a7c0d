package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pticket/helpdesk/internal/api/dto"
	"github.com/pticket/helpdesk/internal/auth"
	"github.com/pticket/helpdesk/internal/policy"
	"github.com/pticket/helpdesk/internal/service"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// StatisticsHandler serves manager reports.
type StatisticsHandler struct {
	service *service.StatisticsService
}

// NewStatisticsHandler constructs handler.
func NewStatisticsHandler(statisticsService *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{service: statisticsService}
}

// Report GET /statistics.
func (h *StatisticsHandler) Report(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if !policy.CanViewStatistics(user) {
		return apperrors.NewForbidden("access denied")
	}
	from, to, err := parsePeriod(c)
	if err != nil {
		return err
	}
	report, err := h.service.BuildReport(c.Context(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": statisticsResponse(report)})
}

// Export GET /statistics/export. Streams an xlsx workbook.
func (h *StatisticsHandler) Export(c *fiber.Ctx) error {
	user := auth.UserFromContext(c)
	if !policy.CanViewStatistics(user) {
		return apperrors.NewForbidden("access denied")
	}
	from, to, err := parsePeriod(c)
	if err != nil {
		return err
	}
	buf, err := h.service.ExportExcel(c.Context(), from, to)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("ticket-report-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(buf.Bytes())
}

// parsePeriod reads the from/to query range, defaulting to the last 30 days.
func parsePeriod(c *fiber.Ctx) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if val := c.Query("from"); val != "" {
		parsed, err := time.Parse("2006-01-02", val)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewValidationError("invalid from date", nil)
		}
		from = parsed
	}
	if val := c.Query("to"); val != "" {
		parsed, err := time.Parse("2006-01-02", val)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewValidationError("invalid to date", nil)
		}
		// Include the whole end day.
		to = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}
	return from, to, nil
}

func statisticsResponse(report *service.Report) dto.StatisticsResponse {
	byStatus := make(map[string]int, len(report.ByStatus))
	for _, sc := range report.ByStatus {
		byStatus[string(sc.Status)] = sc.Count
	}
	byPriority := make(map[string]int, len(report.ByPriority))
	for _, pc := range report.ByPriority {
		byPriority[string(pc.Priority)] = pc.Count
	}
	byDept := make([]dto.DepartmentCountDTO, 0, len(report.ByDepartment))
	for _, dc := range report.ByDepartment {
		byDept = append(byDept, dto.DepartmentCountDTO{
			DepartmentID:   dc.DepartmentID,
			DepartmentName: dc.DepartmentName,
			Count:          dc.Count,
		})
	}
	techs := make([]dto.TechnicianLoadDTO, 0, len(report.Technicians))
	for _, tl := range report.Technicians {
		techs = append(techs, dto.TechnicianLoadDTO{
			TechnicianID: tl.UserID,
			FullName:     tl.FullName,
			OpenCount:    tl.OpenCount,
			Resolved:     tl.Resolved,
		})
	}
	return dto.StatisticsResponse{
		From:                  report.From,
		To:                    report.To,
		TotalTickets:          report.TotalTickets,
		OpenTickets:           report.OpenTickets,
		ResolvedOrClosedCount: report.ResolvedOrClosedCount,
		AvgResolutionHours:    report.AvgResolutionHours,
		ByStatus:              byStatus,
		ByPriority:            byPriority,
		ByDepartment:          byDept,
		Technicians:           techs,
	}
}
