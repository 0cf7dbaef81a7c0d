package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pticket/helpdesk/internal/api/dto"
	"github.com/pticket/helpdesk/internal/calendar"
	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/service"
	apperrors "github.com/pticket/helpdesk/pkg/util/errorutil"
)

// CalendarHandler serves Jalali calendar lookups.
type CalendarHandler struct {
	service *service.CalendarService
}

// NewCalendarHandler constructs handler.
func NewCalendarHandler(calendarService *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: calendarService}
}

// Today GET /calendar/today.
func (h *CalendarHandler) Today(c *fiber.Ctx) error {
	day, err := h.service.Today(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": calendarDayResponse(day)})
}

// Day GET /calendar/:date, date in YYYY-MM-DD.
func (h *CalendarHandler) Day(c *fiber.Ctx) error {
	date, err := time.Parse("2006-01-02", c.Params("date"))
	if err != nil {
		return apperrors.NewValidationError("invalid date, expected YYYY-MM-DD", nil)
	}
	day, err := h.service.Day(c.Context(), date)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": calendarDayResponse(day)})
}

// Month GET /calendar/month?year=&month= returns every day of a Jalali
// month.
func (h *CalendarHandler) Month(c *fiber.Ctx) error {
	year := c.QueryInt("year")
	month := c.QueryInt("month")
	days, err := h.service.Month(c.Context(), year, month)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	items := make([]dto.CalendarDayResponse, 0, len(days))
	for _, day := range days {
		items = append(items, calendarDayResponse(day))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ClearMonthCache DELETE /admin/calendar/month-cache?year=&month= drops the
// cached month blob so corrected holiday data is refetched.
func (h *CalendarHandler) ClearMonthCache(c *fiber.Ctx) error {
	year := c.QueryInt("year")
	month := c.QueryInt("month")
	if err := h.service.ClearMonthCache(c.Context(), year, month); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Convert GET /calendar/convert?year=&month=&day= converts a Jalali date.
func (h *CalendarHandler) Convert(c *fiber.Ctx) error {
	year := c.QueryInt("year")
	month := c.QueryInt("month")
	dayNum := c.QueryInt("day")
	day, err := h.service.Convert(year, month, dayNum)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return c.JSON(fiber.Map{"data": calendarDayResponse(day)})
}

func calendarDayResponse(day *domain.CalendarDay) dto.CalendarDayResponse {
	jd := calendar.JalaliDate{Year: day.JalaliYear, Month: day.JalaliMonth, Day: day.JalaliDay}
	return dto.CalendarDayResponse{
		Gregorian:   day.GregorianDay.Format("2006-01-02"),
		JalaliYear:  day.JalaliYear,
		JalaliMonth: day.JalaliMonth,
		JalaliDay:   day.JalaliDay,
		Jalali:      jd.Persian(),
		IsHoliday:   day.IsHoliday,
		Events:      day.Events,
	}
}
