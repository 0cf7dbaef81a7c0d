package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pticket/helpdesk/internal/calendar"
	"github.com/pticket/helpdesk/internal/config"
	"github.com/pticket/helpdesk/internal/domain"
)

// The unreachable URL makes every upstream call fail fast, exercising the
// local-conversion fallback.
func newCalendarFixture(cache *fakeCalendarRepo) *CalendarService {
	cfg := config.CalendarConfig{APIURL: "http://127.0.0.1:0", TimeoutSeconds: 1}
	return NewCalendarService(cache, nil, cfg, zap.NewNop())
}

func TestDayResolvesInLocalTime(t *testing.T) {
	tehran := time.FixedZone("Asia/Tehran", int((3*time.Hour + 30*time.Minute).Seconds()))
	// 01:00 Tehran on Nowruz is still 21:30 the previous day in UTC; a UTC
	// truncation would land on the last day of the old year.
	early := time.Date(2024, 3, 20, 1, 0, 0, 0, tehran)

	cache := newFakeCalendarRepo()
	svc := newCalendarFixture(cache)

	day, err := svc.Day(context.Background(), early)
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if day.JalaliYear != 1403 || day.JalaliMonth != 1 || day.JalaliDay != 1 {
		t.Errorf("expected 1403/01/01, got %04d/%02d/%02d", day.JalaliYear, day.JalaliMonth, day.JalaliDay)
	}
	if len(cache.lookups) == 0 || cache.lookups[0] != "2024-03-20" {
		t.Errorf("cache must be keyed by the local day, lookups: %v", cache.lookups)
	}
}

func TestDayServedFromCache(t *testing.T) {
	cached := &domain.CalendarDay{
		GregorianDay: time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC),
		JalaliYear:   1404,
		JalaliMonth:  1,
		JalaliDay:    1,
		IsHoliday:    true,
		Events:       []string{"جشن نوروز"},
	}
	svc := newCalendarFixture(newFakeCalendarRepo(cached))

	day, err := svc.Day(context.Background(), cached.GregorianDay)
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if !day.IsHoliday || len(day.Events) != 1 {
		t.Errorf("cached holiday data lost: %+v", day)
	}
}

func TestMonthAssemblesEveryDay(t *testing.T) {
	cache := newFakeCalendarRepo()
	for d := 1; d <= 31; d++ {
		jd := calendar.JalaliDate{Year: 1403, Month: 1, Day: d}
		cache.days[jd.ToTime().Format("2006-01-02")] = &domain.CalendarDay{
			GregorianDay: jd.ToTime(),
			JalaliYear:   1403,
			JalaliMonth:  1,
			JalaliDay:    d,
			IsHoliday:    jd.ToTime().Weekday() == time.Friday,
		}
	}
	svc := newCalendarFixture(cache)

	days, err := svc.Month(context.Background(), 1403, 1)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if len(days) != 31 {
		t.Fatalf("farvardin has 31 days, got %d", len(days))
	}
	if days[0].JalaliDay != 1 || days[30].JalaliDay != 31 {
		t.Errorf("days out of order: first=%d last=%d", days[0].JalaliDay, days[30].JalaliDay)
	}
}

func TestMonthRejectsInvalidMonth(t *testing.T) {
	svc := newCalendarFixture(newFakeCalendarRepo())
	if _, err := svc.Month(context.Background(), 1403, 13); err == nil {
		t.Error("month 13 must be rejected")
	}
	if err := svc.ClearMonthCache(context.Background(), 1403, 0); err == nil {
		t.Error("month 0 must be rejected")
	}
}

func TestClearMonthCacheWithoutRedis(t *testing.T) {
	svc := newCalendarFixture(newFakeCalendarRepo())
	if err := svc.ClearMonthCache(context.Background(), 1403, 1); err != nil {
		t.Errorf("clearing without redis must be a no-op: %v", err)
	}
}

func TestConvertValidatesInput(t *testing.T) {
	svc := newCalendarFixture(newFakeCalendarRepo())

	day, err := svc.Convert(1403, 1, 1)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got := day.GregorianDay.Format("2006-01-02"); got != "2024-03-20" {
		t.Errorf("1403/01/01 = %s", got)
	}

	if _, err := svc.Convert(1403, 12, 31); err == nil {
		t.Error("1403/12/31 does not exist")
	}
}
