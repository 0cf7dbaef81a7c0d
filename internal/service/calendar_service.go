package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pticket/helpdesk/internal/calendar"
	"github.com/pticket/helpdesk/internal/config"
	"github.com/pticket/helpdesk/internal/domain"
	"github.com/pticket/helpdesk/internal/repository"
)

const monthCacheTTL = 12 * time.Hour

// CalendarService resolves Jalali dates and holiday information. Conversion
// is pure arithmetic; holiday and event data comes from the external
// calendar API and is cached per day in Postgres, so each day costs at most
// one upstream call. Whole-month reads are additionally cached as a single
// Redis blob.
type CalendarService struct {
	cache  repository.CalendarRepository
	redis  *redis.Client
	client *http.Client
	apiURL string
	logger *zap.Logger
	now    func() time.Time
}

// NewCalendarService constructs the service. The Redis client may be nil;
// month reads then fall through to Postgres and the API.
func NewCalendarService(cache repository.CalendarRepository, rdb *redis.Client, cfg config.CalendarConfig, logger *zap.Logger) *CalendarService {
	return &CalendarService{
		cache:  cache,
		redis:  rdb,
		client: &http.Client{Timeout: cfg.Timeout()},
		apiURL: cfg.APIURL,
		logger: logger,
		now:    time.Now,
	}
}

// Today returns today's calendar day.
func (s *CalendarService) Today(ctx context.Context) (*domain.CalendarDay, error) {
	return s.Day(ctx, s.now())
}

// dayStart normalizes a time to midnight in its own location. Truncating to
// 24h would cut on UTC boundaries and shift early-morning Tehran times onto
// the previous day.
func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Day returns the calendar day for the given Gregorian date. The cache is
// consulted first; an upstream failure degrades to local conversion with the
// Friday-as-holiday rule instead of failing the request.
func (s *CalendarService) Day(ctx context.Context, t time.Time) (*domain.CalendarDay, error) {
	day := dayStart(t)

	if cached, err := s.cache.GetByGregorian(ctx, day); err == nil {
		return cached, nil
	}

	jd := calendar.FromTime(day)
	result := &domain.CalendarDay{
		GregorianDay: day,
		JalaliYear:   jd.Year,
		JalaliMonth:  jd.Month,
		JalaliDay:    jd.Day,
		IsHoliday:    day.Weekday() == time.Friday,
	}

	if holiday, events, err := s.fetch(ctx, jd); err != nil {
		s.logger.Warn("calendar api unavailable, serving local conversion",
			zap.String("day", day.Format("2006-01-02")), zap.Error(err))
		// Not cached: a later sweep can still pick up the real holiday data.
		return result, nil
	} else {
		result.IsHoliday = result.IsHoliday || holiday
		result.Events = events
	}

	if err := s.cache.Upsert(ctx, result); err != nil {
		s.logger.Warn("calendar cache write failed", zap.Error(err))
	}
	return result, nil
}

// Month returns every day of a Jalali month. The whole month is cached as
// one Redis blob; on a miss the days are assembled through the per-day path
// (Postgres, then the API) and the blob is written back.
func (s *CalendarService) Month(ctx context.Context, jy, jm int) ([]*domain.CalendarDay, error) {
	if !calendar.Valid(jy, jm, 1) {
		return nil, fmt.Errorf("invalid jalali month %d/%d", jy, jm)
	}

	key := monthCacheKey(jy, jm)
	if s.redis != nil {
		if blob, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			var days []*domain.CalendarDay
			if err := json.Unmarshal(blob, &days); err == nil {
				return days, nil
			}
			// A blob that no longer unmarshals is stale; drop it.
			s.redis.Del(ctx, key)
		}
	}

	length := calendar.MonthLength(jy, jm)
	days := make([]*domain.CalendarDay, 0, length)
	for d := 1; d <= length; d++ {
		jd := calendar.JalaliDate{Year: jy, Month: jm, Day: d}
		day, err := s.Day(ctx, jd.ToTime())
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}

	if s.redis != nil {
		if blob, err := json.Marshal(days); err == nil {
			if err := s.redis.Set(ctx, key, blob, monthCacheTTL).Err(); err != nil {
				s.logger.Warn("calendar month cache write failed", zap.Error(err))
			}
		}
	}
	return days, nil
}

// ClearMonthCache drops the Redis blob for one month so the next read
// rebuilds it, picking up corrected holiday data.
func (s *CalendarService) ClearMonthCache(ctx context.Context, jy, jm int) error {
	if !calendar.Valid(jy, jm, 1) {
		return fmt.Errorf("invalid jalali month %d/%d", jy, jm)
	}
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, monthCacheKey(jy, jm)).Err()
}

func monthCacheKey(jy, jm int) string {
	return fmt.Sprintf("calendar:month:%04d-%02d", jy, jm)
}

// Convert translates a Jalali date string request into both calendars.
func (s *CalendarService) Convert(jy, jm, jd int) (*domain.CalendarDay, error) {
	if !calendar.Valid(jy, jm, jd) {
		return nil, fmt.Errorf("invalid jalali date %d/%d/%d", jy, jm, jd)
	}
	date := calendar.JalaliDate{Year: jy, Month: jm, Day: jd}
	g := date.ToTime()
	return &domain.CalendarDay{
		GregorianDay: g,
		JalaliYear:   jy,
		JalaliMonth:  jm,
		JalaliDay:    jd,
		IsHoliday:    g.Weekday() == time.Friday,
	}, nil
}

type calendarAPIResponse struct {
	Status bool `json:"status"`
	Result struct {
		Holiday bool     `json:"holiday"`
		Events  []string `json:"event"`
	} `json:"result"`
}

func (s *CalendarService) fetch(ctx context.Context, jd calendar.JalaliDate) (bool, []string, error) {
	url := fmt.Sprintf("%s?year=%d&month=%d&day=%d", s.apiURL, jd.Year, jd.Month, jd.Day)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil, fmt.Errorf("calendar api status %d", resp.StatusCode)
	}

	var parsed calendarAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, nil, err
	}
	if !parsed.Status {
		return false, nil, fmt.Errorf("calendar api returned status=false")
	}
	return parsed.Result.Holiday, parsed.Result.Events, nil
}
