package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pticket/helpdesk/internal/domain"
)

// CalendarRepository caches Jalali calendar days.
type CalendarRepository interface {
	GetByGregorian(ctx context.Context, day time.Time) (*domain.CalendarDay, error)
	Upsert(ctx context.Context, day *domain.CalendarDay) error
}

type calendarRepository struct {
	pool *pgxpool.Pool
}

// NewCalendarRepository instantiates repository.
func NewCalendarRepository(pool *pgxpool.Pool) CalendarRepository {
	return &calendarRepository{pool: pool}
}

func (r *calendarRepository) GetByGregorian(ctx context.Context, day time.Time) (*domain.CalendarDay, error) {
	const query = `
        SELECT id, gregorian_day, jalali_year, jalali_month, jalali_day, is_holiday, events, fetched_at
        FROM calendar_days WHERE gregorian_day=$1`
	var cd domain.CalendarDay
	if err := r.pool.QueryRow(ctx, query, day.Format("2006-01-02")).Scan(
		&cd.ID,
		&cd.GregorianDay,
		&cd.JalaliYear,
		&cd.JalaliMonth,
		&cd.JalaliDay,
		&cd.IsHoliday,
		&cd.Events,
		&cd.FetchedAt,
	); err != nil {
		return nil, err
	}
	return &cd, nil
}

func (r *calendarRepository) Upsert(ctx context.Context, day *domain.CalendarDay) error {
	const query = `
        INSERT INTO calendar_days (gregorian_day, jalali_year, jalali_month, jalali_day, is_holiday, events, fetched_at)
        VALUES ($1,$2,$3,$4,$5,$6,NOW())
        ON CONFLICT (gregorian_day) DO UPDATE SET
            jalali_year=EXCLUDED.jalali_year,
            jalali_month=EXCLUDED.jalali_month,
            jalali_day=EXCLUDED.jalali_day,
            is_holiday=EXCLUDED.is_holiday,
            events=EXCLUDED.events,
            fetched_at=NOW()
        RETURNING id, fetched_at`
	return r.pool.QueryRow(ctx, query,
		day.GregorianDay.Format("2006-01-02"),
		day.JalaliYear,
		day.JalaliMonth,
		day.JalaliDay,
		day.IsHoliday,
		day.Events,
	).Scan(&day.ID, &day.FetchedAt)
}
