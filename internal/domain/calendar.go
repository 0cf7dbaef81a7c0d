package domain

import "time"

// CalendarDay caches one Jalali calendar day fetched from the external
// holiday API. Lookups hit this cache before the network.
type CalendarDay struct {
	ID           string
	GregorianDay time.Time
	JalaliYear   int
	JalaliMonth  int
	JalaliDay    int
	IsHoliday    bool
	Events       []string
	FetchedAt    time.Time
}
