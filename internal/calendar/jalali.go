// Package calendar converts between Gregorian and Jalali (Solar Hijri)
// dates. The arithmetic follows the 2820-year cycle break table used by the
// common jalaali implementations, so results agree with the official Iranian
// calendar for the years this system will ever see.
package calendar

import (
	"fmt"
	"time"

	"github.com/pticket/helpdesk/internal/identity"
)

// JalaliDate is a date in the Solar Hijri calendar.
type JalaliDate struct {
	Year  int
	Month int
	Day   int
}

// String renders the usual YYYY/MM/DD form with ASCII digits.
func (d JalaliDate) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// Persian renders the date with Persian digits.
func (d JalaliDate) Persian() string {
	return identity.ToPersianDigits(d.String())
}

// MonthName returns the Persian month name.
func (d JalaliDate) MonthName() string {
	if d.Month < 1 || d.Month > 12 {
		return ""
	}
	return monthNames[d.Month-1]
}

var monthNames = [12]string{
	"فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
	"مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
}

// WeekdayName returns the Persian weekday name for a Gregorian time.
func WeekdayName(t time.Time) string {
	return weekdayNames[t.Weekday()]
}

var weekdayNames = [7]string{
	"یکشنبه", "دوشنبه", "سه‌شنبه", "چهارشنبه", "پنجشنبه", "جمعه", "شنبه",
}

// FromTime converts a Gregorian time to its Jalali date.
func FromTime(t time.Time) JalaliDate {
	y, m, d := ToJalali(t.Year(), int(t.Month()), t.Day())
	return JalaliDate{Year: y, Month: m, Day: d}
}

// ToTime converts a Jalali date to a Gregorian time at midnight UTC.
func (d JalaliDate) ToTime() time.Time {
	gy, gm, gd := ToGregorian(d.Year, d.Month, d.Day)
	return time.Date(gy, time.Month(gm), gd, 0, 0, 0, 0, time.UTC)
}

// ToJalali converts a Gregorian date to Jalali.
func ToJalali(gy, gm, gd int) (int, int, int) {
	return d2j(g2d(gy, gm, gd))
}

// ToGregorian converts a Jalali date to Gregorian.
func ToGregorian(jy, jm, jd int) (int, int, int) {
	return d2g(j2d(jy, jm, jd))
}

// IsLeapYear reports whether the Jalali year has 366 days.
func IsLeapYear(jy int) bool {
	leap, _, _ := jalCal(jy)
	return leap == 0
}

// MonthLength returns the number of days in the Jalali month.
func MonthLength(jy, jm int) int {
	switch {
	case jm <= 6:
		return 31
	case jm <= 11:
		return 30
	case IsLeapYear(jy):
		return 30
	default:
		return 29
	}
}

// Valid reports whether the Jalali date exists.
func Valid(jy, jm, jd int) bool {
	return jy >= -61 && jy <= 3177 &&
		jm >= 1 && jm <= 12 &&
		jd >= 1 && jd <= MonthLength(jy, jm)
}

// breaks marks the Jalali years where the leap pattern shifts within the
// 2820-year grand cycle.
var breaks = [...]int{
	-61, 9, 38, 199, 426, 686, 756, 818, 1111, 1181, 1210,
	1635, 2060, 2097, 2192, 2262, 2324, 2394, 2456, 3178,
}

// jalCal determines the leapness of jy, its Gregorian counterpart, and the
// March day the year starts on.
func jalCal(jy int) (leap, gy, march int) {
	gy = jy + 621
	leapJ := -14
	jp := breaks[0]

	var jump int
	for i := 1; i < len(breaks); i++ {
		jm := breaks[i]
		jump = jm - jp
		if jy < jm {
			break
		}
		leapJ += jump/33*8 + jump%33/4
		jp = jm
	}
	n := jy - jp

	leapJ += n/33*8 + (n%33+3)/4
	if jump%33 == 4 && jump-n == 4 {
		leapJ++
	}

	leapG := gy/4 - (gy/100+1)*3/4 - 150
	march = 20 + leapJ - leapG

	if jump-n < 6 {
		n = n - jump + (jump+4)/33*33
	}
	leap = ((n+1)%33 - 1) % 4
	if leap == -1 {
		leap = 4
	}
	return leap, gy, march
}

// j2d converts a Jalali date to its Julian day number.
func j2d(jy, jm, jd int) int {
	_, gy, march := jalCal(jy)
	return g2d(gy, 3, march) + (jm-1)*31 - jm/7*(jm-7) + jd - 1
}

// d2j converts a Julian day number to a Jalali date.
func d2j(jdn int) (jy, jm, jd int) {
	gy, _, _ := d2g(jdn)
	jy = gy - 621
	leap, _, march := jalCal(jy)
	jdn1f := g2d(gy, 3, march)

	k := jdn - jdn1f
	if k >= 0 {
		if k <= 185 {
			return jy, 1 + k/31, k%31 + 1
		}
		k -= 186
	} else {
		jy--
		k += 179
		if leap == 1 {
			k++
		}
	}
	return jy, 7 + k/30, k%30 + 1
}

// g2d converts a Gregorian date to its Julian day number.
func g2d(gy, gm, gd int) int {
	d := (gy+(gm-8)/6+100100)*1461/4 + (153*((gm+9)%12)+2)/5 + gd - 34840408
	return d - (gy+100100+(gm-8)/6)/100*3/4 + 752
}

// d2g converts a Julian day number to a Gregorian date.
func d2g(jdn int) (gy, gm, gd int) {
	j := 4*jdn + 139361631
	j += (4*jdn+183187720)/146097*3/4*4 - 3908
	i := j%1461/4*5 + 308
	gd = i%153/5 + 1
	gm = i/153%12 + 1
	gy = j/1461 - 100100 + (8-gm)/6
	return gy, gm, gd
}
