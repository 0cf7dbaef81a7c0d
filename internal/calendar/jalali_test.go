package calendar

import (
	"testing"
	"time"
)

func TestToJalali(t *testing.T) {
	cases := []struct {
		gy, gm, gd int
		jy, jm, jd int
	}{
		{2024, 3, 20, 1403, 1, 1},
		{2025, 3, 21, 1404, 1, 1},
		{2021, 3, 21, 1400, 1, 1},
		{2024, 8, 5, 1403, 5, 15},
		{1979, 2, 11, 1357, 11, 22},
		{2016, 3, 20, 1395, 1, 1},
	}
	for _, tc := range cases {
		jy, jm, jd := ToJalali(tc.gy, tc.gm, tc.gd)
		if jy != tc.jy || jm != tc.jm || jd != tc.jd {
			t.Errorf("ToJalali(%d,%d,%d) = %d/%d/%d, want %d/%d/%d",
				tc.gy, tc.gm, tc.gd, jy, jm, jd, tc.jy, tc.jm, tc.jd)
		}
	}
}

func TestToGregorian_RoundTrip(t *testing.T) {
	cases := []struct{ jy, jm, jd int }{
		{1403, 1, 1},
		{1403, 5, 15},
		{1403, 12, 30},
		{1404, 1, 1},
		{1357, 11, 22},
		{1400, 6, 31},
	}
	for _, tc := range cases {
		gy, gm, gd := ToGregorian(tc.jy, tc.jm, tc.jd)
		jy, jm, jd := ToJalali(gy, gm, gd)
		if jy != tc.jy || jm != tc.jm || jd != tc.jd {
			t.Errorf("round trip %d/%d/%d via %d-%d-%d gave %d/%d/%d",
				tc.jy, tc.jm, tc.jd, gy, gm, gd, jy, jm, jd)
		}
	}
}

func TestIsLeapYear(t *testing.T) {
	leap := map[int]bool{
		1399: true,
		1400: false,
		1403: true,
		1404: false,
		1395: true,
	}
	for jy, want := range leap {
		if got := IsLeapYear(jy); got != want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", jy, got, want)
		}
	}
}

func TestMonthLength(t *testing.T) {
	if got := MonthLength(1403, 1); got != 31 {
		t.Errorf("farvardin = %d, want 31", got)
	}
	if got := MonthLength(1403, 7); got != 30 {
		t.Errorf("mehr = %d, want 30", got)
	}
	if got := MonthLength(1403, 12); got != 30 {
		t.Errorf("esfand in leap year = %d, want 30", got)
	}
	if got := MonthLength(1404, 12); got != 29 {
		t.Errorf("esfand in common year = %d, want 29", got)
	}
}

func TestValid(t *testing.T) {
	if !Valid(1403, 12, 30) {
		t.Error("1403/12/30 should exist in a leap year")
	}
	if Valid(1404, 12, 30) {
		t.Error("1404/12/30 should not exist")
	}
	if Valid(1403, 13, 1) || Valid(1403, 0, 1) {
		t.Error("month out of range accepted")
	}
}

func TestFromTime(t *testing.T) {
	d := FromTime(time.Date(2024, 3, 20, 15, 4, 5, 0, time.UTC))
	if d.Year != 1403 || d.Month != 1 || d.Day != 1 {
		t.Fatalf("FromTime = %v", d)
	}
	if d.String() != "1403/01/01" {
		t.Errorf("String = %q", d.String())
	}
	if d.MonthName() != "فروردین" {
		t.Errorf("MonthName = %q", d.MonthName())
	}
}
