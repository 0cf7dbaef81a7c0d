package identity

import (
	"errors"
	"testing"
)

func TestNormalizeDigits_PersianAndArabic(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"۱۲۳۴", "1234"},
		{"٠١٢٣", "0123"},
		{" ۱۲۳۴ ", "1234"},
		{"1234", "1234"},
		{"۱2۳4", "1234"},
		{"", ""},
		{"  ", ""},
	}
	for _, tc := range cases {
		if got := NormalizeDigits(tc.in); got != tc.want {
			t.Errorf("NormalizeDigits(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeNationalID_StripsSeparators(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"111-111-1111", "1111111111"},
		{"111 111 1111", "1111111111"},
		{"۱۱۱۱۱۱۱۱۱۱", "1111111111"},
	}
	for _, tc := range cases {
		if got := NormalizeNationalID(tc.in); got != tc.want {
			t.Errorf("NormalizeNationalID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateNationalID_Valid(t *testing.T) {
	// Repeated-digit IDs whose check digit happens to satisfy the official
	// algorithm; the same set the legacy system used as fixtures.
	valid := []string{
		"1111111111",
		"2222222222",
		"3333333333",
		"4444444444",
		"5555555555",
	}
	for _, id := range valid {
		got, err := ValidateNationalID(id)
		if err != nil {
			t.Errorf("ValidateNationalID(%q) unexpected error: %v", id, err)
			continue
		}
		if got != id {
			t.Errorf("ValidateNationalID(%q) = %q, want %q", id, got, id)
		}
	}
}

func TestValidateNationalID_PersianInput(t *testing.T) {
	got, err := ValidateNationalID("۱۱۱۱۱۱۱۱۱۱")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1111111111" {
		t.Errorf("got %q, want 1111111111", got)
	}
}

func TestValidateNationalID_Invalid(t *testing.T) {
	cases := []struct {
		in      string
		wantErr error
	}{
		{"1111111110", ErrNationalIDChecksum},
		{"2222222221", ErrNationalIDChecksum},
		{"123456789", ErrNationalIDLength},
		{"12345678901", ErrNationalIDLength},
		{"0000000000", ErrNationalIDAllZeros},
		{"123456789a", ErrNationalIDLength},
		{"", ErrNationalIDLength},
	}
	for _, tc := range cases {
		_, err := ValidateNationalID(tc.in)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("ValidateNationalID(%q) error = %v, want %v", tc.in, err, tc.wantErr)
		}
	}
}

func TestValidateEmployeeCode(t *testing.T) {
	if got, err := ValidateEmployeeCode("۱۲۳۴"); err != nil || got != "1234" {
		t.Errorf("ValidateEmployeeCode(۱۲۳۴) = %q, %v", got, err)
	}
	for _, bad := range []string{"123", "12345", "12a4", ""} {
		if _, err := ValidateEmployeeCode(bad); !errors.Is(err, ErrEmployeeCodeFormat) {
			t.Errorf("ValidateEmployeeCode(%q) error = %v, want ErrEmployeeCodeFormat", bad, err)
		}
	}
}

func TestValidateMobile(t *testing.T) {
	valid := []string{
		"09123456789",
		"09901234567",
		"۰۹۱۲۳۴۵۶۷۸۹",
	}
	for _, m := range valid {
		if _, err := ValidateMobile(m); err != nil {
			t.Errorf("ValidateMobile(%q) unexpected error: %v", m, err)
		}
	}

	invalid := map[string]error{
		"08123456789":  ErrMobileFormat,
		"0912345678":   ErrMobileFormat,
		"091234567890": ErrMobileFormat,
		"0912345678a":  ErrMobileFormat,
		"09023456789":  ErrMobilePrefix,
	}
	for m, wantErr := range invalid {
		if _, err := ValidateMobile(m); !errors.Is(err, wantErr) {
			t.Errorf("ValidateMobile(%q) error = %v, want %v", m, err, wantErr)
		}
	}
}

func TestToPersianDigits(t *testing.T) {
	if got := ToPersianDigits("1403/01/01"); got != "۱۴۰۳/۰۱/۰۱" {
		t.Errorf("ToPersianDigits = %q", got)
	}
}
