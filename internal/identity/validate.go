package identity

import "errors"

var (
	ErrNationalIDLength   = errors.New("national id must be exactly 10 digits")
	ErrNationalIDAllZeros = errors.New("national id cannot be all zeros")
	ErrNationalIDChecksum = errors.New("national id checksum is invalid")
	ErrEmployeeCodeFormat = errors.New("employee code must be exactly 4 digits")
	ErrMobileFormat       = errors.New("mobile number must be 11 digits starting with 09")
	ErrMobilePrefix       = errors.New("mobile number prefix is not valid")
)

// ValidateNationalID normalizes and validates an Iranian national ID using
// the official checksum algorithm. Returns the normalized value on success.
func ValidateNationalID(value string) (string, error) {
	cleaned := NormalizeNationalID(value)
	if len(cleaned) != 10 || !isAllDigits(cleaned) {
		return "", ErrNationalIDLength
	}
	if cleaned == "0000000000" {
		return "", ErrNationalIDAllZeros
	}
	if !nationalIDChecksumValid(cleaned) {
		return "", ErrNationalIDChecksum
	}
	return cleaned, nil
}

// nationalIDChecksumValid applies the official algorithm: the first nine
// digits are weighted 10 down to 2 and summed; with r = sum mod 11 the
// check digit must equal r when r < 2, otherwise 11 - r.
func nationalIDChecksumValid(id string) bool {
	if len(id) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(id[i]-'0') * (10 - i)
	}
	check := int(id[9] - '0')
	r := sum % 11
	if r < 2 {
		return check == r
	}
	return check == 11-r
}

// ValidateEmployeeCode normalizes and validates a four digit employee code.
func ValidateEmployeeCode(value string) (string, error) {
	cleaned := NormalizeEmployeeCode(value)
	if len(cleaned) != 4 || !isAllDigits(cleaned) {
		return "", ErrEmployeeCodeFormat
	}
	return cleaned, nil
}

// ValidateMobile normalizes and validates an Iranian mobile number
// (11 digits, prefix 091 through 099).
func ValidateMobile(value string) (string, error) {
	cleaned := stripSeparators(NormalizeDigits(value))
	if len(cleaned) != 11 || !isAllDigits(cleaned) {
		return "", ErrMobileFormat
	}
	if cleaned[0] != '0' || cleaned[1] != '9' {
		return "", ErrMobileFormat
	}
	if cleaned[2] < '1' || cleaned[2] > '9' {
		return "", ErrMobilePrefix
	}
	return cleaned, nil
}

func isAllDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
