package panel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DisplayLayout is how dates are typed into and shown by the forms.
const DisplayLayout = "02.01.2006"

var (
	displayDate = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	storageDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
)

// IsValidDateFormat accepts DD.MM.YYYY with day in [1,31], month in [1,12]
// and year in [1900,9999]. The day is not checked against the month.
func IsValidDateFormat(display string) bool {
	if !displayDate.MatchString(display) {
		return false
	}
	parts := strings.Split(display, ".")
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	year, _ := strconv.Atoi(parts[2])
	return day >= 1 && day <= 31 && month >= 1 && month <= 12 && year >= 1900 && year <= 9999
}

// ToStorageFormat turns DD.MM.YYYY into YYYY-MM-DDT00:00:00Z. The bool is
// false when the display value is rejected.
func ToStorageFormat(display string) (string, bool) {
	if !IsValidDateFormat(display) {
		return "", false
	}
	parts := strings.Split(display, ".")
	return fmt.Sprintf("%s-%s-%sT00:00:00Z", parts[2], parts[1], parts[0]), true
}

// ToDisplayFormat renders a stored timestamp as DD.MM.YYYY in UTC.
// Timestamps that carry an impossible calendar day (2024-02-31) are
// reassembled from their digits so accepted input always round-trips.
func ToDisplayFormat(storage string) (string, error) {
	storage = strings.TrimSpace(storage)
	if t, err := time.Parse(time.RFC3339, storage); err == nil {
		return t.UTC().Format(DisplayLayout), nil
	}
	m := storageDate.FindStringSubmatch(storage)
	if m == nil {
		return "", fmt.Errorf("unrecognized date %q", storage)
	}
	return m[3] + "." + m[2] + "." + m[1], nil
}
