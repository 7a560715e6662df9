package panel

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DateFormatMessage  = "Дата должна быть в формате ДД.ММ.ГГГГ"
	NoSelectionMessage = "Не выбран элемент"
)

// Result carries exactly one failure reason at a time.
type Result struct {
	Valid   bool
	Message string
}

func RequiredMessage(label string) string {
	return fmt.Sprintf("Поле \"%s\" не может быть пустым", label)
}

func NumberMessage(label string) string {
	return fmt.Sprintf("Поле \"%s\" должно быть числом", label)
}

func RangeMessage(f Field) string {
	return fmt.Sprintf("Поле \"%s\" должно быть в диапазоне от %g до %g", f.Label, f.Min, f.Max)
}

// Validate checks required fields in schema order, then dates, then numbers.
func Validate(rec map[string]string, s Schema) Result {
	for _, f := range s.Fields {
		if f.Required && strings.TrimSpace(rec[f.Key]) == "" {
			return Result{Message: RequiredMessage(f.Label)}
		}
	}
	for _, f := range s.Fields {
		if f.Kind != Date {
			continue
		}
		v := strings.TrimSpace(rec[f.Key])
		if v == "" && !f.Required {
			continue
		}
		if !IsValidDateFormat(v) {
			return Result{Message: DateFormatMessage}
		}
	}
	for _, f := range s.Fields {
		if f.Kind != Number {
			continue
		}
		v := strings.TrimSpace(rec[f.Key])
		if v == "" && !f.Required {
			continue
		}
		n, err := parseNumber(v)
		if err != nil {
			return Result{Message: NumberMessage(f.Label)}
		}
		if f.Max > f.Min && (n < f.Min || n > f.Max) {
			return Result{Message: RangeMessage(f)}
		}
	}
	return Result{Valid: true}
}

// parseNumber also takes a decimal comma.
func parseNumber(v string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(v), ",", ".", 1), 64)
}
