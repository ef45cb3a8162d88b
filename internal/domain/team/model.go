package team

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const MaxNameLength = 50

var (
	ErrInvalidName             = errors.New("invalid team name")
	ErrInvalidRegistrationDate = errors.New("invalid registration date")
)

// referenceYear is a leap year so 29/02 is always a valid registration date.
const referenceYear = 1972

// Team is a registered tournament participant.
type Team struct {
	ID                    int64
	Name                  string
	Group                 int
	RegistrationDayOfYear int
}

func (t Team) Validate() error {
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	if t.Group < 1 {
		return fmt.Errorf("team group must be >= 1")
	}
	if t.RegistrationDayOfYear < 1 || t.RegistrationDayOfYear > 366 {
		return fmt.Errorf("%w: day of year %d", ErrInvalidRegistrationDate, t.RegistrationDayOfYear)
	}
	return nil
}

// RegistrationDate renders the registration day as DD/MM.
func (t Team) RegistrationDate() string {
	return FormatRegistrationDate(t.RegistrationDayOfYear)
}

func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name is longer than %d characters", ErrInvalidName, MaxNameLength)
	}
	hasSymbol := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			hasSymbol = true
		case r == ' ', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, r)
		}
	}
	if !hasSymbol {
		return fmt.Errorf("%w: name must contain a letter or digit", ErrInvalidName)
	}
	return nil
}

// ParseRegistrationDate converts a DD/MM string into a day of year.
func ParseRegistrationDate(ddmm string) (int, error) {
	value := strings.TrimSpace(ddmm)
	if len(value) != 5 || value[2] != '/' {
		return 0, fmt.Errorf("%w: %q is not DD/MM", ErrInvalidRegistrationDate, ddmm)
	}
	parsed, err := time.Parse("02/01/2006", fmt.Sprintf("%s/%d", value, referenceYear))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRegistrationDate, ddmm)
	}
	return parsed.YearDay(), nil
}

func FormatRegistrationDate(dayOfYear int) string {
	if dayOfYear < 1 || dayOfYear > 366 {
		return ""
	}
	date := time.Date(referenceYear, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, dayOfYear-1)
	return date.Format("02/01")
}
