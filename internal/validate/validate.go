package validate

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reSKU   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

var ErrEmpty = errors.New("value is empty")

// maxMoney is the largest amount whose cent value fits in an int64.
var maxMoney = decimal.New(math.MaxInt64, -2)

// Decimal parses an exact decimal amount such as "19.99".
func Decimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, ErrEmpty
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a decimal")
	}
	return d, nil
}

// Money is Decimal restricted to non-negative amounts of whole cents.
func Money(s string) (decimal.Decimal, error) {
	d, err := Decimal(s)
	if err != nil {
		return d, err
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("negative amount")
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Decimal{}, fmt.Errorf("more than 2 decimal places")
	}
	if d.GreaterThan(maxMoney) {
		return decimal.Decimal{}, fmt.Errorf("amount out of range")
	}
	return d, nil
}

// OptionalMoney treats an empty value as absent.
func OptionalMoney(s string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := Money(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func Int(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	return n, nil
}

// ID parses a positive integer identifier.
func ID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("not a positive integer id")
	}
	return n, nil
}

// Bool parses a "1"/"0" flag.
func Bool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "":
		return false, ErrEmpty
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, fmt.Errorf("not a 1/0 flag")
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.DateOnly,
}

// Date parses ISO 8601 dates and date-times. Values without an offset are UTC.
func Date(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO date")
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// SKU validates a stock keeping unit code.
func SKU(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reSKU.MatchString(s)
}
