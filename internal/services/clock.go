package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clock supplies the reference time for time-relative operations.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func decimalInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }
