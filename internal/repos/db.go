package repos

import (
	_ "embed"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"shoplytics/internal/domain"
)

//go:embed schema.sql
var schema string

// OpenDB opens the store once for the whole process and applies the schema.
// Applying the schema to an existing store keeps its data.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, &domain.StorageError{Op: "open " + dsn, Err: err}
	}
	// Single writer; also keeps ":memory:" stores on one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, &domain.StorageError{Op: "ping " + dsn, Err: err}
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return &domain.StorageError{Op: "apply schema", Err: err}
	}
	return nil
}

// ---------- boundary conversions ----------

const timeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// toCents converts an exact decimal amount to minor units. Amounts finer than
// a cent or outside the int64 cent range are rejected rather than rounded.
func toCents(field string, d decimal.Decimal) (int64, error) {
	c := d.Shift(2)
	if !c.Equal(c.Truncate(0)) {
		return 0, &domain.ValidationError{
			Field: field,
			Value: d.String(),
			Err:   fmt.Errorf("more than 2 decimal places"),
		}
	}
	if c.GreaterThan(maxCents) || c.LessThan(minCents) {
		return 0, &domain.ValidationError{
			Field: field,
			Value: d.String(),
			Err:   fmt.Errorf("amount out of range"),
		}
	}
	return c.IntPart(), nil
}

func fromCents(c int64) decimal.Decimal { return decimal.New(c, -2) }

func nullCents(field string, d decimal.NullDecimal) (*int64, error) {
	if !d.Valid {
		return nil, nil
	}
	c, err := toCents(field, d.Decimal)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
