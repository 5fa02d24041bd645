package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shoplytics/internal/domain"
	"shoplytics/internal/validate"
)

// csvRecord is one data row keyed by header name.
type csvRecord struct {
	source string
	line   int
	fields map[string]string
}

func (r csvRecord) invalid(field, value string, err error) error {
	return &domain.ValidationError{Source: r.source, Line: r.line, Field: field, Value: value, Err: err}
}

func (r csvRecord) str(field string) (string, error) {
	v, ok := r.fields[field]
	if !ok {
		return "", r.invalid(field, "", errors.New("missing column"))
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", r.invalid(field, "", validate.ErrEmpty)
	}
	return v, nil
}

func (r csvRecord) optional(field string) string { return strings.TrimSpace(r.fields[field]) }

func (r csvRecord) money(field string) (decimal.Decimal, error) {
	v, err := r.str(field)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := validate.Money(v)
	if err != nil {
		return decimal.Decimal{}, r.invalid(field, v, err)
	}
	return d, nil
}

func (r csvRecord) optionalMoney(field string) (decimal.NullDecimal, error) {
	v := r.optional(field)
	d, err := validate.OptionalMoney(v)
	if err != nil {
		return decimal.NullDecimal{}, r.invalid(field, v, err)
	}
	return d, nil
}

func (r csvRecord) integer(field string) (int, error) {
	v, err := r.str(field)
	if err != nil {
		return 0, err
	}
	n, err := validate.Int(v)
	if err != nil {
		return 0, r.invalid(field, v, err)
	}
	return n, nil
}

func (r csvRecord) id(field string) (int64, error) {
	v, err := r.str(field)
	if err != nil {
		return 0, err
	}
	n, err := validate.ID(v)
	if err != nil {
		return 0, r.invalid(field, v, err)
	}
	return n, nil
}

func (r csvRecord) flag(field string) (bool, error) {
	v, err := r.str(field)
	if err != nil {
		return false, err
	}
	b, err := validate.Bool(v)
	if err != nil {
		return false, r.invalid(field, v, err)
	}
	return b, nil
}

func (r csvRecord) date(field string) (time.Time, error) {
	v, err := r.str(field)
	if err != nil {
		return time.Time{}, err
	}
	t, err := validate.Date(v)
	if err != nil {
		return time.Time{}, r.invalid(field, v, err)
	}
	return t, nil
}

// eachRow streams the data rows of dir/name to fn in file order and stops at
// the first error.
func eachRow(dir, name string, fn func(csvRecord) error) error {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	rd := csv.NewReader(f)
	header, err := rd.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.ValidationError{Source: name, Line: 1, Field: "header", Err: errors.New("missing header row")}
		}
		return &domain.ValidationError{Source: name, Line: 1, Field: "header", Err: err}
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = h
	}

	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var line int
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return &domain.ValidationError{Source: name, Line: line, Field: "record", Err: err}
		}
		line, _ := rd.FieldPos(0)
		fields := make(map[string]string, len(header))
		for i, h := range header {
			fields[h] = rec[i]
		}
		if err := fn(csvRecord{source: name, line: line, fields: fields}); err != nil {
			return err
		}
	}
}
