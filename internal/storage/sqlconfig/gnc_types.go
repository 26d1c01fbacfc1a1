package sqlconfig

import (
	"database/sql/driver"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// gncTimeLayout is the text form GnuCash uses for timestamps in sql books.
const gncTimeLayout = "2006-01-02 15:04:05"

// legacyTimeLayout is used by books written by GnuCash before 3.0.
const legacyTimeLayout = "20060102150405"

// Time is a nullable timestamp column. It reads text and native timestamp
// columns and writes the GnuCash text form in UTC.
type Time struct {
	time.Time
}

// Scan implements sql.Scanner.
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("sqlconfig: cannot scan %T into Time", src)
	}
}

func (t *Time) parse(s string) error {
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{gncTimeLayout, legacyTimeLayout, time.RFC3339Nano} {
		parsed, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("sqlconfig: invalid timestamp %q", s)
}

// Value implements driver.Valuer.
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.UTC().Format(gncTimeLayout), nil
}

// PostingTime returns the timestamp GnuCash stores for a date-only posting:
// 10:59 UTC, which keeps the calendar date stable in every timezone.
func PostingTime(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 10, 59, 0, 0, time.UTC)
}

// ToRational converts a value into the num/denom pair stored for splits. The
// commodity fraction is used as the denominator when the value fits it exactly,
// otherwise the decimal's own precision is kept.
func ToRational(value decimal.Decimal, fraction int64) (num int64, denom int64) {
	if fraction > 0 {
		scaled := value.Mul(decimal.NewFromInt(fraction))
		if scaled.Equal(scaled.Truncate(0)) {
			return scaled.IntPart(), fraction
		}
	}
	places := -value.Exponent()
	if places <= 0 {
		return value.IntPart(), 1
	}
	return value.Shift(places).IntPart(), int64(math.Pow10(int(places)))
}

// FromRational converts a stored num/denom pair back into a decimal.
func FromRational(num, denom int64) decimal.Decimal {
	if denom == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(num).Div(decimal.NewFromInt(denom))
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
