package books

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/book-server/internal/book"
)

const dateLayout = "2006-01-02"

// requiredField returns a posted form value, which must be present but may be
// empty.
func requiredField(r *http.Request, name string) (string, error) {
	values, ok := r.PostForm[name]
	if !ok || len(values) == 0 {
		return "", book.NewValidationError(name, "is required")
	}
	return values[0], nil
}

// checkbox reports whether a checkbox was ticked. Browsers omit unticked boxes.
func checkbox(r *http.Request, name string) bool {
	values, ok := r.PostForm[name]
	return ok && len(values) > 0 && values[0] != "off"
}

func parseDecimalField(r *http.Request, name string) (decimal.Decimal, error) {
	raw, err := requiredField(r, name)
	if err != nil {
		return decimal.Zero, err
	}
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, book.NewValidationError(name, "%q is not a number", raw)
	}
	return value, nil
}

func parseDateField(r *http.Request, name string) (time.Time, error) {
	raw, err := requiredField(r, name)
	if err != nil {
		return time.Time{}, err
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, book.NewValidationError(name, "%q is not a date", raw)
	}
	return date, nil
}

func parseIntField(r *http.Request, name string) (int64, error) {
	raw, err := requiredField(r, name)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, book.NewValidationError(name, "%q is not an integer", raw)
	}
	return value, nil
}

// openIfLock reads the open_if_lock query flag.
func openIfLock(r *http.Request) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get("open_if_lock"))
	return err == nil && value
}

// parsePage reads the page query parameter, defaulting to the first page.
func parsePage(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, book.NewValidationError("page", "page number must be positive integer")
	}
	return page, nil
}
