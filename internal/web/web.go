// Package web renders the HTML pages of the book server.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/service"
)

//go:embed templates/*.html
var templateFiles embed.FS

const (
	pageAccount = "account.html"
	pageError   = "error.html"
	pageLogin   = "login.html"
)

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, page := range []string{pageAccount, pageError, pageLogin} {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFiles, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// AccountView is the data of the account page.
type AccountView struct {
	*service.LedgerPage
	Crumbs []*book.Account
	// Query is appended to form actions so flags like open_if_lock survive.
	Query string
}

// NewAccountView wraps a ledger page for rendering.
func NewAccountView(page *service.LedgerPage, query url.Values) *AccountView {
	view := &AccountView{LedgerPage: page}
	for acc := page.Account; acc != nil && !acc.IsRoot(); acc = acc.Parent {
		view.Crumbs = append([]*book.Account{acc}, view.Crumbs...)
	}
	if query.Get("open_if_lock") != "" {
		view.Query = "?" + url.Values{"open_if_lock": {query.Get("open_if_lock")}}.Encode()
	}
	return view
}

// ErrorView is the data of the error page.
type ErrorView struct {
	Status  int
	Title   string
	Message string
	// RetryURL is set when the request may be retried ignoring the book lock.
	RetryURL string
	// RetryFields re-posts the submitted form to RetryURL when set.
	RetryFields []Field
}

// Field is one submitted form value.
type Field struct {
	Name  string
	Value string
}

// LoginView is the data of the login page.
type LoginView struct {
	Next    string
	User    string
	Message string
}

func (r *Renderer) Account(w http.ResponseWriter, view *AccountView) error {
	return r.render(w, http.StatusOK, pageAccount, view)
}

func (r *Renderer) Error(w http.ResponseWriter, view *ErrorView) error {
	if view.Title == "" {
		view.Title = http.StatusText(view.Status)
	}
	return r.render(w, view.Status, pageError, view)
}

func (r *Renderer) Login(w http.ResponseWriter, status int, view *LoginView) error {
	return r.render(w, status, pageLogin, view)
}

// render executes into a buffer first so a template failure never leaves a
// half written page behind.
func (r *Renderer) render(w http.ResponseWriter, status int, page string, data any) error {
	var buf bytes.Buffer
	if err := r.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"accountURL": book.AccountURL,
	"pageURL": func(acc *book.Account, page int) string {
		return book.AccountURL(acc) + "?page=" + strconv.Itoa(page)
	},
	"date": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
	"amount": formatAmount,
	"magnitude": func(d decimal.Decimal) string {
		return d.Abs().String()
	},
	"sign": func(d decimal.Decimal) int {
		if d.IsNegative() {
			return -1
		}
		return 1
	},
	"isNegative": func(d decimal.Decimal) bool {
		return d.IsNegative()
	},
	"add": func(a, b int) int {
		return a + b
	},
	"dict": func(pairs ...any) (map[string]any, error) {
		if len(pairs)%2 != 0 {
			return nil, fmt.Errorf("dict needs key value pairs")
		}
		m := make(map[string]any, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
	"scu": func(acc *book.Account) int64 {
		if acc.NonStdSCU {
			return acc.CommoditySCU
		}
		return -1
	},
}

// formatAmount prints d with as many decimals as the commodity fraction has.
func formatAmount(d decimal.Decimal, commodity *book.Commodity) string {
	places := int32(2)
	if commodity != nil && commodity.Fraction > 0 {
		places = int32(math.Round(math.Log10(float64(commodity.Fraction))))
	}
	return d.StringFixed(places)
}
