package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/service"
)

func newTestPage() *service.LedgerPage {
	usd := &book.Commodity{GUID: "usd", Namespace: book.CurrencyNamespace, Mnemonic: "USD", Fraction: 100}
	root := &book.Account{GUID: "root", Type: book.AccountTypeRoot}
	chart := book.NewChart(root, []*book.Account{
		{GUID: "assets", Name: "Assets", Type: book.AccountTypeAsset, ParentGUID: "root", Commodity: usd, Placeholder: true},
		{GUID: "cash", Name: "Cash <pocket>", Type: book.AccountTypeCash, ParentGUID: "assets", Commodity: usd, CommoditySCU: 100},
		{GUID: "food", Name: "Food", Type: book.AccountTypeExpense, ParentGUID: "root", Commodity: usd},
	})
	cash, _ := chart.FindByGUID("cash")
	food, _ := chart.FindByGUID("food")

	tx := &book.Transaction{GUID: "tx1", Currency: usd, Description: "Lunch", PostDate: time.Date(2024, 5, 4, 10, 59, 0, 0, time.UTC)}
	split := &book.Split{GUID: "s1", AccountGUID: "cash", Value: decimal.RequireFromString("-9.5")}
	tx.Splits = []*book.Split{split, {GUID: "s2", AccountGUID: "food", Value: decimal.RequireFromString("9.5")}}

	return &service.LedgerPage{
		Account:                  cash,
		Lines:                    []*service.LedgerLine{{Split: split, Transaction: tx, ContraAccount: food, Balance: decimal.RequireFromString("-9.5")}},
		Page:                     2,
		NumPages:                 3,
		Today:                    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		AccountTypes:             book.SelectableAccountTypes(),
		Accounts:                 chart.Accounts(),
		Currencies:               []*book.Commodity{usd},
		PreselectedContraAccount: "Food",
	}
}

// -- Account page tests --

func TestRenderer_Account(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	w := httptest.NewRecorder()

	view := NewAccountView(newTestPage(), url.Values{"open_if_lock": {"True"}})
	require.NoError(t, r.Account(w, view))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "Cash &lt;pocket&gt;")
	assert.NotContains(t, body, "Cash <pocket>")
	assert.Contains(t, body, "-9.50")
	assert.Contains(t, body, "2024-05-04")
	assert.Contains(t, body, `value="2024-06-01"`)
	assert.Contains(t, body, `/book/add_transaction?open_if_lock=True`)
	assert.Contains(t, body, `<option value="Food" selected>`)
	assert.Contains(t, body, "page 2 of 3")
	assert.Contains(t, body, `name="commodity_scu" value="-1"`)
	require.Len(t, view.Crumbs, 2)
	assert.Equal(t, "Assets", view.Crumbs[0].Name)
}

func TestRenderer_RootAccount(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	page := newTestPage()
	page.Account = page.Account.Parent.Parent
	page.Subaccounts = page.Account.Children
	page.Lines = nil
	w := httptest.NewRecorder()

	require.NoError(t, r.Account(w, NewAccountView(page, url.Values{})))

	body := w.Body.String()
	assert.Contains(t, body, `href="/book/accounts/Assets"`)
	assert.NotContains(t, body, "add_transaction")
}

// -- Error and login page tests --

func TestRenderer_Error(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	w := httptest.NewRecorder()

	require.NoError(t, r.Error(w, &ErrorView{
		Status:   http.StatusLocked,
		Message:  "book is locked by another user",
		RetryURL: "/book/accounts/Food?open_if_lock=True",
	}))

	assert.Equal(t, http.StatusLocked, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Locked")
	assert.Contains(t, body, `href="/book/accounts/Food?open_if_lock=True"`)
}

func TestRenderer_Login(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	w := httptest.NewRecorder()

	require.NoError(t, r.Login(w, http.StatusUnauthorized, &LoginView{Next: "/book/accounts/", User: "alice", Message: "login failed"}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `value="alice"`)
	assert.Contains(t, w.Body.String(), "login failed")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.50", formatAmount(decimal.RequireFromString("1.5"), &book.Commodity{Fraction: 100}))
	assert.Equal(t, "2", formatAmount(decimal.RequireFromString("1.5"), &book.Commodity{Fraction: 1}))
	assert.Equal(t, "1.500", formatAmount(decimal.RequireFromString("1.5"), &book.Commodity{Fraction: 1000}))
	assert.Equal(t, "1.50", formatAmount(decimal.RequireFromString("1.5"), nil))
}
