package books

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/book/booktest"
	"github.com/carson-networks/book-server/internal/config"
	"github.com/carson-networks/book-server/internal/logging"
	"github.com/carson-networks/book-server/internal/operator"
	"github.com/carson-networks/book-server/internal/service"
	"github.com/carson-networks/book-server/internal/web"
)

type fixedLocator struct {
	uri string
	err error
}

func (l fixedLocator) BookURI(_ *http.Request) (string, error) {
	return l.uri, l.err
}

type testBook struct {
	*booktest.Book
	usd  *book.Commodity
	cash string
	food string
	txs  []string
}

func newTestBook() *testBook {
	b := &testBook{Book: booktest.New()}
	b.usd = b.AddCurrency("USD", 100)
	assets := b.AddAccount(booktest.AccountSpec{Name: "Assets", Type: book.AccountTypeAsset, Commodity: b.usd, Placeholder: true})
	b.cash = b.AddAccount(booktest.AccountSpec{Parent: assets, Name: "Cash", Type: book.AccountTypeCash, Commodity: b.usd})
	b.food = b.AddAccount(booktest.AccountSpec{Name: "Food", Type: book.AccountTypeExpense, Commodity: b.usd})
	b.txs = append(b.txs, b.AddTransaction(b.usd, time.Date(2024, 5, 4, 10, 59, 0, 0, time.UTC), "Lunch",
		booktest.SplitSpec{Account: b.cash, Value: "-9.50"},
		booktest.SplitSpec{Account: b.food, Value: "9.50"},
	))
	return b
}

func newTestHandler(t *testing.T, b *testBook, locator BookLocator) *Handler {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	delegator := operator.NewOperatorDelegator(b, 1, logger)
	delegator.Start()
	t.Cleanup(delegator.Stop)

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	cfg := &config.Config{TransactionPageLength: 25, PreselectedContraAccount: "Food"}
	return NewHandler(service.NewService(b, delegator, cfg), renderer, locator, nil)
}

func serve(h logging.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	w := httptest.NewRecorder()
	logging.LoggingWrapper("Test", logger, nil, h)(w, r)
	return w
}

func postForm(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func transactionForm(b *testBook) url.Values {
	return url.Values{
		"account_name":        {"Assets:Cash"},
		"contra_account_name": {"Food"},
		"date":                {"2024-06-01"},
		"description":         {"Groceries"},
		"value":               {"42.50"},
		"sign":                {"-1"},
	}
}

// -- Index tests --

func TestIndex_RedirectsToRoot(t *testing.T) {
	h := newTestHandler(t, newTestBook(), fixedLocator{uri: "sqlite:///book.gnucash"})

	w := serve(h.Index, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/book/accounts/", w.Header().Get("Location"))
}

// -- ShowAccount tests --

func TestShowAccount_RendersLedger(t *testing.T) {
	b := newTestBook()
	h := newTestHandler(t, b, fixedLocator{uri: "sqlite:///book.gnucash"})

	w := serve(h.ShowAccount, httptest.NewRequest(http.MethodGet, "/book/accounts/Assets/Cash", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lunch")
	opts := b.LastOpenOptions()
	assert.Equal(t, "sqlite:///book.gnucash", opts.URI)
	assert.True(t, opts.ReadOnly)
	assert.True(t, opts.OpenIfLock)
}

func TestShowAccount_Root(t *testing.T) {
	h := newTestHandler(t, newTestBook(), fixedLocator{})

	w := serve(h.ShowAccount, httptest.NewRequest(http.MethodGet, "/book/accounts/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Assets")
}

func TestShowAccount_UnknownAccount(t *testing.T) {
	h := newTestHandler(t, newTestBook(), fixedLocator{})

	w := serve(h.ShowAccount, httptest.NewRequest(http.MethodGet, "/book/accounts/Assets/Wallet", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Assets:Wallet")
}

func TestShowAccount_BadPage(t *testing.T) {
	h := newTestHandler(t, newTestBook(), fixedLocator{})

	w := serve(h.ShowAccount, httptest.NewRequest(http.MethodGet, "/book/accounts/Food?page=two", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "page number must be positive integer")

	w = serve(h.ShowAccount, httptest.NewRequest(http.MethodGet, "/book/accounts/Food?page=2", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not enough pages")
}

func TestShowAccount_LocatorError(t *testing.T) {
	h := newTestHandler(t, newTestBook(), fixedLocator{err: errors.New("no session")})

	w := serve(h.ShowAccount, httptest.NewRequest(http.MethodGet, "/book/accounts/Food", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "no session")
}

// -- AddTransaction tests --

func TestAddTransaction_RedirectsToAccount(t *testing.T) {
	b := newTestBook()
	h := newTestHandler(t, b, fixedLocator{})

	w := serve(h.AddTransaction, postForm("/book/add_transaction", transactionForm(b)))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/book/accounts/Assets/Cash", w.Header().Get("Location"))
	require.Len(t, b.Transactions(), 2)
	assert.Equal(t, 1, b.Saves())
	assert.False(t, b.LastOpenOptions().ReadOnly)
}

func TestAddTransaction_MissingField(t *testing.T) {
	b := newTestBook()
	h := newTestHandler(t, b, fixedLocator{})
	form := transactionForm(b)
	form.Del("description")

	w := serve(h.AddTransaction, postForm("/book/add_transaction", form))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "description")
	assert.Len(t, b.Transactions(), 1)
}

func TestAddTransaction_BadValue(t *testing.T) {
	b := newTestBook()
	h := newTestHandler(t, b, fixedLocator{})
	form := transactionForm(b)
	form.Set("value", "lots")

	w := serve(h.AddTransaction, postForm("/book/add_transaction", form))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, b.Saves())
}

func TestAddTransaction_LockedOffersRetry(t *testing.T) {
	b := newTestBook()
	b.Locked = true
	h := newTestHandler(t, b, fixedLocator{})

	w := serve(h.AddTransaction, postForm("/book/add_transaction", transactionForm(b)))

	assert.Equal(t, http.StatusLocked, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `action="/book/add_transaction?open_if_lock=True"`)
	assert.Contains(t, body, `name="description" value="Groceries"`)
	assert.Len(t, b.Transactions(), 1)
}

func TestAddTransaction_OpenIfLock(t *testing.T) {
	b := newTestBook()
	b.Locked = true
	h := newTestHandler(t, b, fixedLocator{})

	w := serve(h.AddTransaction, postForm("/book/add_transaction?open_if_lock=True", transactionForm(b)))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Len(t, b.Transactions(), 2)
}

// -- EditTransaction tests --

func TestEditTransaction_Rewrites(t *testing.T) {
	b := newTestBook()
	h := newTestHandler(t, b, fixedLocator{})
	form := transactionForm(b)
	form.Set("guid", b.txs[0])

	w := serve(h.EditTransaction, postForm("/book/edit_transaction", form))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	tx, ok := b.Transaction(b.txs[0])
	require.True(t, ok)
	assert.Equal(t, "Groceries", tx.Description)
}

func TestEditTransaction_Unknown(t *testing.T) {
	b := newTestBook()
	h := newTestHandler(t, b, fixedLocator{})
	form := transactionForm(b)
	form.Set("guid", book.NewGUID())

	w := serve(h.EditTransaction, postForm("/book/edit_transaction", form))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// -- DeleteTransaction tests --

func TestDeleteTransaction_Removes(t *testing.T) {
	b := newTestBook()
	h := newTestHandler(t, b, fixedLocator{})
	form := url.Values{"guid": {b.txs[0]}, "account_name": {"Food"}}

	w := serve(h.DeleteTransaction, postForm("/book/del_transaction", form))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/book/accounts/Food", w.Header().Get("Location"))
	assert.Empty(t, b.Transactions())
}

// -- EditAccount tests --

func accountForm(b *testBook) url.Values {
	return url.Values{
		"name":          {"Groceries"},
		"code":          {"4100"},
		"description":   {"Food and drink"},
		"parent":        {b.RootGUID()},
		"type":          {"EXPENSE"},
		"commodity":     {"USD"},
		"commodity_scu": {"-1"},
		"hidden":        {"on"},
	}
}

func TestEditAccount_Updates(t *testing.T) {
	b := newTestBook()
	h := newTestHandler(t, b, fixedLocator{})

	w := serve(h.EditAccount, postForm("/book/accounts/"+b.food, accountForm(b)))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/book/accounts/Groceries", w.Header().Get("Location"))
	acc, ok := b.Account(b.food)
	require.True(t, ok)
	assert.Equal(t, "Groceries", acc.Name)
	assert.Equal(t, "4100", acc.Code)
	assert.True(t, acc.Hidden)
	assert.False(t, acc.Placeholder)
}

func TestEditAccount_NotAGUID(t *testing.T) {
	b := newTestBook()
	h := newTestHandler(t, b, fixedLocator{})

	w := serve(h.EditAccount, postForm("/book/accounts/Food", accountForm(b)))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, b.OpenSessions())
}

func TestEditAccount_InvalidName(t *testing.T) {
	b := newTestBook()
	h := newTestHandler(t, b, fixedLocator{})
	form := accountForm(b)
	form.Set("name", "Food:Drink")

	w := serve(h.EditAccount, postForm("/book/accounts/"+b.food, form))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	acc, _ := b.Account(b.food)
	assert.Equal(t, "Food", acc.Name)
}

// -- form tests --

func TestCheckbox(t *testing.T) {
	r := postForm("/", url.Values{"a": {"on"}, "b": {"off"}, "c": {""}})
	require.NoError(t, r.ParseForm())

	assert.True(t, checkbox(r, "a"))
	assert.False(t, checkbox(r, "b"))
	assert.True(t, checkbox(r, "c"))
	assert.False(t, checkbox(r, "d"))
}

func TestRetryURL_KeepsQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/book/accounts/Food?page=2", nil)

	assert.Equal(t, "/book/accounts/Food?open_if_lock=True&page=2", retryURL(r))
}
