package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/book-server/internal/auth"
	bookpkg "github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/book/booktest"
	"github.com/carson-networks/book-server/internal/config"
	"github.com/carson-networks/book-server/internal/handlers/books"
	"github.com/carson-networks/book-server/internal/metrics"
	"github.com/carson-networks/book-server/internal/operator"
	"github.com/carson-networks/book-server/internal/service"
	"github.com/carson-networks/book-server/internal/web"
)

type testServer struct {
	handler http.Handler
	book    *booktest.Book
	cash    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	b := booktest.New()
	usd := b.AddCurrency("USD", 100)
	assets := b.AddAccount(booktest.AccountSpec{Name: "Assets", Type: bookpkg.AccountTypeAsset, Commodity: usd, Placeholder: true})
	cash := b.AddAccount(booktest.AccountSpec{Parent: assets, Name: "Cash", Type: bookpkg.AccountTypeCash, Commodity: usd})
	b.AddAccount(booktest.AccountSpec{Name: "Food", Type: bookpkg.AccountTypeExpense, Commodity: usd})

	delegator := operator.NewOperatorDelegator(b, 1, logger)
	delegator.Start()
	t.Cleanup(delegator.Stop)

	cfg := &config.Config{DBDriver: config.DriverSqlite, DBName: "book.gnucash", TransactionPageLength: 25}
	svc := service.NewService(b, delegator, cfg)
	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	m := metrics.New()
	authenticator := auth.NewAuthenticator(cfg, nil, b, renderer)

	rest := &Rest{
		Logger:  logger,
		Metrics: m,
		Service: svc,
		Books:   books.NewHandler(svc, renderer, authenticator, m),
		Auth:    authenticator,
	}
	return &testServer{handler: rest.Router(), book: b, cash: cash}
}

func (s *testServer) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

// -- routing tests --

func TestRouter_Status(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_IndexRedirects(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/book/accounts/", w.Header().Get("Location"))
}

func TestRouter_AccountPages(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/book/accounts/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(httptest.NewRequest(http.MethodGet, "/book/accounts/Assets/Cash", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sqlite:///book.gnucash", s.book.LastOpenOptions().URI)
}

func TestRouter_AddTransactionThenMetrics(t *testing.T) {
	s := newTestServer(t)
	form := url.Values{
		"account_name":        {"Assets:Cash"},
		"contra_account_name": {"Food"},
		"date":                {"2024-06-01"},
		"description":         {"Groceries"},
		"value":               {"4.20"},
		"sign":                {"1"},
	}
	r := httptest.NewRequest(http.MethodPost, "/book/add_transaction", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := s.do(r)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Len(t, s.book.Transactions(), 1)

	w = s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "AddTransaction")
}

func TestRouter_LedgerAPI(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/"+s.cash+"/ledger", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fullName":"Assets:Cash"`)
}

func TestRouter_LoginWithoutAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	assert.Equal(t, http.StatusFound, w.Code)
}
