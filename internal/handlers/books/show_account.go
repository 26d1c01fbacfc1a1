package books

import (
	"net/http"
	"strings"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/logging"
	"github.com/carson-networks/book-server/internal/service"
	"github.com/carson-networks/book-server/internal/web"
)

// ShowAccount renders an account with one page of its ledger. The path below
// /book/accounts/ holds the escaped account names, empty for the root.
func (h *Handler) ShowAccount(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	fullName, err := book.DecodeAccountPath(strings.TrimPrefix(r.URL.EscapedPath(), book.AccountsURLPrefix))
	if err != nil {
		return h.renderError(w, r, logData, err)
	}
	logData.AddData("account", fullName)

	page, err := parsePage(r)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}
	target, err := h.target(r)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}

	endTimer := logData.AddTiming("ledgerDuration")
	ledger, err := h.Service.Ledger.ShowAccount(r.Context(), target, service.LedgerRequest{
		AccountName: fullName,
		Page:        page,
	})
	endTimer()
	if err != nil {
		return h.renderError(w, r, logData, err)
	}

	return h.Renderer.Account(w, web.NewAccountView(ledger, r.URL.Query()))
}
