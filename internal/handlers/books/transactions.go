package books

import (
	"net/http"

	"github.com/carson-networks/book-server/internal/logging"
	"github.com/carson-networks/book-server/internal/service"
)

func parseTransactionForm(r *http.Request) (*service.TransactionRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	req := &service.TransactionRequest{}
	var err error
	if req.AccountName, err = requiredField(r, "account_name"); err != nil {
		return nil, err
	}
	if req.Date, err = parseDateField(r, "date"); err != nil {
		return nil, err
	}
	if req.Description, err = requiredField(r, "description"); err != nil {
		return nil, err
	}
	if req.Value, err = parseDecimalField(r, "value"); err != nil {
		return nil, err
	}
	sign, err := parseIntField(r, "sign")
	if err != nil {
		return nil, err
	}
	req.Sign = int(sign)
	if req.ContraAccountName, err = requiredField(r, "contra_account_name"); err != nil {
		return nil, err
	}
	return req, nil
}

// AddTransaction books a new transaction posted from the account view.
func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	req, err := parseTransactionForm(r)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}
	target, err := h.target(r)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}
	logData.AddData("account", req.AccountName)
	logData.AddData("contraAccount", req.ContraAccountName)

	acc, err := h.Service.Transaction.CreateTransaction(r.Context(), target, *req)
	h.Metrics.ObserveMutation("add_transaction", err)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}

	redirectToAccount(w, r, acc)
	return nil
}

// EditTransaction rewrites a transaction posted from the account view.
func (h *Handler) EditTransaction(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	req, err := parseTransactionForm(r)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}
	guid, err := requiredField(r, "guid")
	if err != nil {
		return h.renderError(w, r, logData, err)
	}
	target, err := h.target(r)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}
	logData.AddData("transaction", guid)

	acc, err := h.Service.Transaction.EditTransaction(r.Context(), target, service.EditTransactionRequest{
		GUID:               guid,
		TransactionRequest: *req,
	})
	h.Metrics.ObserveMutation("edit_transaction", err)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}

	redirectToAccount(w, r, acc)
	return nil
}

// DeleteTransaction removes a transaction and shows the account it was
// deleted from.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	if err := r.ParseForm(); err != nil {
		return h.renderError(w, r, logData, err)
	}
	guid, err := requiredField(r, "guid")
	if err != nil {
		return h.renderError(w, r, logData, err)
	}
	accountName, err := requiredField(r, "account_name")
	if err != nil {
		return h.renderError(w, r, logData, err)
	}
	target, err := h.target(r)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}
	logData.AddData("transaction", guid)

	acc, err := h.Service.Transaction.DeleteTransaction(r.Context(), target, service.DeleteTransactionRequest{
		GUID:        guid,
		AccountName: accountName,
	})
	h.Metrics.ObserveMutation("del_transaction", err)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}

	redirectToAccount(w, r, acc)
	return nil
}
