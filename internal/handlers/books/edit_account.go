package books

import (
	"net/http"
	"strings"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/logging"
	"github.com/carson-networks/book-server/internal/service"
)

// EditAccount overwrites the metadata of the account whose guid follows
// /book/accounts/.
func (h *Handler) EditAccount(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	guid := strings.Trim(strings.TrimPrefix(r.URL.Path, book.AccountsURLPrefix), "/")
	logData.AddData("account", guid)
	if !book.IsGUID(guid) {
		return h.renderError(w, r, logData, &book.AccountNotFoundError{Name: guid})
	}

	req, err := parseAccountForm(r)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}
	req.GUID = guid
	target, err := h.target(r)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}

	acc, err := h.Service.Account.EditAccount(r.Context(), target, *req)
	h.Metrics.ObserveMutation("edit_account", err)
	if err != nil {
		return h.renderError(w, r, logData, err)
	}

	redirectToAccount(w, r, acc)
	return nil
}

func parseAccountForm(r *http.Request) (*service.EditAccountRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	req := &service.EditAccountRequest{}
	var err error
	if req.Name, err = requiredField(r, "name"); err != nil {
		return nil, err
	}
	if req.Code, err = requiredField(r, "code"); err != nil {
		return nil, err
	}
	if req.Description, err = requiredField(r, "description"); err != nil {
		return nil, err
	}
	if req.ParentGUID, err = requiredField(r, "parent"); err != nil {
		return nil, err
	}
	if req.Type, err = requiredField(r, "type"); err != nil {
		return nil, err
	}
	if req.CommodityMnemonic, err = requiredField(r, "commodity"); err != nil {
		return nil, err
	}
	if req.CommoditySCU, err = parseIntField(r, "commodity_scu"); err != nil {
		return nil, err
	}
	req.Placeholder = checkbox(r, "placeholder")
	req.Hidden = checkbox(r, "hidden")
	return req, nil
}
