package ledger

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/logging"
	"github.com/carson-networks/book-server/internal/service"
	"github.com/carson-networks/book-server/internal/session"
)

const dateLayout = "2006-01-02"

// ShowLedgerInput is the Huma input for an account ledger page.
type ShowLedgerInput struct {
	GUID string `path:"guid" doc:"Account GUID"`
	Page int    `query:"page" default:"1" minimum:"1" doc:"Page number, newest transactions first"`
}

// ShowLedgerResponseBody is the response body of an account ledger page.
type ShowLedgerResponseBody struct {
	Account  Account `json:"account" doc:"The account shown"`
	Page     int     `json:"page" doc:"Page number returned"`
	NumPages int     `json:"numPages" doc:"Number of pages of the ledger"`
	Entries  []Entry `json:"entries" doc:"Ledger entries, newest first"`
}

// ShowLedgerOutput is the Huma output for an account ledger page.
type ShowLedgerOutput struct {
	Body ShowLedgerResponseBody
}

type ledgerShower interface {
	ShowAccount(ctx context.Context, target book.OpenOptions, req service.LedgerRequest) (*service.LedgerPage, error)
}

// bookLocator returns the URI of the book for the request context.
type bookLocator interface {
	ContextBookURI(ctx context.Context) (string, error)
}

// ShowLedgerHandler handles GET /api/v1/accounts/{guid}/ledger.
type ShowLedgerHandler struct {
	LedgerService ledgerShower
	Books         bookLocator
}

func NewShowLedgerHandler(svc ledgerShower, books bookLocator) *ShowLedgerHandler {
	return &ShowLedgerHandler{LedgerService: svc, Books: books}
}

// Register registers the ledger endpoint with the Huma API.
func (h *ShowLedgerHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "show-ledger",
		Method:      http.MethodGet,
		Path:        "/api/v1/accounts/{guid}/ledger",
		Summary:     "Show account ledger",
		Description: "Returns one page of the account's splits with running balances, newest first.",
		Tags:        []string{"Ledger"},
	}, h.handle)
}

func (h *ShowLedgerHandler) handle(ctx context.Context, input *ShowLedgerInput) (*ShowLedgerOutput, error) {
	logData := logging.GetLogData(ctx)
	logData.AddData("account", input.GUID)

	uri, err := h.Books.ContextBookURI(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}

	stopTimer := logData.AddTiming("ledgerMs")
	page, err := h.LedgerService.ShowAccount(ctx, book.OpenOptions{URI: uri}, service.LedgerRequest{
		AccountGUID: input.GUID,
		Page:        input.Page,
	})
	stopTimer()
	if err != nil {
		return nil, toHumaError(err)
	}
	logData.AddData("entryCount", len(page.Lines))

	resp := ShowLedgerResponseBody{
		Account:  toAccount(page.Account),
		Page:     page.Page,
		NumPages: page.NumPages,
		Entries:  make([]Entry, len(page.Lines)),
	}
	for i, line := range page.Lines {
		entry := Entry{
			TransactionGUID: line.Transaction.GUID,
			Date:            line.Transaction.PostDate.Format(dateLayout),
			Description:     line.Transaction.Description,
			Value:           line.Split.Value.String(),
			Balance:         line.Balance.String(),
		}
		if line.ContraAccount != nil {
			entry.ContraAccount = line.ContraAccount.FullName()
		}
		resp.Entries[i] = entry
	}

	return &ShowLedgerOutput{Body: resp}, nil
}

func toAccount(acc *book.Account) Account {
	out := Account{
		GUID:     acc.GUID,
		FullName: acc.FullName(),
		Type:     string(acc.Type),
	}
	if acc.Commodity != nil {
		out.Commodity = acc.Commodity.Mnemonic
	}
	return out
}

func toHumaError(err error) error {
	var (
		validationErr *book.ValidationError
		accountErr    *book.AccountNotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		return huma.Error400BadRequest(validationErr.Error())
	case errors.As(err, &accountErr):
		return huma.Error404NotFound(accountErr.Error())
	case errors.Is(err, session.ErrNotFound):
		return huma.Error401Unauthorized("login required")
	default:
		return huma.Error500InternalServerError("failed to load ledger", err)
	}
}
