// Package books serves the HTML views and forms of the book.
package books

import (
	"net/http"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/logging"
	"github.com/carson-networks/book-server/internal/metrics"
	"github.com/carson-networks/book-server/internal/service"
	"github.com/carson-networks/book-server/internal/web"
)

// BookLocator returns the URI of the book a request works on.
type BookLocator interface {
	BookURI(r *http.Request) (string, error)
}

type Handler struct {
	Service  *service.Service
	Renderer *web.Renderer
	Books    BookLocator
	Metrics  *metrics.Metrics
}

func NewHandler(svc *service.Service, renderer *web.Renderer, books BookLocator, m *metrics.Metrics) *Handler {
	return &Handler{
		Service:  svc,
		Renderer: renderer,
		Books:    books,
		Metrics:  m,
	}
}

// Index sends the browser to the root account.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request, _ *logging.LogData) error {
	http.Redirect(w, r, book.AccountsURLPrefix, http.StatusFound)
	return nil
}

func (h *Handler) target(r *http.Request) (book.OpenOptions, error) {
	uri, err := h.Books.BookURI(r)
	if err != nil {
		return book.OpenOptions{}, err
	}
	return book.OpenOptions{URI: uri, OpenIfLock: openIfLock(r)}, nil
}

func redirectToAccount(w http.ResponseWriter, r *http.Request, acc *book.Account) {
	http.Redirect(w, r, book.AccountURL(acc), http.StatusSeeOther)
}
