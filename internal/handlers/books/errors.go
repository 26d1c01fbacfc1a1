package books

import (
	"errors"
	"net/http"
	"net/url"
	"sort"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/logging"
	"github.com/carson-networks/book-server/internal/web"
)

// renderError shows the error page for err and hands err back so the logging
// wrapper records it.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, logData *logging.LogData, err error) error {
	status := book.StatusCode(err)
	view := &web.ErrorView{Status: status, Message: err.Error()}

	var integrityErr *book.IntegrityError
	switch {
	case errors.As(err, &integrityErr):
		logData.Log().WithError(err).Error("Book.IntegrityViolation")
	case errors.Is(err, book.ErrDatabaseLocked):
		view.RetryURL = retryURL(r)
		if r.Method == http.MethodPost {
			view.RetryFields = formFields(r.PostForm)
		}
	case status == http.StatusInternalServerError:
		view.Message = "The book could not be processed."
	}

	if renderErr := h.Renderer.Error(w, view); renderErr != nil {
		logData.AddData("renderError", renderErr.Error())
	}
	return err
}

// retryURL is the request URL with open_if_lock=True added to its query.
func retryURL(r *http.Request) string {
	u := url.URL{Path: r.URL.Path, RawPath: r.URL.RawPath}
	query := r.URL.Query()
	query.Set("open_if_lock", "True")
	u.RawQuery = query.Encode()
	return u.String()
}

func formFields(form url.Values) []web.Field {
	names := make([]string, 0, len(form))
	for name := range form {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []web.Field
	for _, name := range names {
		for _, value := range form[name] {
			fields = append(fields, web.Field{Name: name, Value: value})
		}
	}
	return fields
}
