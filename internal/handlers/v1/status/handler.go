package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/carson-networks/book-server/internal/logging"
)

// Check reports whether a dependency of the server is reachable.
type Check func(ctx context.Context) error

type Handler struct {
	Checks map[string]Check
}

func NewHandler(checks map[string]Check) Handler {
	return Handler{Checks: checks}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			logData.AddData("failedCheck", name)
			w.WriteHeader(http.StatusServiceUnavailable)
			return err
		}
	}

	w.WriteHeader(http.StatusOK)
	return nil
}
