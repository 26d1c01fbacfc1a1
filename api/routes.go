package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/book-server/internal/auth"
	"github.com/carson-networks/book-server/internal/handlers/books"
	"github.com/carson-networks/book-server/internal/handlers/v1/ledger"
	"github.com/carson-networks/book-server/internal/handlers/v1/status"
	"github.com/carson-networks/book-server/internal/logging"
	"github.com/carson-networks/book-server/internal/metrics"
	"github.com/carson-networks/book-server/internal/service"
)

type Rest struct {
	Logger       *logrus.Logger
	Port         string
	Metrics      *metrics.Metrics
	Service      *service.Service
	Books        *books.Handler
	Auth         *auth.Authenticator
	StatusChecks map[string]status.Check
}

// Router builds the handler tree of the server.
func (r *Rest) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	statusHandler := status.NewHandler(r.StatusChecks)
	router.Get("/status", r.wrap("Status", statusHandler.Handler))
	router.Handle("/metrics", r.Metrics.Handler())

	router.Get(auth.LoginPath, r.wrap("Login", r.Auth.Login))
	router.Post(auth.LoginPath, r.wrap("Login", r.Auth.Login))
	router.Get(auth.LogoutPath, r.wrap("Logout", r.Auth.Logout))

	router.Group(func(router chi.Router) {
		router.Use(r.Auth.Middleware)
		router.Get("/", r.wrap("Index", r.Books.Index))
		router.Get(book("accounts/*"), r.wrap("ShowAccount", r.Books.ShowAccount))
		router.Post(book("accounts/*"), r.wrap("EditAccount", r.Books.EditAccount))
		router.Post(book("add_transaction"), r.wrap("AddTransaction", r.Books.AddTransaction))
		router.Post(book("edit_transaction"), r.wrap("EditTransaction", r.Books.EditTransaction))
		router.Post(book("del_transaction"), r.wrap("DeleteTransaction", r.Books.DeleteTransaction))
	})

	router.Group(func(router chi.Router) {
		router.Use(r.Auth.LoadCredentials)
		router.Use(r.apiLogging)
		api := humachi.New(router, huma.DefaultConfig("Book Server API", "1.0.0"))
		ledger.NewShowLedgerHandler(r.Service.Ledger, r.Auth).Register(api)
	})

	return router
}

// Serve listens until ctx is cancelled and then drains open requests.
func (r *Rest) Serve(ctx context.Context) {
	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Router(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			r.Logger.WithError(err).Error("HttpServer.Serve.shutdown error")
		}
	}()

	r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.listening")
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
	}
	r.Logger.Info("HttpServer.Serve.shutting down")
}

func (r *Rest) wrap(name string, handler logging.HandlerFunc) http.HandlerFunc {
	return logging.LoggingWrapper(name, r.Logger, r.Metrics, handler)
}

// apiLogging gives the huma handlers the same per-request logging as the
// HTML handlers. Huma writes its own error responses.
func (r *Rest) apiLogging(next http.Handler) http.Handler {
	return r.wrap("API", func(w http.ResponseWriter, req *http.Request, _ *logging.LogData) error {
		next.ServeHTTP(w, req)
		return nil
	})
}

func book(path string) string {
	return "/book/" + path
}
