// Package auth decides which database credentials a request uses. Without an
// auth mechanism every request opens the configured book as is. With
// passthrough the user logs in with their database credentials, which are kept
// in the encrypted server side session.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/carson-networks/book-server/internal/book"
	"github.com/carson-networks/book-server/internal/config"
	"github.com/carson-networks/book-server/internal/logging"
	"github.com/carson-networks/book-server/internal/session"
	"github.com/carson-networks/book-server/internal/web"
)

const (
	LoginPath  = "/auth/login"
	LogoutPath = "/auth/logout"
)

type credentialsKey struct{}

type Authenticator struct {
	cfg      *config.Config
	sessions *session.Manager
	gateway  book.Gateway
	renderer *web.Renderer
}

// NewAuthenticator creates an Authenticator. sessions may be nil when no auth
// mechanism is configured.
func NewAuthenticator(cfg *config.Config, sessions *session.Manager, gateway book.Gateway, renderer *web.Renderer) *Authenticator {
	return &Authenticator{
		cfg:      cfg,
		sessions: sessions,
		gateway:  gateway,
		renderer: renderer,
	}
}

func (a *Authenticator) Enabled() bool {
	return a.cfg.AuthMechanism == config.AuthPassthrough
}

// WithCredentials returns a copy of ctx carrying creds.
func WithCredentials(ctx context.Context, creds *session.Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFrom returns the credentials Middleware stored in ctx.
func CredentialsFrom(ctx context.Context) (*session.Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(*session.Credentials)
	return creds, ok
}

// BookURI builds the URI of the configured book with the request's
// credentials.
func (a *Authenticator) BookURI(r *http.Request) (string, error) {
	if a.Enabled() {
		if _, ok := CredentialsFrom(r.Context()); !ok {
			creds, err := a.sessions.Credentials(r.Context(), r)
			if err != nil {
				return "", err
			}
			return a.cfg.DBURI(creds.User, creds.Password)
		}
	}
	return a.ContextBookURI(r.Context())
}

// ContextBookURI is BookURI for handlers that only see the request context.
// With passthrough it needs the credentials Middleware stored.
func (a *Authenticator) ContextBookURI(ctx context.Context) (string, error) {
	if !a.Enabled() {
		return a.cfg.DBURI("", "")
	}
	creds, ok := CredentialsFrom(ctx)
	if !ok {
		return "", session.ErrNotFound
	}
	return a.cfg.DBURI(creds.User, creds.Password)
}

// Middleware sends requests without a session to the login form and puts the
// session's credentials into the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		creds, err := a.sessions.Credentials(r.Context(), r)
		if errors.Is(err, session.ErrNotFound) {
			http.Redirect(w, r, LoginPath+"?"+url.Values{"next": {r.URL.RequestURI()}}.Encode(), http.StatusFound)
			return
		}
		if err != nil {
			logging.GetLogData(r.Context()).Log().WithError(err).Error("Auth.SessionLookupFailed")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCredentials(r.Context(), creds)))
	})
}

// LoadCredentials puts the session's credentials into the request context
// when there is a session. Requests without one continue unauthenticated.
func (a *Authenticator) LoadCredentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Enabled() {
			if creds, err := a.sessions.Credentials(r.Context(), r); err == nil {
				r = r.WithContext(WithCredentials(r.Context(), creds))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Login shows the login form and, on POST, checks the credentials by opening
// the book before storing them in a new session.
func (a *Authenticator) Login(w http.ResponseWriter, r *http.Request, logData *logging.LogData) error {
	if !a.Enabled() {
		http.Redirect(w, r, "/", http.StatusFound)
		return nil
	}
	if r.Method != http.MethodPost {
		return a.renderer.Login(w, http.StatusOK, &web.LoginView{Next: safeNext(r.URL.Query().Get("next"))})
	}

	if err := r.ParseForm(); err != nil {
		return err
	}
	creds := session.Credentials{
		User:     r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	next := safeNext(r.PostForm.Get("next"))
	logData.AddData("user", creds.User)

	if err := a.verify(r.Context(), creds); err != nil {
		view := &web.LoginView{Next: next, User: creds.User, Message: "Login failed."}
		if renderErr := a.renderer.Login(w, http.StatusUnauthorized, view); renderErr != nil {
			logData.AddData("renderError", renderErr.Error())
		}
		return err
	}

	if err := a.sessions.Start(r.Context(), w, creds); err != nil {
		return err
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
	return nil
}

// Logout ends the session and shows the login form.
func (a *Authenticator) Logout(w http.ResponseWriter, r *http.Request, _ *logging.LogData) error {
	if a.Enabled() {
		if err := a.sessions.End(r.Context(), w, r); err != nil {
			return err
		}
	}
	http.Redirect(w, r, LoginPath, http.StatusFound)
	return nil
}

func (a *Authenticator) verify(ctx context.Context, creds session.Credentials) error {
	uri, err := a.cfg.DBURI(creds.User, creds.Password)
	if err != nil {
		return err
	}
	opts := book.OpenOptions{URI: uri, OpenIfLock: true}
	return book.WithReadSession(ctx, a.gateway, opts, func(reader book.Reader) error {
		_, err := reader.Chart(ctx)
		return err
	})
}

// safeNext only allows redirects to paths on this server.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
