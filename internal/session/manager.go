package session

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
)

const (
	CookieName = "book_session"
	DefaultTTL = 12 * time.Hour
)

// Credentials are the database login of a passthrough session.
type Credentials struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// Manager binds stored credentials to browser cookies.
type Manager struct {
	store Store
	aead  cipher.AEAD
	ttl   time.Duration
}

// NewManager derives the AES-256 key from secretKey.
func NewManager(store Store, secretKey []byte, ttl time.Duration) (*Manager, error) {
	key := sha256.Sum256(secretKey)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("session cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("session cipher: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, aead: aead, ttl: ttl}, nil
}

// Start stores creds under a new session id and sets the session cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, creds Credentials) error {
	plain, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	sealed, err := m.seal(plain)
	if err != nil {
		return err
	}

	id := uuid.Must(uuid.NewV4()).String()
	if err := m.store.Set(ctx, id, sealed, m.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Credentials returns the credentials of the request's session, or
// ErrNotFound when there is no valid session.
func (m *Manager) Credentials(ctx context.Context, r *http.Request) (*Credentials, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrNotFound
	}
	sealed, err := m.store.Get(ctx, cookie.Value)
	if err != nil {
		return nil, err
	}
	plain, err := m.open(sealed)
	if err != nil {
		return nil, ErrNotFound
	}
	creds := &Credentials{}
	if err := json.Unmarshal(plain, creds); err != nil {
		return nil, ErrNotFound
	}
	return creds, nil
}

// End drops the request's session and clears the cookie.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, cookie.Value)
}

func (m *Manager) seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, m.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return m.aead.Seal(nonce, nonce, plain, nil), nil
}

func (m *Manager) open(sealed []byte) ([]byte, error) {
	size := m.aead.NonceSize()
	if len(sealed) < size {
		return nil, errors.New("session value too short")
	}
	return m.aead.Open(nil, sealed[:size], sealed[size:], nil)
}
