package book

import (
	"encoding/hex"

	"github.com/gofrs/uuid/v5"
)

// NewGUID returns a random guid in the 32 hex character form used by GnuCash.
func NewGUID() string {
	return hex.EncodeToString(uuid.Must(uuid.NewV4()).Bytes())
}

// IsGUID reports whether s is a guid in GnuCash form.
func IsGUID(s string) bool {
	if len(s) != 32 {
		return false
	}
	_, err := uuid.FromString(s)
	return err == nil
}
