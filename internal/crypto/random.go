package crypto

import (
	"strings"

	"github.com/google/uuid"
)

// OpaqueID returns a prefixed opaque identifier for tickets that are
// pure references (login tickets, PGTIOU receipts) rather than signed
// payloads.
func OpaqueID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
