package ids

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync/atomic"
)

var fallbackSeq atomic.Uint64

// NewItemID returns step-<suffix> where suffix is 8 chars of base32
// (lowercase, no padding). 8 chars base32 ~= 40 bits of space, which is
// plenty for a single checklist.
func NewItemID() string {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; keep minting
		// usable ids anyway so sanitization never aborts an import.
		return fmt.Sprintf("step-%d", fallbackSeq.Add(1))
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return "step-" + strings.ToLower(enc.EncodeToString(b[:]))
}
