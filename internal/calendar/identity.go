package calendar

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// eventIDLen is the hex length the digest is truncated to. 20 hex chars
// (80 bits) keeps the birthday bound around 10^12 events for a 50%
// collision chance, far beyond realistic calendar volumes.
const eventIDLen = 20

// EventID derives the stable identifier for an event from its semantic
// fields. The source page has no native identifier, so re-scraping the
// same day must reproduce the same ID for the same logical event; the
// store uses it as the upsert key.
func EventID(currency, event, timeUTC, impact string) string {
	key := strings.ToLower(currency + "|" + event + "|" + timeUTC + "|" + impact)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:eventIDLen]
}
