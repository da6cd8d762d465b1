// package shared defines shared helpers
package shared

import (
	"crypto/rand"
	"io"
	"math/big"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// stateAlphabet is the fixed alphabet for authorization state nonces.
const stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// stateLength is the fixed length of authorization state nonces.
const stateLength = 16

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// GenerateState generates a 16-character random nonce for the OAuth state
// parameter, drawn from a fixed alphanumeric alphabet.
func GenerateState() (string, error) {
	buf := make([]byte, stateLength)
	limit := big.NewInt(int64(len(stateAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = stateAlphabet[n.Int64()]
	}

	return string(buf), nil
}
