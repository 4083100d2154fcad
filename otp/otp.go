// Package otp issues the one-time codes used for email verification.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/openformhq/openform/log"
)

// Validity is how long an issued code stays accepted.
const Validity = 10 * time.Minute

// Generate returns a random 6-digit code.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("otp.generate: %w", err)
	}
	return fmt.Sprintf("%06d", n), nil
}

// Sender delivers a code to an address. Delivery transport (mail provider)
// is an external collaborator; implementations report transient failures
// with an error.
type Sender interface {
	Send(email, code string) error
}

// LogSender writes codes to the application log. The default when no mail
// provider is configured; useful in development.
type LogSender struct{}

func (LogSender) Send(email, code string) error {
	log.Infof("verification code for %s: %s", email, code)
	return nil
}
