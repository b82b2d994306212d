package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spiffcs/contribs/internal/log"
	"golang.org/x/time/rate"
)

var (
	// ErrDisabled is returned when email sending is switched off.
	ErrDisabled = errors.New("email sending is disabled")

	// ErrNotAllowed is returned in allow-list mode for a recipient that is not on the list.
	ErrNotAllowed = errors.New("recipient not on allow-list")

	// ErrMissingCredentials is returned when login is required but no
	// username or password is configured.
	ErrMissingCredentials = errors.New("mail username and password not set")
)

// Policy controls whether and how fast the Dispatcher delivers.
type Policy struct {
	Enabled       bool
	AllowlistMode bool
	Allowlist     []string
	Login         bool
	Username      string
	Password      string
	// RatePerSec bounds deliveries per second; zero or less disables the limit.
	RatePerSec int
}

// Dispatcher applies a Policy before handing messages to a Sender.
type Dispatcher struct {
	sender  Sender
	policy  Policy
	allowed map[string]bool
	limiter *rate.Limiter
}

// NewDispatcher creates a Dispatcher delivering through sender.
func NewDispatcher(sender Sender, policy Policy) *Dispatcher {
	d := &Dispatcher{
		sender:  sender,
		policy:  policy,
		allowed: make(map[string]bool, len(policy.Allowlist)),
	}
	for _, a := range policy.Allowlist {
		d.allowed[strings.ToLower(envelopeAddress(a))] = true
	}
	if policy.RatePerSec > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(policy.RatePerSec), policy.RatePerSec)
	}
	return d
}

// Dispatch validates msg, checks the policy, waits for the rate limiter
// and sends. Skipped sends return ErrDisabled, ErrNotAllowed or
// ErrMissingCredentials.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	if !d.policy.Enabled {
		log.Info("email sending disabled, skipping send", "to", msg.To, "subject", msg.Subject)
		return ErrDisabled
	}

	if err := msg.Validate(); err != nil {
		return err
	}

	if d.policy.AllowlistMode && !d.allowed[strings.ToLower(envelopeAddress(msg.To))] {
		log.Warn("allow-list mode is on, refusing non-listed recipient", "to", msg.To)
		return fmt.Errorf("%w: %s", ErrNotAllowed, msg.To)
	}

	if d.policy.Login && (d.policy.Username == "" || d.policy.Password == "") {
		log.Error("mail username and password not set, skipping send")
		return ErrMissingCredentials
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for send slot: %w", err)
		}
	}

	log.Debug("sending email", "to", msg.To, "bcc", len(msg.Bcc), "subject", msg.Subject)
	if err := d.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send to %s: %w", msg.To, err)
	}
	log.Info("email sent", "to", msg.To)
	return nil
}
