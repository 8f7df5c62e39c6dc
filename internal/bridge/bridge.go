// Package bridge is the ceremony backend of the daemon: it parks one ceremony at a
// time for a browser page to pick up, run through navigator.credentials and
// post back.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 60 * time.Second

type Kind string

const (
	KindCreate Kind = "create"
	KindGet    Kind = "get"
)

var (
	ErrBusy            = errors.New("another ceremony is pending")
	ErrUnknownCeremony = errors.New("unknown or expired ceremony")
	ErrTimeout         = errors.New("ceremony timed out")
)

// RejectedError is returned to the waiting caller when the browser reports a
// failed ceremony (NotAllowedError, AbortError and so on).
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "ceremony rejected: " + e.Reason
}

func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}

// Ceremony is what the browser page needs to run navigator.credentials.create
// or navigator.credentials.get.
type Ceremony struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	PublicKey any       `json:"publicKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type outcome struct {
	credential json.RawMessage
	err        error
}

type pending struct {
	Ceremony
	done chan outcome
}

// Bridge implements the ceremony backend over a single pending slot.
type Bridge struct {
	mu      sync.Mutex
	pending *pending
	log     *zap.Logger
	now     func() time.Time
}

func New(log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{log: log, now: time.Now}
}

// Create parks a registration ceremony and waits for the browser's answer.
func (b *Bridge) Create(ctx context.Context, opts *protocol.PublicKeyCredentialCreationOptions) (*protocol.CredentialCreationResponse, error) {
	raw, err := b.run(ctx, KindCreate, opts, timeoutOf(opts.Timeout))
	if err != nil {
		return nil, err
	}
	var resp protocol.CredentialCreationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode registration credential: %w", err)
	}
	return &resp, nil
}

// Get parks an assertion ceremony and waits for the browser's answer.
func (b *Bridge) Get(ctx context.Context, opts *protocol.PublicKeyCredentialRequestOptions) (*protocol.CredentialAssertionResponse, error) {
	raw, err := b.run(ctx, KindGet, opts, timeoutOf(opts.Timeout))
	if err != nil {
		return nil, err
	}
	var resp protocol.CredentialAssertionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode assertion credential: %w", err)
	}
	return &resp, nil
}

// Pending returns the ceremony waiting for the browser, if any.
func (b *Bridge) Pending() (Ceremony, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return Ceremony{}, false
	}
	return b.pending.Ceremony, true
}

// Resolve hands the browser's credential JSON to the waiting caller.
func (b *Bridge) Resolve(id string, credential json.RawMessage) error {
	if len(credential) == 0 {
		return errors.New("empty credential")
	}
	return b.finish(id, outcome{credential: credential})
}

// Reject fails the waiting caller with reason.
func (b *Bridge) Reject(id, reason string) error {
	if reason == "" {
		reason = "rejected by client"
	}
	return b.finish(id, outcome{err: &RejectedError{Reason: reason}})
}

func (b *Bridge) finish(id string, out outcome) error {
	b.mu.Lock()
	p := b.pending
	if p == nil || p.ID != id {
		b.mu.Unlock()
		return ErrUnknownCeremony
	}
	b.pending = nil
	b.mu.Unlock()

	p.done <- out
	return nil
}

func (b *Bridge) run(ctx context.Context, kind Kind, opts any, timeout time.Duration) (json.RawMessage, error) {
	p := &pending{
		Ceremony: Ceremony{
			ID:        uuid.NewString(),
			Kind:      kind,
			PublicKey: opts,
			ExpiresAt: b.now().Add(timeout),
		},
		done: make(chan outcome, 1),
	}

	b.mu.Lock()
	if b.pending != nil {
		b.mu.Unlock()
		return nil, ErrBusy
	}
	b.pending = p
	b.mu.Unlock()
	b.log.Info("ceremony pending", zap.String("id", p.ID), zap.String("kind", string(kind)))

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-p.done:
		if out.err != nil {
			b.log.Warn("ceremony rejected", zap.String("id", p.ID), zap.Error(out.err))
		}
		return out.credential, out.err
	case <-timer.C:
		b.abandon(p)
		return nil, ErrTimeout
	case <-ctx.Done():
		b.abandon(p)
		return nil, ctx.Err()
	}
}

// abandon frees the slot so a late Resolve gets ErrUnknownCeremony.
func (b *Bridge) abandon(p *pending) {
	b.mu.Lock()
	if b.pending == p {
		b.pending = nil
	}
	b.mu.Unlock()
	b.log.Info("ceremony abandoned", zap.String("id", p.ID))
}

func timeoutOf(ms int) time.Duration {
	if ms <= 0 {
		return defaultTimeout
	}
	return time.Duration(ms) * time.Millisecond
}
