// Package ceremony drives the two authenticator ceremonies a passkey wallet needs:
// registration of the one credential and assertion over a signing challenge.
package ceremony

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/AlexZinkM/sui-passkey/internal/common"
	"github.com/AlexZinkM/sui-passkey/internal/metrics"
	"github.com/AlexZinkM/sui-passkey/internal/model"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Timeout bounds every ceremony, in line with what the platform enforces.
const Timeout = 60 * time.Second

// registrationChallenge only keeps the ceremony well-formed; registration makes
// no replay-protection claim.
const registrationChallenge = "Create passkey wallet on Sui"

const (
	userHandleLen = 16
	userNameLen   = 4
)

var (
	ErrCeremonyFailure    = errors.New("ceremony failed")
	ErrNoStoredCredential = errors.New("no credential found")
)

// Backend performs the actual platform ceremony (navigator.credentials.create/get).
type Backend interface {
	Create(ctx context.Context, opts *protocol.PublicKeyCredentialCreationOptions) (*protocol.CredentialCreationResponse, error)
	Get(ctx context.Context, opts *protocol.PublicKeyCredentialRequestOptions) (*protocol.CredentialAssertionResponse, error)
}

// CredentialReader is the read side of the credential store.
type CredentialReader interface {
	Get() (*model.Credential, error)
}

// Registration is the outcome of a successful registration ceremony.
type Registration struct {
	RelyingParty model.RelyingParty
	User         model.User
	Credential   *protocol.CredentialCreationResponse
}

// PublicKeyDER returns the SPKI public key reported by the authenticator.
func (r *Registration) PublicKeyDER() []byte {
	return r.Credential.AttestationResponse.PublicKey
}

// CredentialID returns the credential id in the URL-safe form the authenticator reports.
func (r *Registration) CredentialID() string {
	if r.Credential.ID != "" {
		return r.Credential.ID
	}
	return common.EncodeCredentialID(r.Credential.RawID)
}

// Provider issues ceremonies against a Backend, one at a time.
type Provider struct {
	backend Backend
	store   CredentialReader
	rp      model.RelyingParty
	gate    *semaphore.Weighted
	random  io.Reader
	log     *zap.Logger
	metrics *metrics.Metrics
}

type Option func(*Provider)

func WithLogger(log *zap.Logger) Option {
	return func(p *Provider) { p.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// WithRandom replaces the source of user handles and names.
func WithRandom(r io.Reader) Option {
	return func(p *Provider) { p.random = r }
}

// NewProvider binds a backend to the relying party (the current origin) and the
// store whose credential is used as the assertion allow-list.
func NewProvider(backend Backend, store CredentialReader, rp model.RelyingParty, opts ...Option) *Provider {
	p := &Provider{
		backend: backend,
		store:   store,
		rp:      rp,
		gate:    semaphore.NewWeighted(1),
		random:  rand.Reader,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RelyingParty returns the origin credentials are registered for.
func (p *Provider) RelyingParty() model.RelyingParty {
	return p.rp
}

// Register creates a new discoverable ES256 credential on a roaming authenticator.
// Nothing is persisted here; the caller commits the descriptor once every later
// step has succeeded.
func (p *Provider) Register(ctx context.Context, identityLabel string) (*Registration, error) {
	opts, user, err := p.creationOptions(identityLabel)
	if err != nil {
		return nil, err
	}

	release, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	credential, err := p.backend.Create(ctx, opts)
	if err == nil {
		err = checkCreation(credential)
	}
	p.metrics.ObserveCeremony("register", start, err)
	if err != nil {
		p.log.Warn("registration ceremony failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCeremonyFailure, err)
	}

	p.log.Info("registration ceremony completed",
		zap.String("rp_id", p.rp.ID),
		zap.String("credential_id", credential.ID),
		zap.Duration("elapsed", time.Since(start)))

	return &Registration{
		RelyingParty: p.rp,
		User:         user,
		Credential:   credential,
	}, nil
}

// Authenticate asks the stored credential, and only that one, to sign challenge.
func (p *Provider) Authenticate(ctx context.Context, challenge []byte) (*protocol.CredentialAssertionResponse, error) {
	stored, err := p.store.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}
	if stored == nil {
		return nil, ErrNoStoredCredential
	}
	credentialID, err := common.DecodeCredentialID(stored.CredentialID)
	if err != nil {
		return nil, err
	}

	opts := &protocol.PublicKeyCredentialRequestOptions{
		Challenge:        protocol.URLEncodedBase64(challenge),
		Timeout:          int(Timeout / time.Millisecond),
		RelyingPartyID:   stored.RelyingParty.ID,
		UserVerification: protocol.VerificationRequired,
		AllowedCredentials: []protocol.CredentialDescriptor{{
			Type:         protocol.PublicKeyCredentialType,
			CredentialID: credentialID,
		}},
	}

	release, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	assertion, err := p.backend.Get(ctx, opts)
	if err == nil && assertion == nil {
		err = errors.New("empty assertion")
	}
	p.metrics.ObserveCeremony("authenticate", start, err)
	if err != nil {
		p.log.Warn("authentication ceremony failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCeremonyFailure, err)
	}
	return assertion, nil
}

// acquire waits for the previous ceremony to settle; the authenticator only
// accepts one at a time.
func (p *Provider) acquire(ctx context.Context) (func(), error) {
	if err := p.gate.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCeremonyFailure, err)
	}
	return func() { p.gate.Release(1) }, nil
}

func (p *Provider) creationOptions(identityLabel string) (*protocol.PublicKeyCredentialCreationOptions, model.User, error) {
	handle := make([]byte, userHandleLen)
	if _, err := io.ReadFull(p.random, handle); err != nil {
		return nil, model.User{}, fmt.Errorf("failed to generate user handle: %w", err)
	}
	name := make([]byte, userNameLen)
	if _, err := io.ReadFull(p.random, name); err != nil {
		return nil, model.User{}, fmt.Errorf("failed to generate user name: %w", err)
	}

	user := model.User{
		Name:        base58.Encode(name),
		DisplayName: identityLabel,
	}

	opts := &protocol.PublicKeyCredentialCreationOptions{
		RelyingParty: protocol.RelyingPartyEntity{
			CredentialEntity: protocol.CredentialEntity{Name: p.rp.Name},
			ID:               p.rp.ID,
		},
		User: protocol.UserEntity{
			CredentialEntity: protocol.CredentialEntity{Name: user.Name},
			DisplayName:      user.DisplayName,
			ID:               protocol.URLEncodedBase64(handle),
		},
		Challenge: protocol.URLEncodedBase64(registrationChallenge),
		Parameters: []protocol.CredentialParameter{{
			Type:      protocol.PublicKeyCredentialType,
			Algorithm: webauthncose.AlgES256,
		}},
		Timeout: int(Timeout / time.Millisecond),
		AuthenticatorSelection: protocol.AuthenticatorSelection{
			AuthenticatorAttachment: protocol.CrossPlatform,
			ResidentKey:             protocol.ResidentKeyRequirementRequired,
			RequireResidentKey:      protocol.ResidentKeyRequired(),
			UserVerification:        protocol.VerificationRequired,
		},
	}
	return opts, user, nil
}

func checkCreation(credential *protocol.CredentialCreationResponse) error {
	if credential == nil {
		return errors.New("empty credential")
	}
	if len(credential.AttestationResponse.PublicKey) == 0 {
		return errors.New("invalid credential create response: no public key")
	}
	if credential.ID == "" && len(credential.RawID) == 0 {
		return errors.New("invalid credential create response: no credential id")
	}
	return nil
}
