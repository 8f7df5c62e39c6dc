// Package signer turns authenticator assertions into Sui passkey signatures.
package signer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/AlexZinkM/sui-passkey/internal/common"
	"github.com/AlexZinkM/sui-passkey/internal/crypto"
	"github.com/AlexZinkM/sui-passkey/sui"

	"github.com/go-webauthn/webauthn/protocol"
	"go.uber.org/zap"
)

var ErrSignerUnavailable = errors.New("signer unavailable: wallet is not connected")

// Authenticator runs an assertion ceremony over a challenge.
type Authenticator interface {
	Authenticate(ctx context.Context, challenge []byte) (*protocol.CredentialAssertionResponse, error)
}

// Signer is bound to one compressed passkey public key. A nil *Signer reports
// ErrSignerUnavailable from every signing call.
type Signer struct {
	publicKey []byte
	address   string
	auth      Authenticator
	log       *zap.Logger
}

func New(publicKey []byte, auth Authenticator, log *zap.Logger) (*Signer, error) {
	address, err := sui.PasskeyAddress(publicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive address: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Signer{
		publicKey: append([]byte(nil), publicKey...),
		address:   address,
		auth:      auth,
		log:       log.With(zap.String("address", common.ShortAddress(address))),
	}, nil
}

func (s *Signer) Address() string {
	return s.address
}

// PublicKey returns a copy of the compressed key.
func (s *Signer) PublicKey() []byte {
	return append([]byte(nil), s.publicKey...)
}

// SignTransaction signs built transaction bytes under the transaction intent.
func (s *Signer) SignTransaction(ctx context.Context, txBytes []byte) (*sui.SignedMessage, error) {
	return s.sign(ctx, sui.ScopeTransactionData, txBytes)
}

// SignPersonalMessage signs message under the personal message intent. The
// message bytes are returned unmodified.
func (s *Signer) SignPersonalMessage(ctx context.Context, message []byte) (*sui.SignedMessage, error) {
	return s.sign(ctx, sui.ScopePersonalMessage, message)
}

func (s *Signer) sign(ctx context.Context, scope sui.IntentScope, payload []byte) (*sui.SignedMessage, error) {
	if s == nil || s.auth == nil {
		return nil, ErrSignerUnavailable
	}

	var digest [32]byte
	if scope == sui.ScopePersonalMessage {
		digest = sui.PersonalMessageDigest(payload)
	} else {
		digest = sui.IntentDigest(scope, payload)
	}

	assertion, err := s.auth.Authenticate(ctx, digest[:])
	if err != nil {
		return nil, err
	}

	resp := assertion.AssertionResponse
	compact, err := crypto.CompactSignature(resp.Signature)
	if err != nil {
		return nil, fmt.Errorf("failed to parse assertion signature: %w", err)
	}
	envelope, err := sui.NewPasskeyAuthenticator(resp.AuthenticatorData, resp.ClientDataJSON, compact, s.publicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to build passkey signature: %w", err)
	}

	signature := envelope.String()
	// An authenticator answering with another key would otherwise yield a
	// signature the network rejects much later.
	if _, err := sui.VerifyPasskeySignature(scope, payload, signature); err != nil {
		return nil, fmt.Errorf("failed to verify assertion: %w", err)
	}

	s.log.Debug("payload signed", zap.Uint8("intent", uint8(scope)), zap.Int("size", len(payload)))
	return &sui.SignedMessage{
		Bytes:     base64.StdEncoding.EncodeToString(payload),
		Signature: signature,
	}, nil
}
