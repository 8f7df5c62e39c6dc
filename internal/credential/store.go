// Package credential persists the single passkey descriptor a wallet is bound to.
package credential

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AlexZinkM/sui-passkey/internal/common"
	"github.com/AlexZinkM/sui-passkey/internal/crypto"
	"github.com/AlexZinkM/sui-passkey/internal/model"
	"github.com/AlexZinkM/sui-passkey/internal/storage"

	"go.uber.org/zap"
)

// StorageKey is the fixed key the descriptor lives under.
const StorageKey = "credential"

var ErrInvalidCredential = errors.New("invalid credential descriptor")

// Store reads and writes the one descriptor of a storage scope.
type Store struct {
	scope storage.Scope
	log   *zap.Logger
}

func NewStore(scope storage.Scope, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{scope: scope, log: log}
}

// Get returns the stored descriptor, or nil when none exists.
func (s *Store) Get() (*model.Credential, error) {
	raw, ok, err := s.scope.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var cred model.Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}
	return &cred, nil
}

// Put replaces the stored descriptor wholesale.
func (s *Store) Put(cred *model.Credential) error {
	if err := Validate(cred); err != nil {
		return err
	}
	raw, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}
	if err := s.scope.Set(StorageKey, string(raw)); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	s.log.Info("credential stored",
		zap.String("rp_id", cred.RelyingParty.ID),
		zap.String("credential_id", cred.CredentialID))
	return nil
}

// Reset clears the ENTIRE storage scope the store lives in, not only the
// credential key. Anything else kept in the same scope is lost as well.
func (s *Store) Reset() error {
	if err := s.scope.Clear(); err != nil {
		return fmt.Errorf("failed to reset storage: %w", err)
	}
	s.log.Warn("storage scope cleared")
	return nil
}

// Export returns the stored descriptor as indented JSON.
func (s *Store) Export() ([]byte, error) {
	cred, err := s.Get()
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, errors.New("no credential stored")
	}
	return json.MarshalIndent(cred, "", "  ")
}

// Import parses a descriptor exported by Export and stores it.
func (s *Store) Import(raw []byte) (*model.Credential, error) {
	var cred model.Credential
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cred); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if err := s.Put(&cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

// Validate checks the fields later ceremonies depend on.
func Validate(cred *model.Credential) error {
	if cred == nil {
		return fmt.Errorf("%w: missing", ErrInvalidCredential)
	}
	if _, err := common.DecodeCredentialID(cred.CredentialID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if _, err := PublicKey(cred); err != nil {
		return err
	}
	return nil
}

// PublicKey decodes the compressed P-256 key of a descriptor.
func PublicKey(cred *model.Credential) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(cred.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrInvalidCredential, err)
	}
	if _, err := crypto.DecompressPoint(key); err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrInvalidCredential, err)
	}
	return key, nil
}
