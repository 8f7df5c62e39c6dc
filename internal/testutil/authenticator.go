// Package testutil holds an in-process passkey authenticator used by tests
// across packages.
package testutil

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"

	"github.com/go-webauthn/webauthn/protocol"
)

// Origin is reported in clientDataJSON.
const Origin = "https://localhost"

var ErrNotAllowed = errors.New("credential not allowed")

// Authenticator behaves like a roaming FIDO2 key holding one P-256 credential.
type Authenticator struct {
	mu           sync.Mutex
	key          *ecdsa.PrivateKey
	credentialID []byte
	counter      uint32
	inFlight     int

	// Err, when set, fails the next ceremony and is then cleared.
	Err error
	// Block, when set, holds every ceremony until it is closed or the context ends.
	Block chan struct{}
	// OmitPublicKey drops the SPKI from the registration response.
	OmitPublicKey bool

	CreateCalls  int
	GetCalls     int
	MaxInFlight  int
	LastCreation *protocol.PublicKeyCredentialCreationOptions
	LastRequest  *protocol.PublicKeyCredentialRequestOptions
}

func NewAuthenticator() *Authenticator {
	return &Authenticator{}
}

// PublicKey returns the key of the most recent registration.
func (a *Authenticator) PublicKey() *ecdsa.PublicKey {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.key == nil {
		return nil
	}
	return &a.key.PublicKey
}

// CompressedPublicKey returns the SEC1 compressed form of PublicKey.
func (a *Authenticator) CompressedPublicKey() []byte {
	pub := a.PublicKey()
	if pub == nil {
		return nil
	}
	return elliptic.MarshalCompressed(elliptic.P256(), pub.X, pub.Y)
}

// CredentialID returns the raw id of the most recent registration.
func (a *Authenticator) CredentialID() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]byte(nil), a.credentialID...)
}

// Calls returns how many ceremonies of each kind were requested so far.
func (a *Authenticator) Calls() (create, get int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.CreateCalls, a.GetCalls
}

func (a *Authenticator) enter(ctx context.Context) (func(), error) {
	a.mu.Lock()
	a.inFlight++
	if a.inFlight > a.MaxInFlight {
		a.MaxInFlight = a.inFlight
	}
	block := a.Block
	a.mu.Unlock()

	leave := func() {
		a.mu.Lock()
		a.inFlight--
		a.mu.Unlock()
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			leave()
			return nil, ctx.Err()
		}
	}
	a.mu.Lock()
	err := a.Err
	a.Err = nil
	a.mu.Unlock()
	if err != nil {
		leave()
		return nil, err
	}
	return leave, nil
}

func (a *Authenticator) Create(ctx context.Context, opts *protocol.PublicKeyCredentialCreationOptions) (*protocol.CredentialCreationResponse, error) {
	a.mu.Lock()
	a.CreateCalls++
	a.LastCreation = opts
	a.mu.Unlock()

	leave, err := a.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, err
	}
	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.key = key
	a.credentialID = id
	a.counter = 0
	omit := a.OmitPublicKey
	a.mu.Unlock()

	resp := &protocol.CredentialCreationResponse{
		PublicKeyCredential: protocol.PublicKeyCredential{
			Credential: protocol.Credential{
				ID:   base64.RawURLEncoding.EncodeToString(id),
				Type: "public-key",
			},
			RawID: id,
		},
	}
	if !omit {
		resp.AttestationResponse.PublicKey = der
	}
	return resp, nil
}

func (a *Authenticator) Get(ctx context.Context, opts *protocol.PublicKeyCredentialRequestOptions) (*protocol.CredentialAssertionResponse, error) {
	a.mu.Lock()
	a.GetCalls++
	a.LastRequest = opts
	a.mu.Unlock()

	leave, err := a.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.key == nil || !allowed(opts.AllowedCredentials, a.credentialID) {
		return nil, ErrNotAllowed
	}

	clientData, err := json.Marshal(map[string]any{
		"type":        "webauthn.get",
		"challenge":   base64.RawURLEncoding.EncodeToString(opts.Challenge),
		"origin":      Origin,
		"crossOrigin": false,
	})
	if err != nil {
		return nil, err
	}

	a.counter++
	rpHash := sha256.Sum256([]byte(opts.RelyingPartyID))
	authData := make([]byte, 0, 37)
	authData = append(authData, rpHash[:]...)
	authData = append(authData, 0x05) // UP | UV
	authData = binary.BigEndian.AppendUint32(authData, a.counter)

	clientHash := sha256.Sum256(clientData)
	digest := sha256.Sum256(append(append([]byte{}, authData...), clientHash[:]...))
	sig, err := ecdsa.SignASN1(rand.Reader, a.key, digest[:])
	if err != nil {
		return nil, err
	}

	return &protocol.CredentialAssertionResponse{
		PublicKeyCredential: protocol.PublicKeyCredential{
			Credential: protocol.Credential{
				ID:   base64.RawURLEncoding.EncodeToString(a.credentialID),
				Type: "public-key",
			},
			RawID: a.credentialID,
		},
		AssertionResponse: protocol.AuthenticatorAssertionResponse{
			AuthenticatorResponse: protocol.AuthenticatorResponse{ClientDataJSON: clientData},
			AuthenticatorData:     authData,
			Signature:             sig,
		},
	}, nil
}

func allowed(list []protocol.CredentialDescriptor, id []byte) bool {
	for _, d := range list {
		if bytes.Equal(d.CredentialID, id) {
			return true
		}
	}
	return false
}
