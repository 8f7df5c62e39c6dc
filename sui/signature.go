package sui

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AlexZinkM/sui-passkey/internal/crypto"

	"github.com/go-webauthn/webauthn/protocol"
)

// userSignatureSize is flag || r || s || compressed key.
const userSignatureSize = 1 + 64 + PasskeyPublicKeySize

var (
	ErrInvalidSignature  = errors.New("invalid passkey signature")
	ErrChallengeMismatch = errors.New("passkey signature challenge does not match payload")
)

// SignedMessage pairs a signature with the exact bytes it covers, both base64.
type SignedMessage struct {
	Bytes     string `json:"bytes"`
	Signature string `json:"signature"`
}

// PasskeyAuthenticator is the BCS body of a Sui passkey signature.
type PasskeyAuthenticator struct {
	AuthenticatorData []byte
	ClientDataJSON    string
	// UserSignature is 0x02 || r || s || compressed public key.
	UserSignature []byte
}

// NewPasskeyAuthenticator assembles the envelope from a device assertion, the
// compact low-S signature and the compressed public key of the credential.
func NewPasskeyAuthenticator(authData, clientDataJSON, compactSig, publicKey []byte) (*PasskeyAuthenticator, error) {
	if len(compactSig) != 64 {
		return nil, fmt.Errorf("%w: signature must be 64 bytes, got %d", ErrInvalidSignature, len(compactSig))
	}
	if len(publicKey) != PasskeyPublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	userSig := make([]byte, 0, userSignatureSize)
	userSig = append(userSig, FlagSecp256r1)
	userSig = append(userSig, compactSig...)
	userSig = append(userSig, publicKey...)
	return &PasskeyAuthenticator{
		AuthenticatorData: append([]byte(nil), authData...),
		ClientDataJSON:    string(clientDataJSON),
		UserSignature:     userSig,
	}, nil
}

// Bytes serializes the signature: 0x06 || BCS(authenticatorData, clientDataJson, userSignature).
func (p *PasskeyAuthenticator) Bytes() []byte {
	out := []byte{FlagPasskey}
	out = AppendBytes(out, p.AuthenticatorData)
	out = AppendString(out, p.ClientDataJSON)
	return AppendBytes(out, p.UserSignature)
}

// String returns the base64 serialized signature Sui nodes accept.
func (p *PasskeyAuthenticator) String() string {
	return base64.StdEncoding.EncodeToString(p.Bytes())
}

// PublicKey returns the compressed key embedded in the user signature.
func (p *PasskeyAuthenticator) PublicKey() []byte {
	return p.UserSignature[1+64:]
}

// ParsePasskeySignature decodes a serialized passkey signature.
func ParsePasskeySignature(raw []byte) (*PasskeyAuthenticator, error) {
	if len(raw) == 0 || raw[0] != FlagPasskey {
		return nil, fmt.Errorf("%w: missing passkey flag", ErrInvalidSignature)
	}
	authData, rest, ok := ReadBytes(raw[1:])
	if !ok {
		return nil, fmt.Errorf("%w: authenticator data", ErrInvalidSignature)
	}
	clientData, rest, ok := ReadBytes(rest)
	if !ok {
		return nil, fmt.Errorf("%w: client data", ErrInvalidSignature)
	}
	userSig, rest, ok := ReadBytes(rest)
	if !ok || len(rest) != 0 {
		return nil, fmt.Errorf("%w: user signature", ErrInvalidSignature)
	}
	if len(userSig) != userSignatureSize || userSig[0] != FlagSecp256r1 {
		return nil, fmt.Errorf("%w: user signature must be %d bytes secp256r1", ErrInvalidSignature, userSignatureSize)
	}
	return &PasskeyAuthenticator{
		AuthenticatorData: authData,
		ClientDataJSON:    string(clientData),
		UserSignature:     userSig,
	}, nil
}

// VerifyPasskeySignature checks a base64 passkey signature over payload in the
// given intent scope and returns the signer's address.
func VerifyPasskeySignature(scope IntentScope, payload []byte, signature string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return "", fmt.Errorf("failed to decode signature: %w", err)
	}
	sig, err := ParsePasskeySignature(raw)
	if err != nil {
		return "", err
	}

	var clientData protocol.CollectedClientData
	if err := json.Unmarshal([]byte(sig.ClientDataJSON), &clientData); err != nil {
		return "", fmt.Errorf("failed to parse client data: %w", err)
	}
	digest := intentDigestForScope(scope, payload)
	if clientData.Challenge != base64.RawURLEncoding.EncodeToString(digest[:]) {
		return "", ErrChallengeMismatch
	}

	pubKey := sig.PublicKey()
	point, err := crypto.DecompressPoint(pubKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	pub, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), point)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	clientHash := sha256.Sum256([]byte(sig.ClientDataJSON))
	signed := make([]byte, 0, len(sig.AuthenticatorData)+len(clientHash))
	signed = append(signed, sig.AuthenticatorData...)
	signed = append(signed, clientHash[:]...)
	hash := sha256.Sum256(signed)

	der, err := crypto.DERSignature(sig.UserSignature[1:65])
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if !ecdsa.VerifyASN1(pub, hash[:], der) {
		return "", ErrInvalidSignature
	}
	return PasskeyAddress(pubKey)
}

func intentDigestForScope(scope IntentScope, payload []byte) [32]byte {
	if scope == ScopePersonalMessage {
		return PersonalMessageDigest(payload)
	}
	return IntentDigest(scope, payload)
}
