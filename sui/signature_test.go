package sui

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/AlexZinkM/sui-passkey/internal/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAssertion struct {
	authData   []byte
	clientData []byte
	compact    []byte
	publicKey  []byte
}

func signAssertion(t *testing.T, key *ecdsa.PrivateKey, digest [32]byte) testAssertion {
	t.Helper()
	clientData, err := json.Marshal(map[string]any{
		"type":      "webauthn.get",
		"challenge": base64.RawURLEncoding.EncodeToString(digest[:]),
		"origin":    "https://localhost",
	})
	require.NoError(t, err)

	rpHash := sha256.Sum256([]byte("localhost"))
	authData := append(rpHash[:], 0x05, 0, 0, 0, 1)
	clientHash := sha256.Sum256(clientData)
	hash := sha256.Sum256(append(append([]byte{}, authData...), clientHash[:]...))

	r, s, err := ecdsa.Sign(rand.Reader, key, hash[:])
	require.NoError(t, err)
	half := new(big.Int).Rsh(elliptic.P256().Params().N, 1)
	if s.Cmp(half) > 0 {
		s.Sub(elliptic.P256().Params().N, s)
	}
	compact := make([]byte, 64)
	r.FillBytes(compact[:32])
	s.FillBytes(compact[32:])

	return testAssertion{
		authData:   authData,
		clientData: clientData,
		compact:    compact,
		publicKey:  elliptic.MarshalCompressed(elliptic.P256(), key.X, key.Y),
	}
}

func TestPasskeySignatureLayout(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	a := signAssertion(t, key, TransactionDigest([]byte{1}))

	sig, err := NewPasskeyAuthenticator(a.authData, a.clientData, a.compact, a.publicKey)
	require.NoError(t, err)

	raw := sig.Bytes()
	assert.Equal(t, FlagPasskey, raw[0])
	assert.Equal(t, byte(len(a.authData)), raw[1])
	assert.Equal(t, a.publicKey, raw[len(raw)-PasskeyPublicKeySize:])
	assert.Equal(t, FlagSecp256r1, raw[len(raw)-userSignatureSize])
	assert.Equal(t, byte(userSignatureSize), raw[len(raw)-userSignatureSize-1])

	parsed, err := ParsePasskeySignature(raw)
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)
	assert.Equal(t, a.publicKey, parsed.PublicKey())
}

func TestVerifyPasskeySignature(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tx := []byte("transaction bytes")
	a := signAssertion(t, key, TransactionDigest(tx))

	sig, err := NewPasskeyAuthenticator(a.authData, a.clientData, a.compact, a.publicKey)
	require.NoError(t, err)

	addr, err := VerifyPasskeySignature(ScopeTransactionData, tx, sig.String())
	require.NoError(t, err)
	want, err := PasskeyAddress(a.publicKey)
	require.NoError(t, err)
	assert.Equal(t, want, addr)

	_, err = VerifyPasskeySignature(ScopeTransactionData, []byte("other bytes"), sig.String())
	assert.ErrorIs(t, err, ErrChallengeMismatch)

	_, err = VerifyPasskeySignature(ScopePersonalMessage, tx, sig.String())
	assert.ErrorIs(t, err, ErrChallengeMismatch)

	sig.AuthenticatorData[len(sig.AuthenticatorData)-1] ^= 0x01
	_, err = VerifyPasskeySignature(ScopeTransactionData, tx, sig.String())
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyPersonalMessageSignature(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	msg := []byte("hello sui")
	a := signAssertion(t, key, PersonalMessageDigest(msg))

	sig, err := NewPasskeyAuthenticator(a.authData, a.clientData, a.compact, a.publicKey)
	require.NoError(t, err)
	_, err = VerifyPasskeySignature(ScopePersonalMessage, msg, sig.String())
	assert.NoError(t, err)
}

func TestParsePasskeySignatureRejectsGarbage(t *testing.T) {
	for name, raw := range map[string][]byte{
		"empty":      nil,
		"wrong flag": {0x00, 0x01},
		"truncated":  {FlagPasskey, 0x10, 0x01},
		"short usig": append(AppendString(AppendBytes([]byte{FlagPasskey}, []byte{1}), "{}"), 0x01, 0x02),
		"trailing":   append(AppendBytes(AppendString(AppendBytes([]byte{FlagPasskey}, nil), "{}"), make([]byte, userSignatureSize)), 0x00),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePasskeySignature(raw)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestNewPasskeyAuthenticatorValidates(t *testing.T) {
	_, err := NewPasskeyAuthenticator(nil, nil, make([]byte, 63), make([]byte, 33))
	assert.ErrorIs(t, err, ErrInvalidSignature)
	_, err = NewPasskeyAuthenticator(nil, nil, make([]byte, 64), make([]byte, 65))
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestVerifyRejectsKeyOffCurve(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tx := []byte("transaction bytes")
	a := signAssertion(t, key, TransactionDigest(tx))

	offCurve := make([]byte, PasskeyPublicKeySize)
	offCurve[0] = 0x02
	for i := byte(1); ; i++ {
		offCurve[PasskeyPublicKeySize-1] = i
		if _, err := crypto.DecompressPoint(offCurve); err != nil {
			break
		}
	}

	sig, err := NewPasskeyAuthenticator(a.authData, a.clientData, a.compact, offCurve)
	require.NoError(t, err)
	_, err = VerifyPasskeySignature(ScopeTransactionData, tx, sig.String())
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	// A valid key that did not sign fails on the signature itself.
	other, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	sig, err = NewPasskeyAuthenticator(a.authData, a.clientData, a.compact,
		elliptic.MarshalCompressed(elliptic.P256(), other.X, other.Y))
	require.NoError(t, err)
	_, err = VerifyPasskeySignature(ScopeTransactionData, tx, sig.String())
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
