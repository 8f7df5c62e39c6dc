package spki

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDER(t *testing.T) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.Len(t, der, EncodedLen)
	return der
}

func TestDecodeReturnsTrailingPoint(t *testing.T) {
	der := validDER(t)

	point, err := Decode(der)
	require.NoError(t, err)
	assert.Equal(t, der[HeaderLen:], point)
	assert.Len(t, point, UncompressedPointSize)
	assert.Equal(t, byte(0x04), point[0])

	_, err = ecdh.P256().NewPublicKey(point)
	assert.NoError(t, err, "decoded point must be on the curve")
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	der := validDER(t)
	point, err := Decode(der)
	require.NoError(t, err)

	point[1] ^= 0xff
	assert.NotEqual(t, der[HeaderLen+1], point[1])
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	der := validDER(t)
	for n := 0; n <= EncodedLen+8; n++ {
		if n == EncodedLen {
			continue
		}
		input := make([]byte, n)
		copy(input, der)
		_, err := Decode(input)
		assert.ErrorIs(t, err, ErrMalformedLength, "length %d", n)
	}

	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrMalformedLength)
	_, err = Decode(append(der, 0x00))
	assert.ErrorIs(t, err, ErrMalformedLength)
}

func TestDecodeRejectsEveryHeaderMutation(t *testing.T) {
	der := validDER(t)
	for i := 0; i < HeaderLen; i++ {
		mutated := append([]byte(nil), der...)
		mutated[i] ^= 0x01
		_, err := Decode(mutated)
		assert.ErrorIs(t, err, ErrMalformedHeader, "offset %d", i)
	}
}

func TestDecodeRejectsOtherCurves(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	_, err = Decode(der)
	assert.ErrorIs(t, err, ErrMalformedLength)

	// same length, different curve OID
	p256 := validDER(t)
	p256[22] = 0x22
	_, err = Decode(p256)
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDecodeRejectsPointMarker(t *testing.T) {
	der := validDER(t)
	for _, marker := range []byte{0x00, 0x02, 0x03, 0x05, 0x06, 0x07, 0xff} {
		mutated := append([]byte(nil), der...)
		mutated[HeaderLen] = marker
		_, err := Decode(mutated)
		assert.ErrorIs(t, err, ErrMalformedPointMarker, "marker %#x", marker)
	}
}

func TestHeaderIsCopy(t *testing.T) {
	h := Header()
	require.Len(t, h, 26)
	h[0] = 0
	assert.Equal(t, byte(0x30), Header()[0])
}
