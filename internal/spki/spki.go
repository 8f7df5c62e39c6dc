// Package spki decodes the DER SubjectPublicKeyInfo that a passkey authenticator
// returns for a freshly registered P-256 credential.
package spki

import (
	"bytes"
	"errors"
)

// UncompressedPointSize is the size of 0x04 || X || Y for P-256.
const UncompressedPointSize = 65

// uncompressedPointMarker tags an uncompressed SEC1 point.
const uncompressedPointMarker = 0x04

// secp256r1Header is the fixed DER prefix of an ecPublicKey/prime256v1 SPKI.
var secp256r1Header = [...]byte{
	0x30, 0x59, // SEQUENCE, length 89
	0x30, 0x13, // SEQUENCE, length 19
	0x06, 0x07, // OID, length 7
	0x2a, 0x86, 0x48, 0xce, 0x3d, 0x02, 0x01, // 1.2.840.10045.2.1 ecPublicKey
	0x06, 0x08, // OID, length 8
	0x2a, 0x86, 0x48, 0xce, 0x3d, 0x03, 0x01, 0x07, // 1.2.840.10045.3.1.7 prime256v1
	0x03, 0x42, // BIT STRING, length 66
	0x00, // no unused bits
}

// HeaderLen is the length of the fixed SPKI prefix.
const HeaderLen = len(secp256r1Header)

// EncodedLen is the only accepted input length.
const EncodedLen = HeaderLen + UncompressedPointSize

var (
	ErrMalformedLength      = errors.New("invalid DER length")
	ErrMalformedHeader      = errors.New("invalid spki header")
	ErrMalformedPointMarker = errors.New("invalid point marker")
)

// Header returns a copy of the fixed P-256 SPKI prefix.
func Header() []byte {
	h := secp256r1Header
	return h[:]
}

// Decode returns the trailing 04 || X || Y point of a P-256 SPKI.
// Any other algorithm, curve or encoding is rejected; no leniency is applied.
func Decode(der []byte) ([]byte, error) {
	if len(der) != EncodedLen {
		return nil, ErrMalformedLength
	}
	if !bytes.Equal(der[:HeaderLen], secp256r1Header[:]) {
		return nil, ErrMalformedHeader
	}
	if der[HeaderLen] != uncompressedPointMarker {
		return nil, ErrMalformedPointMarker
	}

	point := make([]byte, UncompressedPointSize)
	copy(point, der[HeaderLen:])
	return point, nil
}
