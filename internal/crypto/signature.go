package crypto

import (
	"crypto/elliptic"
	"errors"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// CompactSignatureSize is r || s, 32 bytes each.
const CompactSignatureSize = 64

var ErrInvalidSignature = errors.New("invalid ECDSA signature")

var (
	p256Order     = elliptic.P256().Params().N
	p256HalfOrder = new(big.Int).Rsh(p256Order, 1)
)

// CompactSignature parses an ASN.1 DER ECDSA-P256 signature as produced by
// authenticators and returns r || s with s normalized to the lower half of the order.
func CompactSignature(der []byte) ([]byte, error) {
	var (
		inner cryptobyte.String
		r     = new(big.Int)
		s     = new(big.Int)
	)
	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, ErrInvalidSignature
	}
	if r.Sign() <= 0 || s.Sign() <= 0 || r.Cmp(p256Order) >= 0 || s.Cmp(p256Order) >= 0 {
		return nil, ErrInvalidSignature
	}
	if s.Cmp(p256HalfOrder) > 0 {
		s.Sub(p256Order, s)
	}

	out := make([]byte, CompactSignatureSize)
	r.FillBytes(out[:32])
	s.FillBytes(out[32:])
	return out, nil
}

// DERSignature encodes a compact r || s signature as ASN.1 DER.
func DERSignature(compact []byte) ([]byte, error) {
	if len(compact) != CompactSignatureSize {
		return nil, ErrInvalidSignature
	}
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(new(big.Int).SetBytes(compact[:32]))
		b.AddASN1BigInt(new(big.Int).SetBytes(compact[32:]))
	})
	return b.Bytes()
}
