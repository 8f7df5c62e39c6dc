package crypto

import (
	"errors"
	"fmt"

	"filippo.io/nistec"
)

const (
	CompressedPointSize   = 33
	UncompressedPointSize = 65
)

var ErrInvalidPoint = errors.New("invalid P-256 point")

// CompressPoint converts 04 || X || Y into the 33-byte SEC1 compressed form.
// The point must lie on P-256.
func CompressPoint(uncompressed []byte) ([]byte, error) {
	if len(uncompressed) != UncompressedPointSize || uncompressed[0] != 0x04 {
		return nil, ErrInvalidPoint
	}
	p, err := nistec.NewP256Point().SetBytes(uncompressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	return p.BytesCompressed(), nil
}

// DecompressPoint converts a 33-byte compressed P-256 point back to 04 || X || Y.
func DecompressPoint(compressed []byte) ([]byte, error) {
	if len(compressed) != CompressedPointSize || (compressed[0] != 0x02 && compressed[0] != 0x03) {
		return nil, ErrInvalidPoint
	}
	p, err := nistec.NewP256Point().SetBytes(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	return p.Bytes(), nil
}
