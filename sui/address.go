package sui

import (
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/blake2b"
)

// Signature scheme flags.
const (
	FlagSecp256r1 byte = 0x02
	FlagPasskey   byte = 0x06
)

// PasskeyPublicKeySize is the compressed secp256r1 key length.
const PasskeyPublicKeySize = 33

var ErrInvalidPublicKey = errors.New("invalid passkey public key")

// PasskeyAddress derives the Sui address of a compressed passkey public key:
// 0x || hex(blake2b256(0x06 || pubkey)).
func PasskeyAddress(publicKey []byte) (string, error) {
	if len(publicKey) != PasskeyPublicKeySize {
		return "", ErrInvalidPublicKey
	}
	buf := make([]byte, 0, 1+PasskeyPublicKeySize)
	buf = append(buf, FlagPasskey)
	buf = append(buf, publicKey...)
	sum := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:]), nil
}
