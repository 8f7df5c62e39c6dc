package sui

import "golang.org/x/crypto/blake2b"

// IntentScope is the first byte of a Sui intent.
type IntentScope byte

const (
	ScopeTransactionData IntentScope = 0
	ScopePersonalMessage IntentScope = 3
)

const (
	intentVersionV0 = 0
	appIDSui        = 0
)

// MessageWithIntent prefixes data with the 3-byte intent [scope, version, app].
func MessageWithIntent(scope IntentScope, data []byte) []byte {
	out := make([]byte, 0, 3+len(data))
	out = append(out, byte(scope), intentVersionV0, appIDSui)
	return append(out, data...)
}

// IntentDigest is the 32-byte blake2b hash a Sui signature commits to.
func IntentDigest(scope IntentScope, data []byte) [32]byte {
	return blake2b.Sum256(MessageWithIntent(scope, data))
}

// TransactionDigest returns the signing digest of built transaction bytes.
func TransactionDigest(txBytes []byte) [32]byte {
	return IntentDigest(ScopeTransactionData, txBytes)
}

// PersonalMessageDigest returns the signing digest of a personal message, which is
// BCS-wrapped as vector<u8> before the intent is applied.
func PersonalMessageDigest(message []byte) [32]byte {
	return IntentDigest(ScopePersonalMessage, AppendBytes(nil, message))
}
