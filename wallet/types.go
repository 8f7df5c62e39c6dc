package wallet

import "github.com/AlexZinkM/sui-passkey/sui"

// State of the wallet session.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// EventChange is the only event the wallet emits.
const EventChange = "change"

// Feature names as advertised to wallet-standard consumers.
const (
	FeatureConnect                   = "standard:connect"
	FeatureDisconnect                = "standard:disconnect"
	FeatureEvents                    = "standard:events"
	FeatureSignTransaction           = "sui:signTransaction"
	FeatureSignAndExecuteTransaction = "sui:signAndExecuteTransaction"
	FeatureSignPersonalMessage       = "sui:signPersonalMessage"
)

// Feature is one supported capability and its version.
type Feature struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

var features = []Feature{
	{Name: FeatureConnect, Version: "1.0.0"},
	{Name: FeatureDisconnect, Version: "1.0.0"},
	{Name: FeatureEvents, Version: "1.0.0"},
	{Name: FeatureSignTransaction, Version: "2.0.0"},
	{Name: FeatureSignAndExecuteTransaction, Version: "2.0.0"},
	{Name: FeatureSignPersonalMessage, Version: "1.0.0"},
}

var accountFeatures = []string{
	FeatureSignTransaction,
	FeatureSignAndExecuteTransaction,
	FeatureSignPersonalMessage,
}

// Account is derived from the stored credential and never persisted.
type Account struct {
	Address   string   `json:"address"`
	PublicKey []byte   `json:"publicKey"`
	Chains    []string `json:"chains"`
	Features  []string `json:"features"`
}

// ChangeEvent is delivered to EventChange listeners. Accounts is empty after a
// disconnect.
type ChangeEvent struct {
	Accounts []Account `json:"accounts"`
}

type Listener func(ChangeEvent)

// SignTransactionInput carries already built transaction bytes and the chain
// the caller expects them to be valid on, e.g. "sui:testnet".
type SignTransactionInput struct {
	Transaction []byte
	Chain       string
}

// ExecutedTransaction is the result of SignAndExecuteTransaction. Bytes,
// Signature and Effects are base64.
type ExecutedTransaction struct {
	Digest    string `json:"digest"`
	Bytes     string `json:"bytes"`
	Signature string `json:"signature"`
	Effects   string `json:"effects"`
}

type SignedTransaction = sui.SignedMessage

type SignedPersonalMessage = sui.SignedMessage
