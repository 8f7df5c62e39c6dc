package model

import "encoding/json"

// SignTransactionRequest represents request for POST /wallet/sign/transaction and /wallet/sign/execute
type SignTransactionRequest struct {
	// Transaction is the built transaction, base64
	Transaction string `json:"transaction" binding:"required"`
	Chain       string `json:"chain" binding:"required"`
}

// SignMessageRequest represents request for POST /wallet/sign/message
type SignMessageRequest struct {
	// Message is base64
	Message string `json:"message" binding:"required"`
}

// SignedResponse pairs a signature with the exact bytes it covers
type SignedResponse struct {
	Bytes     string `json:"bytes"`
	Signature string `json:"signature"`
}

// ExecuteResponse represents response for POST /wallet/sign/execute
type ExecuteResponse struct {
	Digest    string `json:"digest"`
	Bytes     string `json:"bytes"`
	Signature string `json:"signature"`
	Effects   string `json:"effects"`
}

// ResolveCeremonyRequest represents request for POST /ceremony/resolve
type ResolveCeremonyRequest struct {
	ID         string          `json:"id" binding:"required"`
	Credential json.RawMessage `json:"credential" swaggertype:"object" binding:"required"`
}

// RejectCeremonyRequest represents request for POST /ceremony/reject
type RejectCeremonyRequest struct {
	ID     string `json:"id" binding:"required"`
	Reason string `json:"reason"`
}
