package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/sui-passkey/internal/bridge"
	"github.com/AlexZinkM/sui-passkey/internal/ceremony"
	"github.com/AlexZinkM/sui-passkey/internal/client"
	"github.com/AlexZinkM/sui-passkey/internal/credential"
	"github.com/AlexZinkM/sui-passkey/internal/model"
	"github.com/AlexZinkM/sui-passkey/internal/spki"
	"github.com/AlexZinkM/sui-passkey/wallet"
)

// Error codes of model.ErrorResponse.
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeChainMismatch       = "CHAIN_MISMATCH"
	CodeSignerUnavailable   = "SIGNER_UNAVAILABLE"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeClientUnavailable   = "CLIENT_UNAVAILABLE"
	CodeCeremonyFailure     = "CEREMONY_FAILURE"
	CodeCeremonyRejected    = "CEREMONY_REJECTED"
	CodeConnectAborted      = "CONNECT_ABORTED"
	CodeNoStoredCredential  = "NO_STORED_CREDENTIAL"
	CodeCeremonyBusy        = "CEREMONY_BUSY"
	CodeUnknownCeremony     = "UNKNOWN_CEREMONY"
	CodeMalformedKey        = "MALFORMED_KEY"
	CodeInvalidCredential   = "INVALID_CREDENTIAL"
	CodeNetworkExecution    = "NETWORK_EXECUTION"
	CodeNodeError           = "NODE_ERROR"
	CodeTimeout             = "TIMEOUT"
	CodeInternal            = "INTERNAL"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

// writeFailure maps an operation error to its HTTP status and code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, wallet.ErrChainMismatch):
		return http.StatusBadRequest, CodeChainMismatch
	case errors.Is(err, wallet.ErrSignerUnavailable):
		return http.StatusConflict, CodeSignerUnavailable
	case errors.Is(err, wallet.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, CodeProviderUnavailable
	case errors.Is(err, wallet.ErrClientUnavailable):
		return http.StatusServiceUnavailable, CodeClientUnavailable
	case errors.Is(err, wallet.ErrConnectAborted):
		return http.StatusConflict, CodeConnectAborted
	case errors.Is(err, ceremony.ErrNoStoredCredential):
		return http.StatusNotFound, CodeNoStoredCredential
	case errors.Is(err, bridge.ErrBusy):
		return http.StatusConflict, CodeCeremonyBusy
	case errors.Is(err, bridge.ErrUnknownCeremony):
		return http.StatusNotFound, CodeUnknownCeremony
	case bridge.IsRejected(err):
		return http.StatusForbidden, CodeCeremonyRejected
	case errors.Is(err, ceremony.ErrCeremonyFailure):
		return http.StatusForbidden, CodeCeremonyFailure
	case errors.Is(err, spki.ErrMalformedLength),
		errors.Is(err, spki.ErrMalformedHeader),
		errors.Is(err, spki.ErrMalformedPointMarker):
		return http.StatusUnprocessableEntity, CodeMalformedKey
	case errors.Is(err, credential.ErrInvalidCredential):
		return http.StatusUnprocessableEntity, CodeInvalidCredential
	case wallet.IsNetworkExecutionError(err):
		return http.StatusBadGateway, CodeNetworkExecution
	case client.IsRPCError(err):
		return http.StatusBadGateway, CodeNodeError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	}
	return http.StatusInternalServerError, CodeInternal
}
