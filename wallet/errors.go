package wallet

import (
	"errors"
	"strings"

	"github.com/AlexZinkM/sui-passkey/internal/signer"
)

var (
	ErrProviderUnavailable = errors.New("passkey provider not found")
	ErrChainMismatch       = errors.New("chain mismatch")
	ErrSignerUnavailable   = signer.ErrSignerUnavailable
	ErrClientUnavailable   = errors.New("network client not configured")
	ErrConnectAborted      = errors.New("connect aborted: wallet was disconnected meanwhile")
)

// NetworkExecutionError carries the errors a node reported for a submitted transaction.
type NetworkExecutionError struct {
	Digest string
	Errors []string
}

func (e *NetworkExecutionError) Error() string {
	return "transaction execution failed: " + strings.Join(e.Errors, ", ")
}

// IsNetworkExecutionError checks if err is a NetworkExecutionError
func IsNetworkExecutionError(err error) bool {
	var execErr *NetworkExecutionError
	return errors.As(err, &execErr)
}
