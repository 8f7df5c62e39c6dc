package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/AlexZinkM/sui-passkey/internal/bridge"
	"github.com/AlexZinkM/sui-passkey/internal/ceremony"
	"github.com/AlexZinkM/sui-passkey/wallet"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	for name, tc := range map[string]struct {
		err    error
		status int
		code   string
	}{
		"chain mismatch":  {fmt.Errorf("%w: sui:mainnet", wallet.ErrChainMismatch), http.StatusBadRequest, CodeChainMismatch},
		"connect aborted": {wallet.ErrConnectAborted, http.StatusConflict, CodeConnectAborted},
		"rejected":        {fmt.Errorf("%w: %w", ceremony.ErrCeremonyFailure, &bridge.RejectedError{Reason: "NotAllowedError"}), http.StatusForbidden, CodeCeremonyRejected},
		"ceremony":        {fmt.Errorf("%w: %w", ceremony.ErrCeremonyFailure, bridge.ErrTimeout), http.StatusForbidden, CodeCeremonyFailure},
		"busy":            {fmt.Errorf("%w: %w", ceremony.ErrCeremonyFailure, bridge.ErrBusy), http.StatusConflict, CodeCeremonyBusy},
		"node error":      {fmt.Errorf("failed to execute transaction: %w", &jsonrpc.RPCError{Code: -32602, Message: "invalid params"}), http.StatusBadGateway, CodeNodeError},
		"execution":       {&wallet.NetworkExecutionError{Errors: []string{"InsufficientGas"}}, http.StatusBadGateway, CodeNetworkExecution},
		"deadline":        {fmt.Errorf("failed to wait: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, CodeTimeout},
		"other":           {errors.New("disk full"), http.StatusInternalServerError, CodeInternal},
	} {
		t.Run(name, func(t *testing.T) {
			status, code := classify(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, code)
		})
	}
}
