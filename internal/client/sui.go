package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultWaitTimeout  = 60 * time.Second

	digestLen = 32
)

var ErrInvalidDigest = errors.New("invalid transaction digest")

// SuiClient is a client for working with the Sui fullnode JSON-RPC API
type SuiClient struct {
	rpcClient    jsonrpc.RPCClient
	rpcURL       string
	pollInterval time.Duration
	waitTimeout  time.Duration
	log          *zap.Logger
}

type ClientOption func(*SuiClient)

// WithPollInterval sets the pace of finality polling.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *SuiClient) { c.pollInterval = d }
}

// WithWaitTimeout bounds WaitForTransaction.
func WithWaitTimeout(d time.Duration) ClientOption {
	return func(c *SuiClient) { c.waitTimeout = d }
}

func WithLogger(log *zap.Logger) ClientOption {
	return func(c *SuiClient) { c.log = log }
}

// NewSuiClient creates a new Sui client for the given fullnode URL.
func NewSuiClient(rpcURL string, opts ...ClientOption) *SuiClient {
	c := &SuiClient{
		rpcClient:    jsonrpc.NewClient(rpcURL),
		rpcURL:       rpcURL,
		pollInterval: defaultPollInterval,
		waitTimeout:  defaultWaitTimeout,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the fullnode endpoint.
func (c *SuiClient) URL() string {
	return c.rpcURL
}

// RawBytes decodes the number arrays Sui uses for BCS blobs such as rawEffects.
type RawBytes []byte

func (b *RawBytes) UnmarshalJSON(data []byte) error {
	// encoding/json reads []byte as base64, so go through ints.
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return fmt.Errorf("failed to decode byte array: %w", err)
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("failed to decode byte array: value %d out of range", v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// TransactionBlockResponse is the subset of SuiTransactionBlockResponse the
// wallet reads.
type TransactionBlockResponse struct {
	Digest     string   `json:"digest"`
	RawEffects RawBytes `json:"rawEffects,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Checkpoint string   `json:"checkpoint,omitempty"`
}

type responseOptions struct {
	ShowRawEffects bool `json:"showRawEffects"`
}

// ExecuteTransactionBlock submits base64 transaction bytes with their base64
// signatures. Node-side execution errors come back in the response Errors.
func (c *SuiClient) ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string) (*TransactionBlockResponse, error) {
	var out TransactionBlockResponse
	err := c.rpcClient.CallForInto(ctx, &out, "sui_executeTransactionBlock", []interface{}{
		txBytes,
		signatures,
		responseOptions{ShowRawEffects: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute transaction: %w", err)
	}
	if len(out.Errors) == 0 {
		if err := ValidateDigest(out.Digest); err != nil {
			return nil, err
		}
	}
	c.log.Info("transaction submitted", zap.String("digest", out.Digest), zap.Int("errors", len(out.Errors)))
	return &out, nil
}

// GetTransactionBlock fetches a transaction by digest.
func (c *SuiClient) GetTransactionBlock(ctx context.Context, digest string) (*TransactionBlockResponse, error) {
	var out TransactionBlockResponse
	err := c.rpcClient.CallForInto(ctx, &out, "sui_getTransactionBlock", []interface{}{
		digest,
		responseOptions{ShowRawEffects: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", digest, err)
	}
	return &out, nil
}

// WaitForTransaction polls until the node knows the transaction, the client's
// wait timeout elapses or ctx is done.
func (c *SuiClient) WaitForTransaction(ctx context.Context, digest string) (*TransactionBlockResponse, error) {
	if err := ValidateDigest(digest); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(c.pollInterval), 1)
	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			// Wait fails early when the next tick would land past the deadline.
			cause := ctx.Err()
			if cause == nil {
				cause = context.DeadlineExceeded
			}
			if lastErr != nil {
				return nil, fmt.Errorf("failed to wait for transaction %s: %w (last error: %v)", digest, cause, lastErr)
			}
			return nil, fmt.Errorf("failed to wait for transaction %s: %w", digest, cause)
		}

		resp, err := c.GetTransactionBlock(ctx, digest)
		if err == nil {
			c.log.Info("transaction finalized", zap.String("digest", digest), zap.Int("attempts", attempt))
			return resp, nil
		}
		lastErr = err
		c.log.Debug("transaction not available yet", zap.String("digest", digest), zap.Int("attempt", attempt), zap.Error(err))
	}
}

// ValidateDigest checks a base58 transaction digest.
func ValidateDigest(digest string) error {
	raw, err := base58.Decode(digest)
	if err != nil || len(raw) != digestLen {
		return fmt.Errorf("%w: %q", ErrInvalidDigest, digest)
	}
	return nil
}

// IsRPCError reports whether err carries a JSON-RPC error object from the node.
func IsRPCError(err error) bool {
	var rpcErr *jsonrpc.RPCError
	return errors.As(err, &rpcErr)
}
