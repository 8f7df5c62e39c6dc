package handler_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AlexZinkM/sui-passkey/internal/bridge"
	"github.com/AlexZinkM/sui-passkey/internal/ceremony"
	"github.com/AlexZinkM/sui-passkey/internal/credential"
	"github.com/AlexZinkM/sui-passkey/internal/handler"
	"github.com/AlexZinkM/sui-passkey/internal/model"
	"github.com/AlexZinkM/sui-passkey/internal/storage"
	"github.com/AlexZinkM/sui-passkey/internal/testutil"
	"github.com/AlexZinkM/sui-passkey/sui"
	"github.com/AlexZinkM/sui-passkey/wallet"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	auth    *testutil.Authenticator
	store   *credential.Store
	wallet  *wallet.Wallet
	handler *handler.WalletHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	auth := testutil.NewAuthenticator()
	store := credential.NewStore(storage.NewMemory(), nil)
	provider := ceremony.NewProvider(auth, store, model.RelyingParty{Name: "localhost", ID: "localhost"})
	w, err := wallet.New(sui.Testnet, provider, store)
	require.NoError(t, err)
	h, err := handler.NewWalletHandler(w, store, nil)
	require.NoError(t, err)
	return &env{auth: auth, store: store, wallet: w, handler: h}
}

func do(t *testing.T, fn http.HandlerFunc, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	fn(rec, httptest.NewRequest(method, target, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestConnectAndAccounts(t *testing.T) {
	e := newEnv(t)

	rec := do(t, e.handler.Connect, http.MethodPost, "/wallet/connect", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	connected := decode[model.ConnectResponse](t, rec)
	assert.True(t, connected.Success)
	require.Len(t, connected.Accounts, 1)
	assert.Equal(t, []string{"sui:testnet"}, connected.Accounts[0].Chains)
	assert.Empty(t, connected.Accounts[0].QR)

	rec = do(t, e.handler.Accounts, http.MethodGet, "/wallet/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	accounts := decode[model.AccountsResponse](t, rec)
	assert.Equal(t, "connected", accounts.State)
	assert.Equal(t, "testnet", accounts.Network)
	require.Len(t, accounts.Accounts, 1)
	assert.Equal(t, connected.Accounts[0].Address, accounts.Accounts[0].Address)
	assert.NotEmpty(t, accounts.Accounts[0].QR)

	rec = do(t, e.handler.Disconnect, http.MethodPost, "/wallet/disconnect", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, e.handler.Accounts, http.MethodGet, "/wallet/accounts", nil)
	accounts = decode[model.AccountsResponse](t, rec)
	assert.Equal(t, "disconnected", accounts.State)
	assert.Empty(t, accounts.Accounts)
}

func TestMethodNotAllowed(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, e.handler.Connect, http.MethodGet, "/wallet/connect", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, e.handler.Features, http.MethodPost, "/wallet/features", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, e.handler.Credential, http.MethodPut, "/wallet/credential", nil).Code)
}

func TestFeatures(t *testing.T) {
	e := newEnv(t)
	rec := do(t, e.handler.Features, http.MethodGet, "/wallet/features", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[model.WalletInfoResponse](t, rec)
	assert.Equal(t, wallet.Name, info.Name)
	assert.Equal(t, wallet.Version, info.Version)
	assert.Equal(t, sui.Chains(), info.Chains)
	assert.Contains(t, info.Features, model.FeatureResponse{Name: wallet.FeatureSignTransaction, Version: "2.0.0"})
}

func TestSignTransaction(t *testing.T) {
	e := newEnv(t)
	tx := []byte{0, 1, 2, 3}
	req := model.SignTransactionRequest{Transaction: base64.StdEncoding.EncodeToString(tx), Chain: "sui:testnet"}

	rec := do(t, e.handler.SignTransaction, http.MethodPost, "/wallet/sign/transaction", req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, handler.CodeSignerUnavailable, decode[model.ErrorResponse](t, rec).Code)

	_, err := e.wallet.Connect(context.Background())
	require.NoError(t, err)

	rec = do(t, e.handler.SignTransaction, http.MethodPost, "/wallet/sign/transaction", req)
	require.Equal(t, http.StatusOK, rec.Code)
	signed := decode[model.SignedResponse](t, rec)
	assert.Equal(t, req.Transaction, signed.Bytes)
	addr, err := sui.VerifyPasskeySignature(sui.ScopeTransactionData, tx, signed.Signature)
	require.NoError(t, err)
	assert.Equal(t, e.wallet.Accounts()[0].Address, addr)

	req.Chain = "sui:mainnet"
	rec = do(t, e.handler.SignTransaction, http.MethodPost, "/wallet/sign/transaction", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, handler.CodeChainMismatch, decode[model.ErrorResponse](t, rec).Code)
}

func TestSignTransactionBadInput(t *testing.T) {
	e := newEnv(t)
	rec := do(t, e.handler.SignTransaction, http.MethodPost, "/wallet/sign/transaction",
		model.SignTransactionRequest{Transaction: "%%%", Chain: "sui:testnet"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, handler.CodeBadRequest, decode[model.ErrorResponse](t, rec).Code)

	rec = do(t, e.handler.SignTransaction, http.MethodPost, "/wallet/sign/transaction",
		model.SignTransactionRequest{Chain: "sui:testnet"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignAndExecuteWithoutClient(t *testing.T) {
	e := newEnv(t)
	_, err := e.wallet.Connect(context.Background())
	require.NoError(t, err)

	rec := do(t, e.handler.SignAndExecute, http.MethodPost, "/wallet/sign/execute",
		model.SignTransactionRequest{Transaction: base64.StdEncoding.EncodeToString([]byte{9}), Chain: "sui:testnet"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, handler.CodeClientUnavailable, decode[model.ErrorResponse](t, rec).Code)
}

func TestSignMessage(t *testing.T) {
	e := newEnv(t)
	_, err := e.wallet.Connect(context.Background())
	require.NoError(t, err)

	msg := []byte("hello sui")
	rec := do(t, e.handler.SignMessage, http.MethodPost, "/wallet/sign/message",
		model.SignMessageRequest{Message: base64.StdEncoding.EncodeToString(msg)})
	require.Equal(t, http.StatusOK, rec.Code)
	signed := decode[model.SignedResponse](t, rec)
	_, err = sui.VerifyPasskeySignature(sui.ScopePersonalMessage, msg, signed.Signature)
	assert.NoError(t, err)
}

func TestCredentialGetAndDelete(t *testing.T) {
	e := newEnv(t)

	rec := do(t, e.handler.Credential, http.MethodGet, "/wallet/credential", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handler.CodeNoStoredCredential, decode[model.ErrorResponse](t, rec).Code)

	accounts, err := e.wallet.Connect(context.Background())
	require.NoError(t, err)

	rec = do(t, e.handler.Credential, http.MethodGet, "/wallet/credential", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cred := decode[model.CredentialResponse](t, rec)
	assert.Equal(t, accounts[0].Address, cred.Address)
	require.NotNil(t, cred.Credential)

	rec = do(t, e.handler.Credential, http.MethodDelete, "/wallet/credential", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, wallet.Disconnected, e.wallet.State())
	stored, err := e.store.Get()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestConnectCeremonyFailure(t *testing.T) {
	e := newEnv(t)
	e.auth.Err = testutil.ErrNotAllowed

	rec := do(t, e.handler.Connect, http.MethodPost, "/wallet/connect", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, handler.CodeCeremonyFailure, decode[model.ErrorResponse](t, rec).Code)
	assert.Equal(t, wallet.Disconnected, e.wallet.State())
}

func TestCeremonyHandler(t *testing.T) {
	b := bridge.New(nil)
	h, err := handler.NewCeremonyHandler(b)
	require.NoError(t, err)

	rec := do(t, h.Pending, http.MethodGet, "/ceremony/pending", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	done := make(chan error, 1)
	go func() {
		_, err := b.Get(context.Background(), &protocol.PublicKeyCredentialRequestOptions{Challenge: []byte{1}})
		done <- err
	}()

	var pending bridge.Ceremony
	require.Eventually(t, func() bool {
		rec := do(t, h.Pending, http.MethodGet, "/ceremony/pending", nil)
		if rec.Code != http.StatusOK {
			return false
		}
		pending = decode[bridge.Ceremony](t, rec)
		return true
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, bridge.KindGet, pending.Kind)

	rec = do(t, h.Reject, http.MethodPost, "/ceremony/reject", model.RejectCeremonyRequest{ID: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handler.CodeUnknownCeremony, decode[model.ErrorResponse](t, rec).Code)

	rec = do(t, h.Reject, http.MethodPost, "/ceremony/reject", model.RejectCeremonyRequest{ID: pending.ID, Reason: "NotAllowedError"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bridge.IsRejected(<-done))

	rec = do(t, h.Page, http.MethodGet, "/ceremony/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}
