package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/AlexZinkM/sui-passkey/backup"
	"github.com/AlexZinkM/sui-passkey/internal/credential"
	"github.com/AlexZinkM/sui-passkey/internal/model"
	"github.com/AlexZinkM/sui-passkey/sui"
	"github.com/AlexZinkM/sui-passkey/wallet"

	"go.uber.org/zap"
)

// WalletHandler serves the wallet-standard operations of one wallet
type WalletHandler struct {
	wallet *wallet.Wallet
	store  *credential.Store
	log    *zap.Logger
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(w *wallet.Wallet, store *credential.Store, log *zap.Logger) (*WalletHandler, error) {
	if w == nil || store == nil {
		return nil, errors.New("wallet and credential store are required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WalletHandler{wallet: w, store: store, log: log}, nil
}

// Connect handles POST /wallet/connect
// @Summary      Connect wallet
// @Description  Restores the stored passkey or registers a new one, then returns the account
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.ConnectResponse
// @Failure      403  {object}  model.ErrorResponse
// @Failure      409  {object}  model.ErrorResponse
// @Failure      422  {object}  model.ErrorResponse
// @Router       /wallet/connect [post]
func (h *WalletHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	accounts, err := h.wallet.Connect(r.Context())
	if err != nil {
		h.log.Warn("connect failed", zap.Error(err))
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ConnectResponse{
		Success:  true,
		Message:  "Wallet connected",
		Accounts: accountResponses(accounts, false),
	})
}

// Disconnect handles POST /wallet/disconnect
// @Summary      Disconnect wallet
// @Description  Drops the session; the stored passkey is kept
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.ConnectResponse
// @Router       /wallet/disconnect [post]
func (h *WalletHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	h.wallet.Disconnect()
	writeJSON(w, http.StatusOK, model.ConnectResponse{
		Success:  true,
		Message:  "Wallet disconnected",
		Accounts: []model.AccountResponse{},
	})
}

// Accounts handles GET /wallet/accounts
// @Summary      Get accounts
// @Description  Returns the connected account, with its address QR code, or an empty list
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.AccountsResponse
// @Router       /wallet/accounts [get]
func (h *WalletHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, model.AccountsResponse{
		State:    h.wallet.State().String(),
		Network:  string(h.wallet.Network()),
		Accounts: accountResponses(h.wallet.Accounts(), true),
	})
}

// Features handles GET /wallet/features
// @Summary      Get wallet metadata
// @Description  Returns name, icon, version, chains and the supported features with their versions
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.WalletInfoResponse
// @Router       /wallet/features [get]
func (h *WalletHandler) Features(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	features := h.wallet.Features()
	resp := model.WalletInfoResponse{
		Name:     h.wallet.Name(),
		Icon:     h.wallet.Icon(),
		Version:  h.wallet.Version(),
		Chains:   h.wallet.Chains(),
		Features: make([]model.FeatureResponse, 0, len(features)),
	}
	for _, f := range features {
		resp.Features = append(resp.Features, model.FeatureResponse{Name: f.Name, Version: f.Version})
	}
	writeJSON(w, http.StatusOK, resp)
}

// SignTransaction handles POST /wallet/sign/transaction
// @Summary      Sign transaction
// @Description  Signs built transaction bytes with the passkey
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignTransactionRequest  true  "Transaction bytes (base64) and chain"
// @Success      200      {object}  model.SignedResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallet/sign/transaction [post]
func (h *WalletHandler) SignTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	in, err := decodeSignTransaction(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}

	signed, err := h.wallet.SignTransaction(r.Context(), in)
	if err != nil {
		h.log.Warn("sign transaction failed", zap.Error(err))
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signedResponse(signed))
}

// SignAndExecute handles POST /wallet/sign/execute
// @Summary      Sign and execute transaction
// @Description  Signs the transaction, submits it to the fullnode and waits for its effects
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignTransactionRequest  true  "Transaction bytes (base64) and chain"
// @Success      200      {object}  model.ExecuteResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /wallet/sign/execute [post]
func (h *WalletHandler) SignAndExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	in, err := decodeSignTransaction(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}

	executed, err := h.wallet.SignAndExecuteTransaction(r.Context(), in)
	if err != nil {
		h.log.Warn("sign and execute failed", zap.Error(err))
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ExecuteResponse{
		Digest:    executed.Digest,
		Bytes:     executed.Bytes,
		Signature: executed.Signature,
		Effects:   executed.Effects,
	})
}

// SignMessage handles POST /wallet/sign/message
// @Summary      Sign personal message
// @Description  Signs a personal message with the passkey
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignMessageRequest  true  "Message (base64)"
// @Success      200      {object}  model.SignedResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallet/sign/message [post]
func (h *WalletHandler) SignMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SignMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	message, err := base64.StdEncoding.DecodeString(req.Message)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("message must be base64: %w", err))
		return
	}

	signed, err := h.wallet.SignPersonalMessage(r.Context(), message)
	if err != nil {
		h.log.Warn("sign personal message failed", zap.Error(err))
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signedResponse(signed))
}

// Credential handles GET and DELETE /wallet/credential
// @Summary      Get or reset the stored credential
// @Description  GET returns the stored passkey descriptor. DELETE disconnects and clears the WHOLE storage scope, not only the credential.
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.CredentialResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /wallet/credential [get]
// @Router       /wallet/credential [delete]
func (h *WalletHandler) Credential(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getCredential(w)
	case http.MethodDelete:
		if err := h.wallet.Reset(); err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.ConnectResponse{
			Success:  true,
			Message:  "Storage scope cleared",
			Accounts: []model.AccountResponse{},
		})
	default:
		http.Error(w, "Method not allowed. Should be GET or DELETE", http.StatusMethodNotAllowed)
	}
}

func (h *WalletHandler) getCredential(w http.ResponseWriter) {
	cred, err := h.store.Get()
	if err != nil {
		writeFailure(w, err)
		return
	}
	if cred == nil {
		writeError(w, http.StatusNotFound, CodeNoStoredCredential, errors.New("no credential stored"))
		return
	}
	publicKey, err := credential.PublicKey(cred)
	if err != nil {
		writeFailure(w, err)
		return
	}
	address, err := sui.PasskeyAddress(publicKey)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.CredentialResponse{Credential: cred, Address: address})
}

// Events handles GET /wallet/events
// @Summary      Stream change events
// @Description  Server-sent events carrying the account list on every connect and disconnect
// @Tags         wallet
// @Produce      text/event-stream
// @Success      200
// @Router       /wallet/events [get]
func (h *WalletHandler) Events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := make(chan wallet.ChangeEvent, 8)
	unsubscribe := h.wallet.On(wallet.EventChange, func(ev wallet.ChangeEvent) {
		select {
		case events <- ev:
		default:
			h.log.Warn("dropping change event for slow subscriber")
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			data, err := json.Marshal(map[string]any{"accounts": accountResponses(ev.Accounts, false)})
			if err != nil {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", wallet.EventChange, data)
			flusher.Flush()
		}
	}
}

func decodeSignTransaction(r *http.Request) (wallet.SignTransactionInput, error) {
	var req model.SignTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return wallet.SignTransactionInput{}, err
	}
	tx, err := base64.StdEncoding.DecodeString(req.Transaction)
	if err != nil {
		return wallet.SignTransactionInput{}, fmt.Errorf("transaction must be base64: %w", err)
	}
	if len(tx) == 0 {
		return wallet.SignTransactionInput{}, errors.New("transaction is required")
	}
	return wallet.SignTransactionInput{Transaction: tx, Chain: req.Chain}, nil
}

func signedResponse(s *sui.SignedMessage) model.SignedResponse {
	return model.SignedResponse{Bytes: s.Bytes, Signature: s.Signature}
}

func accountResponses(accounts []wallet.Account, withQR bool) []model.AccountResponse {
	out := make([]model.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp := model.AccountResponse{
			Address:   a.Address,
			PublicKey: base64.StdEncoding.EncodeToString(a.PublicKey),
			Chains:    a.Chains,
			Features:  a.Features,
		}
		if withQR {
			// A failed QR only drops the picture.
			resp.QR, _ = backup.GenerateQRCode(a.Address)
		}
		out = append(out, resp)
	}
	return out
}
