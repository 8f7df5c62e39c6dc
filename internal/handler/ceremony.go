package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/sui-passkey/internal/bridge"
	"github.com/AlexZinkM/sui-passkey/internal/model"
)

// CeremonyHandler connects the browser page to the ceremony bridge
type CeremonyHandler struct {
	bridge *bridge.Bridge
}

// NewCeremonyHandler creates a new CeremonyHandler
func NewCeremonyHandler(b *bridge.Bridge) (*CeremonyHandler, error) {
	if b == nil {
		return nil, errors.New("ceremony bridge is required")
	}
	return &CeremonyHandler{bridge: b}, nil
}

// Page handles GET /ceremony/
func (h *CeremonyHandler) Page(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(bridge.Page)
}

// Pending handles GET /ceremony/pending
// @Summary      Get pending ceremony
// @Description  Returns the ceremony waiting for the browser, or 204 when there is none
// @Tags         ceremony
// @Produce      json
// @Success      200  {object}  bridge.Ceremony
// @Success      204
// @Router       /ceremony/pending [get]
func (h *CeremonyHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	c, ok := h.bridge.Pending()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Resolve handles POST /ceremony/resolve
// @Summary      Resolve ceremony
// @Description  Hands the credential returned by navigator.credentials to the waiting operation
// @Tags         ceremony
// @Accept       json
// @Produce      json
// @Param        request  body      model.ResolveCeremonyRequest  true  "Ceremony id and PublicKeyCredential JSON"
// @Success      200      {object}  model.ConnectResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /ceremony/resolve [post]
func (h *CeremonyHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ResolveCeremonyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	if err := h.bridge.Resolve(req.ID, req.Credential); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ConnectResponse{Success: true, Message: "Ceremony resolved"})
}

// Reject handles POST /ceremony/reject
// @Summary      Reject ceremony
// @Description  Reports a failed or cancelled ceremony to the waiting operation
// @Tags         ceremony
// @Accept       json
// @Produce      json
// @Param        request  body      model.RejectCeremonyRequest  true  "Ceremony id and reason"
// @Success      200      {object}  model.ConnectResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /ceremony/reject [post]
func (h *CeremonyHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.RejectCeremonyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	if err := h.bridge.Reject(req.ID, req.Reason); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ConnectResponse{Success: true, Message: "Ceremony rejected"})
}
