package model

// AccountResponse is one wallet account as served over HTTP
type AccountResponse struct {
	Address   string   `json:"address"`
	PublicKey string   `json:"publicKey"`
	Chains    []string `json:"chains"`
	Features  []string `json:"features"`
	QR        string   `json:"QR,omitempty"`
}

// ConnectResponse represents response for POST /wallet/connect and /wallet/disconnect
type ConnectResponse struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Accounts []AccountResponse `json:"accounts"`
}

// AccountsResponse represents response for GET /wallet/accounts
type AccountsResponse struct {
	State    string            `json:"state"`
	Network  string            `json:"network"`
	Accounts []AccountResponse `json:"accounts"`
}

// FeatureResponse is one advertised wallet capability
type FeatureResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// WalletInfoResponse represents response for GET /wallet/features
type WalletInfoResponse struct {
	Name     string            `json:"name"`
	Icon     string            `json:"icon"`
	Version  string            `json:"version"`
	Chains   []string          `json:"chains"`
	Features []FeatureResponse `json:"features"`
}

// CredentialResponse represents response for GET /wallet/credential
type CredentialResponse struct {
	Credential *Credential `json:"credential"`
	Address    string      `json:"address"`
}
