package model

// RelyingParty identifies the origin that registered the credential.
type RelyingParty struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// User holds the labels the credential was registered with.
// They are replayed as-is and never used for authorization.
type User struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Credential is the single persisted passkey descriptor.
type Credential struct {
	RelyingParty RelyingParty `json:"relyingParty"`
	User         User         `json:"user"`
	CredentialID string       `json:"credentialId"` // base64url, as reported by the authenticator
	PublicKey    string       `json:"publicKey"`    // base64 of the 33-byte compressed P-256 key
}
