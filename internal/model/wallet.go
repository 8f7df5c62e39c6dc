package model

// BackupFile represents an encrypted credential backup (.spk)
type BackupFile struct {
	Network    string `json:"network"`
	Address    string `json:"address"`
	QR         string `json:"QR"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// BackupData represents decrypted backup payload
type BackupData struct {
	Credential Credential `json:"credential"`
	CreatedAt  string     `json:"createdAt"`
}
