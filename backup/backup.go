// Package backup writes and reads passphrase-encrypted copies of the credential
// descriptor, so a wallet can be moved to another machine without registering
// a new passkey.
package backup

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlexZinkM/sui-passkey/internal/credential"
	"github.com/AlexZinkM/sui-passkey/internal/crypto"
	"github.com/AlexZinkM/sui-passkey/internal/model"
	"github.com/AlexZinkM/sui-passkey/sui"

	"github.com/skip2/go-qrcode"
)

// FileExistsError is an error when file already exists and is not empty
type FileExistsError struct {
	Message string
}

func (e *FileExistsError) Error() string {
	return e.Message
}

// IsFileExistsError checks if error is FileExistsError
func IsFileExistsError(err error) bool {
	_, ok := err.(*FileExistsError)
	return ok
}

// Export encrypts cred into a .spk file and returns the account address it
// belongs to. The file also carries the address and its QR code in clear.
// passphrase must be []byte for security (caller should zero it after use)
func Export(filePath string, network sui.Network, cred *model.Credential, passphrase []byte) (address string, err error) {
	if filepath.Ext(filePath) != crypto.BackupExt {
		return "", fmt.Errorf("file must have %s extension", crypto.BackupExt)
	}
	if fileInfo, err := os.Stat(filePath); err == nil && fileInfo.Size() > 0 {
		return "", &FileExistsError{Message: "file is not empty"}
	}

	publicKey, err := credential.PublicKey(cred)
	if err != nil {
		return "", err
	}
	address, err = sui.PasskeyAddress(publicKey)
	if err != nil {
		return "", err
	}

	qrCode, err := GenerateQRCode(address)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	if err := crypto.EncryptBackup(filePath, string(network), address, qrCode, cred, passphrase); err != nil {
		return "", fmt.Errorf("failed to encrypt backup: %w", err)
	}
	return address, nil
}

// Import decrypts a .spk file and checks that the descriptor still matches the
// address written next to it.
func Import(filePath string, passphrase []byte) (*model.Credential, error) {
	file, data, err := crypto.DecryptBackup(filePath, passphrase)
	if err != nil {
		return nil, err
	}
	cred := data.Credential
	if err := credential.Validate(&cred); err != nil {
		return nil, err
	}
	publicKey, _ := credential.PublicKey(&cred)
	address, err := sui.PasskeyAddress(publicKey)
	if err != nil {
		return nil, err
	}
	if file.Address != "" && file.Address != address {
		return nil, fmt.Errorf("backup address %s does not match credential address %s", file.Address, address)
	}
	return &cred, nil
}

// Rekey re-encrypts a backup under a new passphrase with fresh salt and nonce.
// The original file is replaced only after the new one is fully written.
func Rekey(filePath string, oldPassphrase, newPassphrase []byte) error {
	file, data, err := crypto.DecryptBackup(filePath, oldPassphrase)
	if err != nil {
		return err
	}

	tmpPath := strings.TrimSuffix(filePath, crypto.BackupExt) + ".rekey" + crypto.BackupExt
	_ = os.Remove(tmpPath)
	if err := crypto.EncryptBackup(tmpPath, file.Network, file.Address, file.QR, &data.Credential, newPassphrase); err != nil {
		return fmt.Errorf("failed to re-encrypt backup: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace backup: %w", err)
	}
	return nil
}

// GenerateQRCode generates QR code of address in base64
func GenerateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
