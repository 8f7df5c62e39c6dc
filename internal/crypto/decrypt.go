package crypto

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/sui-passkey/internal/model"
)

// ErrInvalidPassphrase is returned when the backup cannot be opened with the given passphrase.
var ErrInvalidPassphrase = errors.New("invalid passphrase")

// DecryptBackup reads and decrypts a .spk backup file.
// passphrase must be []byte for security (caller should zero it after use)
func DecryptBackup(filePath string, passphrase []byte) (*model.BackupFile, *model.BackupData, error) {
	backup, err := readBackupFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(backup.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(backup.Nonce)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	if len(nonce) != nonceLen {
		return nil, nil, errors.New("invalid nonce length")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(backup.CipherText)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	aesGCM, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, nil, err
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, nil, ErrInvalidPassphrase
	}
	defer clear(plaintext)

	var data model.BackupData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal backup data: %w", err)
	}
	return backup, &data, nil
}

// ReadBackupAddress reads only the address from a .spk file (without decryption)
func ReadBackupAddress(filePath string) (string, error) {
	backup, err := readBackupFile(filePath)
	if err != nil {
		return "", err
	}
	return backup.Address, nil
}

// IsBackup reports whether raw file contents look like an encrypted backup
// rather than a plain credential descriptor.
func IsBackup(raw []byte) bool {
	var header struct {
		CipherText string `json:"cipherText"`
	}
	if err := json.Unmarshal(bytes.TrimPrefix(raw, utf8BOM), &header); err != nil {
		return false
	}
	return header.CipherText != ""
}

func readBackupFile(filePath string) (*model.BackupFile, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("file does not exist")
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if fileInfo.Size() == 0 {
		return nil, errors.New("file is empty")
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Skip UTF-8 BOM if present
	fileData = bytes.TrimPrefix(fileData, utf8BOM)

	var backup model.BackupFile
	if err := json.Unmarshal(fileData, &backup); err != nil {
		return nil, fmt.Errorf("failed to unmarshal backup file: %w", err)
	}
	return &backup, nil
}
