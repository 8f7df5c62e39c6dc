package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AlexZinkM/sui-passkey/internal/model"

	"golang.org/x/crypto/scrypt"
)

// BackupExt is the required extension of encrypted credential backups.
const BackupExt = ".spk"

// scrypt parameters for credential backups.
// N=2^18 (~256MB RAM, 0.5-2s) still runs on phones while keeping brute force expensive.
type scryptParams struct {
	N, R, P, KeyLen int
}

var kdf = scryptParams{N: 1 << 18, R: 8, P: 1, KeyLen: 32}

// SetScryptCost overrides the scrypt N parameter and returns a function
// restoring the previous value. Tests use it to keep backups cheap.
func SetScryptCost(n int) (restore func()) {
	prev := kdf
	kdf.N = n
	return func() { kdf = prev }
}

const (
	saltLen  = 32
	nonceLen = 12
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// EncryptBackup encrypts the credential descriptor and writes it to a .spk file.
// passphrase must be []byte for security (caller should zero it after use)
func EncryptBackup(filePath, network, address, qrCode string, cred *model.Credential, passphrase []byte) error {
	if !strings.HasSuffix(filePath, BackupExt) {
		return fmt.Errorf("file must have %s extension", BackupExt)
	}
	if cred == nil {
		return errors.New("credential is required")
	}
	if len(passphrase) == 0 {
		return errors.New("passphrase cannot be empty")
	}

	// Refuse to overwrite a non-empty file
	if fileInfo, err := os.Stat(filePath); err == nil && fileInfo.Size() > 0 {
		return fmt.Errorf("file is not empty: %w", os.ErrExist)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(passphrase, salt)
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(model.BackupData{
		Credential: *cred,
		CreatedAt:  time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}
	defer clear(plaintext)

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	backup := model.BackupFile{
		Network:    network,
		Address:    address,
		QR:         qrCode,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}

	fileData, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup file: %w", err)
	}

	// UTF-8 BOM for proper display in Windows
	if err := os.WriteFile(filePath, append(append([]byte{}, utf8BOM...), fileData...), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func newGCM(passphrase, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(passphrase, salt, kdf.N, kdf.R, kdf.P, kdf.KeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
