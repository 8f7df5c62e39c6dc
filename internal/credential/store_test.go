package credential

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/AlexZinkM/sui-passkey/internal/model"
	"github.com/AlexZinkM/sui-passkey/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCredential(t *testing.T) *model.Credential {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	compressed := elliptic.MarshalCompressed(elliptic.P256(), key.PublicKey.X, key.PublicKey.Y)
	return &model.Credential{
		RelyingParty: model.RelyingParty{Name: "localhost", ID: "localhost"},
		User:         model.User{Name: "4Xb1", DisplayName: "Sui Passkey"},
		CredentialID: "AQIDBA-_",
		PublicKey:    base64.StdEncoding.EncodeToString(compressed),
	}
}

func TestStorePutGet(t *testing.T) {
	store := NewStore(storage.NewMemory(), nil)

	got, err := store.Get()
	require.NoError(t, err)
	assert.Nil(t, got)

	cred := newCredential(t)
	require.NoError(t, store.Put(cred))

	got, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, cred, got)

	key, err := PublicKey(got)
	require.NoError(t, err)
	assert.Len(t, key, 33)
}

func TestStorePersistedLayout(t *testing.T) {
	scope := storage.NewMemory()
	store := NewStore(scope, nil)
	require.NoError(t, store.Put(newCredential(t)))

	raw, ok, err := scope.Get(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	for _, field := range []string{`"relyingParty":{"name":`, `"user":{"name":`, `"displayName":`, `"credentialId":`, `"publicKey":`} {
		assert.Contains(t, raw, field)
	}
}

func TestStoreResetWipesWholeScope(t *testing.T) {
	scope := storage.NewMemory()
	require.NoError(t, scope.Set("unrelated", "value"))
	store := NewStore(scope, nil)
	require.NoError(t, store.Put(newCredential(t)))

	require.NoError(t, store.Reset())

	got, err := store.Get()
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, scope.Len())
}

func TestStoreRejectsInvalidDescriptors(t *testing.T) {
	store := NewStore(storage.NewMemory(), nil)

	bad := newCredential(t)
	bad.PublicKey = base64.StdEncoding.EncodeToString(make([]byte, 33))
	assert.ErrorIs(t, store.Put(bad), ErrInvalidCredential)

	bad = newCredential(t)
	bad.CredentialID = ""
	assert.ErrorIs(t, store.Put(bad), ErrInvalidCredential)

	assert.ErrorIs(t, store.Put(nil), ErrInvalidCredential)
}

func TestStoreExportImport(t *testing.T) {
	src := NewStore(storage.NewMemory(), nil)
	cred := newCredential(t)
	require.NoError(t, src.Put(cred))

	raw, err := src.Export()
	require.NoError(t, err)

	dst := NewStore(storage.NewMemory(), nil)
	imported, err := dst.Import(raw)
	require.NoError(t, err)
	assert.Equal(t, cred, imported)

	_, err = dst.Import([]byte(`{"unknown":true}`))
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = NewStore(storage.NewMemory(), nil).Export()
	assert.Error(t, err)
}

func TestStoreGetCorrupt(t *testing.T) {
	scope := storage.NewMemory()
	require.NoError(t, scope.Set(StorageKey, "{"))
	_, err := NewStore(scope, nil).Get()
	assert.Error(t, err)
}
