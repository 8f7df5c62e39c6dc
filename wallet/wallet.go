// Package wallet is the wallet-standard adapter of a passkey-backed Sui account.
// A Wallet is Disconnected until Connect either restores the stored credential
// or registers a new one, and Connected while it holds exactly one account.
package wallet

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/AlexZinkM/sui-passkey/internal/ceremony"
	"github.com/AlexZinkM/sui-passkey/internal/client"
	"github.com/AlexZinkM/sui-passkey/internal/common"
	"github.com/AlexZinkM/sui-passkey/internal/credential"
	"github.com/AlexZinkM/sui-passkey/internal/crypto"
	"github.com/AlexZinkM/sui-passkey/internal/metrics"
	"github.com/AlexZinkM/sui-passkey/internal/model"
	"github.com/AlexZinkM/sui-passkey/internal/signer"
	"github.com/AlexZinkM/sui-passkey/internal/spki"
	"github.com/AlexZinkM/sui-passkey/sui"

	"github.com/go-webauthn/webauthn/protocol"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	Name    = "Sui Passkey"
	Version = "1.0.0"
	Icon    = "data:image/svg+xml;base64,PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciIHZpZXdCb3g9IjAgMCAzMDAgMzAwIj48cmVjdCB3aWR0aD0iMzAwIiBoZWlnaHQ9IjMwMCIgcng9IjYwIiBmaWxsPSIjNGRhMmZmIi8+PGNpcmNsZSBjeD0iMTIwIiBjeT0iMTMwIiByPSI0NSIgZmlsbD0ibm9uZSIgc3Ryb2tlPSIjZmZmIiBzdHJva2Utd2lkdGg9IjI0Ii8+PHBhdGggZD0iTTE2MCAxNTBoOTB2MzBoLTIwdjMwaC0zMHYtMzBoLTQweiIgZmlsbD0iI2ZmZiIvPjwvc3ZnPg=="
)

// Provider runs authenticator ceremonies.
type Provider interface {
	Register(ctx context.Context, identityLabel string) (*ceremony.Registration, error)
	Authenticate(ctx context.Context, challenge []byte) (*protocol.CredentialAssertionResponse, error)
}

// CredentialStore holds the one descriptor the wallet is bound to.
type CredentialStore interface {
	Get() (*model.Credential, error)
	Put(cred *model.Credential) error
	Reset() error
}

// Executor submits signed transactions and waits for their effects.
type Executor interface {
	ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string) (*client.TransactionBlockResponse, error)
	WaitForTransaction(ctx context.Context, digest string) (*client.TransactionBlockResponse, error)
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Wallet is safe for concurrent use.
type Wallet struct {
	network  sui.Network
	provider Provider
	store    CredentialStore
	executor Executor
	label    string
	log      *zap.Logger
	metrics  *metrics.Metrics

	connecting   singleflight.Group
	flightMu     sync.Mutex
	waiters      int
	flightCancel context.CancelFunc

	// generation changes on every Disconnect and Reset; a connect attempt
	// commits only if it is unchanged since the attempt started.
	mu         sync.RWMutex
	generation uint64
	accounts   []Account
	signer     *signer.Signer

	listenersMu sync.Mutex
	listeners   []listenerEntry
	nextID      uint64
}

type Option func(*Wallet)

// WithExecutor sets the network client used by SignAndExecuteTransaction.
func WithExecutor(e Executor) Option {
	return func(w *Wallet) { w.executor = e }
}

// WithIdentityLabel sets the display name given to a newly registered passkey.
func WithIdentityLabel(label string) Option {
	return func(w *Wallet) { w.label = label }
}

func WithLogger(log *zap.Logger) Option {
	return func(w *Wallet) { w.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Wallet) { w.metrics = m }
}

// New creates a disconnected wallet bound to network. provider may be nil, in
// which case Connect fails with ErrProviderUnavailable.
func New(network sui.Network, provider Provider, store CredentialStore, opts ...Option) (*Wallet, error) {
	if _, err := sui.ParseNetwork(string(network)); err != nil {
		return nil, err
	}
	w := &Wallet{
		network:  network,
		provider: provider,
		store:    store,
		label:    Name,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(zap.String("network", string(network)))
	return w, nil
}

func (w *Wallet) Name() string    { return Name }
func (w *Wallet) Icon() string    { return Icon }
func (w *Wallet) Version() string { return Version }

// Chains lists every Sui chain; signing is still restricted to Network.
func (w *Wallet) Chains() []string { return sui.Chains() }

func (w *Wallet) Network() sui.Network { return w.network }

// Features lists the supported capabilities only.
func (w *Wallet) Features() []Feature {
	return append([]Feature(nil), features...)
}

func (w *Wallet) Accounts() []Account {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return cloneAccounts(w.accounts)
}

func (w *Wallet) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.signer != nil {
		return Connected
	}
	return Disconnected
}

// Connect restores the stored credential, or registers a new one when none is
// stored, and returns the single account. It is a no-op while connected.
// Concurrent calls share one in-flight attempt. Each caller stops waiting when
// its own ctx ends; the attempt itself is cancelled once nobody waits for it.
func (w *Wallet) Connect(ctx context.Context) ([]Account, error) {
	if accounts := w.Accounts(); len(accounts) > 0 {
		return accounts, nil
	}

	w.flightMu.Lock()
	w.waiters++
	w.flightMu.Unlock()

	ch := w.connecting.DoChan("connect", func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ceremony.Timeout)
		w.takeoff(cancel)
		defer w.land(cancel)
		return w.connect(flightCtx)
	})

	select {
	case res := <-ch:
		w.leave()
		return w.connected(res)
	case <-ctx.Done():
		if w.leave() {
			// The attempt was cancelled; wait for it to unwind so nothing
			// is committed after this call returns.
			if res := <-ch; res.Err == nil {
				return w.connected(res)
			}
		}
		err := fmt.Errorf("%w: %w", ceremony.ErrCeremonyFailure, ctx.Err())
		w.metrics.ObserveOperation("connect", err)
		return nil, err
	}
}

func (w *Wallet) connected(res singleflight.Result) ([]Account, error) {
	w.metrics.ObserveOperation("connect", res.Err)
	if res.Err != nil {
		return nil, res.Err
	}
	return cloneAccounts(res.Val.([]Account)), nil
}

// takeoff records the cancel func of the running attempt. An attempt whose
// callers all left before it started is cancelled right away.
func (w *Wallet) takeoff(cancel context.CancelFunc) {
	w.flightMu.Lock()
	defer w.flightMu.Unlock()
	w.flightCancel = cancel
	if w.waiters == 0 {
		cancel()
	}
}

func (w *Wallet) land(cancel context.CancelFunc) {
	w.flightMu.Lock()
	w.flightCancel = nil
	w.flightMu.Unlock()
	cancel()
}

// leave reports whether the caller was the last one waiting, in which case
// the running attempt is cancelled.
func (w *Wallet) leave() bool {
	w.flightMu.Lock()
	defer w.flightMu.Unlock()
	w.waiters--
	if w.waiters > 0 {
		return false
	}
	if w.flightCancel != nil {
		w.flightCancel()
	}
	return true
}

func (w *Wallet) connect(ctx context.Context) ([]Account, error) {
	w.mu.RLock()
	gen := w.generation
	accounts := cloneAccounts(w.accounts)
	w.mu.RUnlock()
	if len(accounts) > 0 {
		return accounts, nil
	}
	if w.provider == nil {
		return nil, ErrProviderUnavailable
	}

	stored, err := w.store.Get()
	if err != nil {
		return nil, err
	}

	var s *signer.Signer
	if stored != nil {
		publicKey, err := credential.PublicKey(stored)
		if err != nil {
			return nil, err
		}
		if s, err = signer.New(publicKey, w.provider, w.log); err != nil {
			return nil, err
		}
		w.log.Info("restored passkey credential", zap.String("address", common.ShortAddress(s.Address())))
	} else {
		if s, err = w.register(ctx, gen); err != nil {
			return nil, err
		}
	}

	account := Account{
		Address:   s.Address(),
		PublicKey: s.PublicKey(),
		Chains:    []string{w.network.Chain()},
		Features:  append([]string(nil), accountFeatures...),
	}
	accounts = []Account{account}

	w.mu.Lock()
	if err := w.checkSession(ctx, gen); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.signer = s
	w.accounts = accounts
	w.mu.Unlock()

	w.metrics.SetConnected(true)
	w.log.Info("wallet connected", zap.String("address", common.ShortAddress(account.Address)))
	w.emit(ChangeEvent{Accounts: cloneAccounts(accounts)})
	return accounts, nil
}

// checkSession must be called with w.mu held.
func (w *Wallet) checkSession(ctx context.Context, gen uint64) error {
	if w.generation != gen {
		return ErrConnectAborted
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ceremony.ErrCeremonyFailure, err)
	}
	return nil
}

// register runs the registration ceremony and commits the descriptor only once
// every step has succeeded.
func (w *Wallet) register(ctx context.Context, gen uint64) (*signer.Signer, error) {
	reg, err := w.provider.Register(ctx, w.label)
	if err != nil {
		return nil, err
	}
	point, err := spki.Decode(reg.PublicKeyDER())
	if err != nil {
		return nil, err
	}
	publicKey, err := crypto.CompressPoint(point)
	if err != nil {
		return nil, err
	}
	s, err := signer.New(publicKey, w.provider, w.log)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	err = w.checkSession(ctx, gen)
	if err == nil {
		err = w.store.Put(&model.Credential{
			RelyingParty: reg.RelyingParty,
			User:         reg.User,
			CredentialID: reg.CredentialID(),
			PublicKey:    base64.StdEncoding.EncodeToString(publicKey),
		})
		if err != nil {
			err = fmt.Errorf("failed to store credential: %w", err)
		}
	}
	w.mu.Unlock()
	if err != nil {
		return nil, err
	}
	w.log.Info("registered passkey credential", zap.String("address", common.ShortAddress(s.Address())))
	return s, nil
}

// Disconnect drops the session. The stored credential is kept. A connect
// attempt still in flight will not commit.
func (w *Wallet) Disconnect() {
	w.mu.Lock()
	w.drop()
	w.mu.Unlock()

	w.metrics.ObserveOperation("disconnect", nil)
	w.dropped("wallet disconnected")
}

// Reset disconnects and wipes the storage scope of the credential store. The
// whole scope is cleared, not only the credential.
func (w *Wallet) Reset() error {
	w.mu.Lock()
	w.drop()
	err := w.store.Reset()
	w.mu.Unlock()

	w.metrics.ObserveOperation("reset", err)
	w.dropped("wallet reset")
	return err
}

// drop must be called with w.mu held.
func (w *Wallet) drop() {
	w.generation++
	w.signer = nil
	w.accounts = nil
}

func (w *Wallet) dropped(msg string) {
	w.metrics.SetConnected(false)
	w.log.Info(msg)
	w.emit(ChangeEvent{})
}

// On registers listener for event and returns a function removing it. Only
// EventChange is emitted; other events never fire.
func (w *Wallet) On(event string, listener Listener) func() {
	if event != EventChange || listener == nil {
		return func() {}
	}
	w.listenersMu.Lock()
	w.nextID++
	id := w.nextID
	w.listeners = append(w.listeners, listenerEntry{id: id, fn: listener})
	w.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { w.off(id) })
	}
}

func (w *Wallet) off(id uint64) {
	w.listenersMu.Lock()
	defer w.listenersMu.Unlock()
	for i, l := range w.listeners {
		if l.id == id {
			w.listeners = append(w.listeners[:i:i], w.listeners[i+1:]...)
			return
		}
	}
}

// emit calls listeners in registration order, outside every wallet lock.
func (w *Wallet) emit(ev ChangeEvent) {
	w.listenersMu.Lock()
	listeners := append([]listenerEntry(nil), w.listeners...)
	w.listenersMu.Unlock()
	for _, l := range listeners {
		l.fn(ev)
	}
}

// SignTransaction signs in.Transaction, which must target the wallet's network.
func (w *Wallet) SignTransaction(ctx context.Context, in SignTransactionInput) (*SignedTransaction, error) {
	signed, err := w.signTransaction(ctx, in)
	w.metrics.ObserveOperation("sign_transaction", err)
	return signed, err
}

func (w *Wallet) signTransaction(ctx context.Context, in SignTransactionInput) (*SignedTransaction, error) {
	if err := w.checkChain(in.Chain); err != nil {
		return nil, err
	}
	return w.currentSigner().SignTransaction(ctx, in.Transaction)
}

// SignAndExecuteTransaction signs in.Transaction, submits it and waits for the
// node to report its effects. Node-side errors come back as *NetworkExecutionError.
func (w *Wallet) SignAndExecuteTransaction(ctx context.Context, in SignTransactionInput) (*ExecutedTransaction, error) {
	executed, err := w.signAndExecute(ctx, in)
	w.metrics.ObserveOperation("sign_and_execute_transaction", err)
	return executed, err
}

func (w *Wallet) signAndExecute(ctx context.Context, in SignTransactionInput) (*ExecutedTransaction, error) {
	signed, err := w.signTransaction(ctx, in)
	if err != nil {
		return nil, err
	}
	if w.executor == nil {
		return nil, ErrClientUnavailable
	}

	resp, err := w.executor.ExecuteTransactionBlock(ctx, signed.Bytes, []string{signed.Signature})
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, &NetworkExecutionError{Digest: resp.Digest, Errors: resp.Errors}
	}

	final, err := w.executor.WaitForTransaction(ctx, resp.Digest)
	if err != nil {
		return nil, err
	}

	var effects string
	if len(final.RawEffects) > 0 {
		effects = base64.StdEncoding.EncodeToString(final.RawEffects)
	}
	w.log.Info("transaction executed", zap.String("digest", resp.Digest))
	return &ExecutedTransaction{
		Digest:    resp.Digest,
		Bytes:     signed.Bytes,
		Signature: signed.Signature,
		Effects:   effects,
	}, nil
}

// SignPersonalMessage signs message under the personal message intent.
func (w *Wallet) SignPersonalMessage(ctx context.Context, message []byte) (*SignedPersonalMessage, error) {
	signed, err := w.currentSigner().SignPersonalMessage(ctx, message)
	w.metrics.ObserveOperation("sign_personal_message", err)
	return signed, err
}

func (w *Wallet) checkChain(chain string) error {
	if sui.ChainNetwork(chain) != string(w.network) {
		return fmt.Errorf("%w: wallet is on %s, got %q", ErrChainMismatch, w.network.Chain(), chain)
	}
	return nil
}

// currentSigner may return nil, which every signing method reports as
// ErrSignerUnavailable.
func (w *Wallet) currentSigner() *signer.Signer {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.signer
}

func cloneAccounts(in []Account) []Account {
	if len(in) == 0 {
		return nil
	}
	out := make([]Account, len(in))
	for i, a := range in {
		out[i] = Account{
			Address:   a.Address,
			PublicKey: append([]byte(nil), a.PublicKey...),
			Chains:    append([]string(nil), a.Chains...),
			Features:  append([]string(nil), a.Features...),
		}
	}
	return out
}
