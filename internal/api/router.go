package api

import (
	"errors"
	"net/http"

	_ "github.com/AlexZinkM/sui-passkey/docs"
	"github.com/AlexZinkM/sui-passkey/internal/bridge"
	"github.com/AlexZinkM/sui-passkey/internal/credential"
	"github.com/AlexZinkM/sui-passkey/internal/handler"
	"github.com/AlexZinkM/sui-passkey/wallet"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Deps is everything the router wires into its handlers.
type Deps struct {
	Wallet         *wallet.Wallet
	Store          *credential.Store
	Bridge         *bridge.Bridge
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	Log            *zap.Logger
}

// SetupRouter sets up router with handlers
func SetupRouter(d Deps) (http.Handler, error) {
	if d.Bridge == nil {
		return nil, errors.New("ceremony bridge is required")
	}
	walletHandler, err := handler.NewWalletHandler(d.Wallet, d.Store, d.Log)
	if err != nil {
		return nil, err
	}
	ceremonyHandler, err := handler.NewCeremonyHandler(d.Bridge)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Wallet endpoints
	mux.HandleFunc("/wallet/connect", walletHandler.Connect)
	mux.HandleFunc("/wallet/disconnect", walletHandler.Disconnect)
	mux.HandleFunc("/wallet/accounts", walletHandler.Accounts)
	mux.HandleFunc("/wallet/features", walletHandler.Features)
	mux.HandleFunc("/wallet/credential", walletHandler.Credential)
	mux.HandleFunc("/wallet/events", walletHandler.Events)
	mux.HandleFunc("/wallet/sign/transaction", walletHandler.SignTransaction)
	mux.HandleFunc("/wallet/sign/execute", walletHandler.SignAndExecute)
	mux.HandleFunc("/wallet/sign/message", walletHandler.SignMessage)

	// Ceremony bridge, driven by the page served at /ceremony/
	mux.HandleFunc("/ceremony/", ceremonyHandler.Page)
	mux.HandleFunc("/ceremony/pending", ceremonyHandler.Pending)
	mux.HandleFunc("/ceremony/resolve", ceremonyHandler.Resolve)
	mux.HandleFunc("/ceremony/reject", ceremonyHandler.Reject)

	if d.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux), nil
}
