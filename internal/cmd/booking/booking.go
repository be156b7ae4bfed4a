// Package booking wires the booking service command: config, stores, HTTP
// surface, and graceful shutdown.
package booking

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	platformcmd "github.com/tableside/tableside/internal/platform/cmd"
	"github.com/tableside/tableside/internal/services/booking/api/httpapi"
	"github.com/tableside/tableside/internal/services/booking/identity"
	"github.com/tableside/tableside/internal/services/booking/policy"
	"github.com/tableside/tableside/internal/services/booking/service"
	"github.com/tableside/tableside/internal/services/booking/storage/memory"
)

const shutdownTimeout = 5 * time.Second

// Config holds the booking command configuration.
type Config struct {
	// HTTPAddr is the listen address for the JSON API.
	HTTPAddr string `env:"TABLESIDE_BOOKING_HTTP_ADDR" envDefault:"localhost:8080"`
	// AuthIssuer enables access token verification when set. The audience
	// and public key are read alongside it.
	AuthIssuer string `env:"TABLESIDE_AUTH_ISSUER"`
}

// ParseConfig loads environment defaults and parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the booking HTTP server and blocks until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	store := memory.New()
	svc := service.New(service.Stores{Users: store, Sessions: store})

	verify, err := buildVerifier(cfg)
	if err != nil {
		return err
	}

	handler := httpapi.NewHandler(svc, verify)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("booking server listening at %s", cfg.HTTPAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown booking server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve booking: %w", err)
	}
}

// buildVerifier loads token verification config when auth is enabled.
// Without an issuer all requests run as guests, which only allows reads.
func buildVerifier(cfg Config) (httpapi.VerifyFunc, error) {
	if cfg.AuthIssuer == "" {
		log.Printf("booking auth is not configured; requests run unauthenticated")
		return nil, nil
	}
	verifierCfg, err := identity.LoadVerifierConfigFromEnv(nil)
	if err != nil {
		return nil, fmt.Errorf("load auth config: %w", err)
	}
	return func(token string) (policy.Caller, error) {
		return identity.VerifyAccessToken(token, verifierCfg)
	}, nil
}
