package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/meatupclub/meatup/internal/application"
	"github.com/meatupclub/meatup/internal/config"
	httptransport "github.com/meatupclub/meatup/internal/http"
	"github.com/meatupclub/meatup/internal/identity"
	"github.com/meatupclub/meatup/internal/logging"
	"github.com/meatupclub/meatup/internal/notify"
	"github.com/meatupclub/meatup/internal/persistence/sqlstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stdout, "info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	srv, err := newServer(ctx, cfg, logger, time.Now)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := srv.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("meatup API listening", "addr", server.Addr, "driver", cfg.DBDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// server holds the storage handle and the fully wired HTTP handler.
type server struct {
	store   *sqlstore.Store
	handler http.Handler
}

func (s *server) Close() error {
	return s.store.Close()
}

// newServer opens and migrates storage, provisions the bootstrap admin and
// wires every service behind the router.
func newServer(ctx context.Context, cfg config.Config, logger *slog.Logger, now func() time.Time) (*server, error) {
	store, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	verifier, err := identity.NewVerifier(identity.Config{
		Issuer:       cfg.Identity.Issuer,
		Audience:     cfg.Identity.Audience,
		HMACSecret:   cfg.Identity.HMACSecret,
		PublicKeyPEM: cfg.Identity.PublicKeyPEM,
		Now:          now,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	users := sqlstore.NewUserRepository(store)
	sessions := sqlstore.NewSessionRepository(store)
	events := sqlstore.NewEventRepository(store)
	polls := sqlstore.NewPollRepository(store)
	suggestions := sqlstore.NewSuggestionRepository(store)
	votes := sqlstore.NewVoteRepository(store)
	rsvps := sqlstore.NewRSVPRepository(store)

	mailer := notify.NewLogMailer(cfg.PublicURL+"/accept-invite", logger)

	authService := application.NewAuthService(users, sessions, verifier,
		uuid.NewString, func() string { return randomHex(32) }, now, cfg.SessionTTL, logger)
	memberService := application.NewMemberService(users, mailer, now, logger)
	suggestionService := application.NewSuggestionService(events, polls, suggestions, now, logger)
	voteService := application.NewVoteService(events, polls, suggestions, votes, now, logger)
	eventService := application.NewEventService(events, polls, suggestions, now, logger)
	rsvpService := application.NewRSVPService(events, rsvps, now, logger)

	if cfg.BootstrapAdminEmail != "" {
		admin, created, err := memberService.BootstrapAdmin(ctx, cfg.BootstrapAdminEmail)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			logger.Info("bootstrap admin provisioned", "user_id", admin.ID, "email", admin.Email)
		}
	}

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Sessions:    authService,
		Auth:        httptransport.NewAuthHandler(authService, httptransport.CookieOptions{Secure: cfg.CookieSecure}, logger),
		Members:     httptransport.NewMemberHandler(memberService, logger),
		Events:      httptransport.NewEventHandler(eventService, logger),
		Suggestions: httptransport.NewSuggestionHandler(suggestionService, voteService, logger),
		Polls:       httptransport.NewPollHandler(eventService, logger),
		RSVPs:       httptransport.NewRSVPHandler(rsvpService, logger),
		Health:      httptransport.NewHealthHandler(store, logger),
		Logger:      logger,
		Middleware:  []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	return &server{store: store, handler: handler}, nil
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	// crypto/rand.Read crashes the program instead of returning an error.
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
