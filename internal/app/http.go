package app

import (
	"context"
	"fmt"

	"ws-gateway/internal/config"
	"ws-gateway/internal/gateway"
	"ws-gateway/internal/identity"
	"ws-gateway/internal/router"
	"ws-gateway/internal/transport"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	verifier, err := setupVerifier(cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	// The host is both the event source and the gateway's Transport, so
	// it is built first and gets the router once the chain exists.
	host := transport.NewWebsocketHost()
	gw := gateway.New(verifier, infra.Sessions, host, cfg.SessionTTL)
	host.Attach(router.New(gw))

	// ----------------------------
	// Router
	// ----------------------------

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/ws", func(c *gin.Context) {
		host.Handle(c.Writer, c.Request)
	})

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return engine, infra.cleanup, nil
}

func setupVerifier(cfg config.Config) (identity.Verifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeOIDC:
		return identity.NewOIDCVerifier(
			cfg.OIDCIssuer,
			cfg.OIDCAudience,
			cfg.OIDCPublicKey,
			cfg.VerifyTimeout,
		)

	case config.AuthModeStatic:
		tokens := identity.ParseTokenSpec(cfg.StaticTokens)
		if len(tokens) == 0 {
			return nil, fmt.Errorf("static auth mode requires STATIC_TOKENS")
		}
		return identity.NewStaticVerifier(tokens), nil

	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.AuthMode)
	}
}
