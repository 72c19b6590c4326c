package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"dwn-gateway/internal/agent"
	"dwn-gateway/internal/credential"
	"dwn-gateway/internal/exchange/manifest"
	"dwn-gateway/internal/exchange/metrics"
	"dwn-gateway/internal/exchange/pipeline"
	"dwn-gateway/internal/exchange/poller"
	"dwn-gateway/internal/exchange/protocol"
	"dwn-gateway/internal/exchange/providers"
	"dwn-gateway/internal/exchange/setup"
	"dwn-gateway/internal/exchange/tracer"
	"dwn-gateway/internal/node"
	"dwn-gateway/internal/platform/config"
	"dwn-gateway/internal/platform/httpserver"
	"dwn-gateway/internal/platform/logger"
	httptransport "dwn-gateway/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal exchange packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing dwn-gateway",
		"addr", cfg.Addr,
		"node_url", cfg.NodeURL,
		"agent_did", cfg.AgentDID,
	)

	session, err := agent.NewSession(cfg.AgentDID, cfg.AgentSeed)
	if err != nil {
		log.Error("building agent session", "error", err)
		os.Exit(1)
	}

	manifests, err := config.LoadManifests(cfg.ManifestDir)
	if err != nil {
		log.Error("loading manifests", "error", err)
		os.Exit(1)
	}

	registry := providers.NewRegistry()
	if cfg.ProvidersFile != "" {
		configured, err := config.LoadProviders(cfg.ProvidersFile)
		if err != nil {
			log.Error("loading providers", "error", err)
			os.Exit(1)
		}
		for _, p := range configured {
			if err := registry.Register(p); err != nil {
				log.Error("registering provider", "provider", p.ID, "error", err)
				os.Exit(1)
			}
		}
	}

	client := node.NewHTTPClient(node.HTTPClientConfig{BaseURL: cfg.NodeURL, APIKey: cfg.NodeAPIKey})
	m := metrics.New()
	trace := tracer.NewOTel()

	protocols := protocol.NewReconciler(client, session, protocol.WithLogger(log))
	manifestRec := manifest.NewReconciler(client, session, manifests, manifest.WithLogger(log))
	orchestrator := setup.New(protocols, manifestRec,
		setup.WithLogger(log),
		setup.WithMetrics(m),
		setup.WithTracer(trace),
	)

	pipe := pipeline.New(client, session, manifests, registry,
		providers.NewInvoker(providers.InvokerConfig{}),
		selfResolver(session),
		pipeline.Config{AllowedIssuers: cfg.TrustedIssuers},
		pipeline.WithLogger(log),
		pipeline.WithMetrics(m),
		pipeline.WithTracer(trace),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := orchestrator.Run(ctx); err != nil {
		log.Error("setup failed", "error", err)
		os.Exit(1)
	}

	sweep := poller.New(client, pipe, cfg.PollInterval, poller.WithLogger(log))
	if err := sweep.Start(ctx); err != nil {
		log.Error("starting application poller", "error", err)
		os.Exit(1)
	}
	defer sweep.Stop()

	handler := httptransport.NewHandler(pipe, orchestrator, manifests, log)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler, log))

	log.Info("starting http server", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// selfResolver resolves the session's own DID to its verification key.
// External issuer keys require a DID resolver, which this deployment does not
// carry; credentials from other issuers only verify when their key is the
// session's (i.e. self-issued chains in development setups).
func selfResolver(session *agent.Session) credential.KeyResolver {
	return func(_ context.Context, issuerDID string) (ed25519.PublicKey, error) {
		if issuerDID == session.DID() {
			return session.PublicKey(), nil
		}
		return nil, fmt.Errorf("no key material for issuer %s", issuerDID)
	}
}
