package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dwn-gateway/contracts/manifest"
	"dwn-gateway/internal/exchange/providers"
)

// Server captures process level configuration for the gateway.
type Server struct {
	Addr           string
	NodeURL        string
	NodeAPIKey     string
	AgentDID       string
	AgentSeed      string // hex-encoded Ed25519 seed; generated if empty
	ManifestDir    string
	ProvidersFile  string
	TrustedIssuers []string
	PollInterval   time.Duration
}

// DefaultPollInterval paces the application record poller.
var DefaultPollInterval = 30 * time.Second

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("DWN_GATEWAY_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	nodeURL := os.Getenv("NODE_URL")
	if nodeURL == "" {
		nodeURL = "http://localhost:3000"
	}

	pollInterval := DefaultPollInterval
	if s := os.Getenv("POLL_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			pollInterval = d
		}
	}

	var trusted []string
	if s := os.Getenv("TRUSTED_ISSUERS"); s != "" {
		for _, iss := range strings.Split(s, ",") {
			if iss = strings.TrimSpace(iss); iss != "" {
				trusted = append(trusted, iss)
			}
		}
	}

	return Server{
		Addr:           addr,
		NodeURL:        nodeURL,
		NodeAPIKey:     os.Getenv("NODE_API_KEY"),
		AgentDID:       os.Getenv("AGENT_DID"),
		AgentSeed:      os.Getenv("AGENT_SEED"),
		ManifestDir:    os.Getenv("MANIFEST_DIR"),
		ProvidersFile:  os.Getenv("PROVIDERS_FILE"),
		TrustedIssuers: trusted,
		PollInterval:   pollInterval,
	}
}

// LoadManifests reads every *.json file in dir as a credential manifest.
// Files are read in lexical order so reconciliation input order is stable.
func LoadManifests(dir string) ([]manifest.CredentialManifest, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing manifest dir %s: %w", dir, err)
	}

	manifests := make([]manifest.CredentialManifest, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading manifest %s: %w", p, err)
		}
		var m manifest.CredentialManifest
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("parsing manifest %s: %w", p, err)
		}
		if m.ID == "" {
			return nil, fmt.Errorf("manifest %s has no id", p)
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}

// LoadProviders reads the external data provider definitions from a JSON file.
func LoadProviders(path string) ([]providers.Provider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading providers file %s: %w", path, err)
	}
	var out []providers.Provider
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parsing providers file %s: %w", path, err)
	}
	return out, nil
}
