package httptransport

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwn-gateway/contracts/application"
	"dwn-gateway/contracts/manifest"
	"dwn-gateway/internal/credential"
	"dwn-gateway/internal/exchange/pipeline"
	"dwn-gateway/internal/exchange/providers"
	"dwn-gateway/pkg/testutil"
)

type readiness bool

func (r readiness) Ready() bool { return bool(r) }

type serverFixture struct {
	handler http.Handler
	fake    *testutil.FakeNode
	token   string
}

// newServerFixture wires the router over a real pipeline backed by a fake
// node. The enrichment stage is stubbed out unless cfg routes to a provider.
func newServerFixture(t *testing.T, ready bool, cfg pipeline.Config, opts ...pipeline.Option) *serverFixture {
	t.Helper()

	fake := testutil.NewFakeNode()
	session := testutil.NewSession(t)
	manifests := []manifest.CredentialManifest{testutil.NewManifest("membership").Build()}

	resolver := func(context.Context, string) (ed25519.PublicKey, error) {
		return session.PublicKey(), nil
	}
	pipe := pipeline.New(fake, session, manifests, providers.NewRegistry(),
		providers.NewInvoker(providers.InvokerConfig{}), resolver, cfg, opts...)

	token, err := credential.Issue(session, testutil.ApplicantDID, "MemberCredential", nil)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(pipe, readiness(ready), manifests, logger)
	return &serverFixture{handler: NewRouter(h, logger), fake: fake, token: token}
}

func stubEnrichment() pipeline.Option {
	return pipeline.WithOverrides(pipeline.Overrides{
		Request: func(context.Context, []credential.Verified, string) (map[string]any, error) {
			return map[string]any{"membershipTier": "gold"}, nil
		},
	})
}

func (f *serverFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	f := newServerFixture(t, false, pipeline.Config{})
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyEndpointGatesOnSetup(t *testing.T) {
	notReady := newServerFixture(t, false, pipeline.Config{})
	rec := notReady.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready := newServerFixture(t, true, pipeline.Config{})
	rec = ready.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListManifests(t *testing.T) {
	f := newServerFixture(t, true, pipeline.Config{})
	rec := f.do(t, http.MethodGet, "/v1/manifests", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Manifests []manifest.CredentialManifest `json:"manifests"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Manifests, 1)
	assert.Equal(t, "membership", body.Manifests[0].ID)
}

func TestSubmitApplication(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		f := newServerFixture(t, true, pipeline.Config{}, stubEnrichment())
		rec := f.do(t, http.MethodPost, "/v1/applications", submitRequest{
			RecordID: "sub-1",
			Author:   testutil.ApplicantDID,
			Presentation: application.Presentation{
				ManifestID:           "membership",
				VerifiableCredential: []string{f.token},
			},
		})
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Len(t, f.fake.StoredRecords(), 1)
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newServerFixture(t, true, pipeline.Config{})
		req := httptest.NewRequest(http.MethodPost, "/v1/applications", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("author required", func(t *testing.T) {
		f := newServerFixture(t, true, pipeline.Config{})
		rec := f.do(t, http.MethodPost, "/v1/applications", submitRequest{
			RecordID:     "sub-1",
			Presentation: application.Presentation{ManifestID: "membership"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown manifest is a processing failure", func(t *testing.T) {
		f := newServerFixture(t, true, pipeline.Config{})
		rec := f.do(t, http.MethodPost, "/v1/applications", submitRequest{
			RecordID:     "sub-1",
			Author:       testutil.ApplicantDID,
			Presentation: application.Presentation{ManifestID: "no-such-manifest"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("missing provider is a configuration failure", func(t *testing.T) {
		// Empty registry: the request stage cannot resolve any provider.
		f := newServerFixture(t, true, pipeline.Config{})
		rec := f.do(t, http.MethodPost, "/v1/applications", submitRequest{
			RecordID:     "sub-1",
			Author:       testutil.ApplicantDID,
			Presentation: application.Presentation{ManifestID: "membership"},
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("non-json content type rejected", func(t *testing.T) {
		f := newServerFixture(t, true, pipeline.Config{})
		req := httptest.NewRequest(http.MethodPost, "/v1/applications", strings.NewReader("author=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestMetricsEndpointExposed(t *testing.T) {
	f := newServerFixture(t, true, pipeline.Config{})
	rec := f.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
