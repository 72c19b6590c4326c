package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(Provider{ID: "kyc", Endpoint: "https://kyc.example.com"}))

		p, err := r.Get("kyc")
		require.NoError(t, err)
		assert.Equal(t, "https://kyc.example.com", p.Endpoint)
	})

	t.Run("missing id rejected", func(t *testing.T) {
		r := NewRegistry()
		assert.Error(t, r.Register(Provider{Endpoint: "https://kyc.example.com"}))
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(Provider{ID: "kyc"}))
		assert.Error(t, r.Register(Provider{ID: "kyc"}))
	})

	t.Run("unmatched id is not a fallback", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(Provider{ID: "kyc"}))

		_, err := r.Get("fraud")
		assert.ErrorIs(t, err, ErrProviderNotFound)
	})

	t.Run("default is first registered", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(Provider{ID: "kyc"}))
		require.NoError(t, r.Register(Provider{ID: "fraud"}))

		p, err := r.Default()
		require.NoError(t, err)
		assert.Equal(t, "kyc", p.ID)
	})

	t.Run("default on empty registry", func(t *testing.T) {
		_, err := NewRegistry().Default()
		assert.ErrorIs(t, err, ErrProviderNotFound)
	})
}

func TestInvoke(t *testing.T) {
	t.Run("posts json and parses response", func(t *testing.T) {
		var gotMethod, gotContentType, gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotContentType = r.Header.Get("Content-Type")
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{"score":42}`))
		}))
		defer srv.Close()

		i := NewInvoker(InvokerConfig{})
		p := Provider{ID: "kyc", Endpoint: srv.URL, Headers: map[string]string{"Authorization": "Bearer token"}}
		out, err := i.Invoke(context.Background(), p, map[string]any{"subject": "did:key:abc"})
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, "Bearer token", gotAuth)
		assert.Equal(t, float64(42), out["score"])
	})

	t.Run("non-2xx surfaces status and body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		i := NewInvoker(InvokerConfig{})
		_, err := i.Invoke(context.Background(), Provider{ID: "kyc", Endpoint: srv.URL}, nil)

		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, "kyc", reqErr.ProviderID)
		assert.Equal(t, http.StatusTooManyRequests, reqErr.Status)
		assert.Contains(t, reqErr.Body, "quota exceeded")
	})

	t.Run("transport failure wraps underlying error", func(t *testing.T) {
		i := NewInvoker(InvokerConfig{})
		_, err := i.Invoke(context.Background(), Provider{ID: "kyc", Endpoint: "http://127.0.0.1:0"}, nil)

		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Zero(t, reqErr.Status)
		assert.Error(t, reqErr.Underlying)
	})

	t.Run("malformed response body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		i := NewInvoker(InvokerConfig{})
		_, err := i.Invoke(context.Background(), Provider{ID: "kyc", Endpoint: srv.URL}, nil)

		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Contains(t, reqErr.Body, "not json")
	})
}
