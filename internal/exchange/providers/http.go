package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Invoker executes provider requests over HTTP.
type Invoker struct {
	client HTTPDoer
}

// InvokerConfig configures the provider invoker.
type InvokerConfig struct {
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

// NewInvoker creates a provider invoker.
func NewInvoker(cfg InvokerConfig) *Invoker {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Invoker{client: client}
}

// Invoke calls the provider with body serialized as JSON and returns the
// parsed JSON response verbatim. Any transport failure or non-2xx status is a
// RequestError; there is no retry at this layer.
func (i *Invoker) Invoke(ctx context.Context, p Provider, body any) (map[string]any, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling provider request: %w", err)
	}

	method := p.Method
	if method == "" {
		method = http.MethodPost
	}
	req, err := http.NewRequestWithContext(ctx, method, p.Endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("building provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, &RequestError{ProviderID: p.ID, Underlying: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{ProviderID: p.ID, Underlying: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{ProviderID: p.ID, Status: resp.StatusCode, Body: string(respBody)}
	}

	var out map[string]any
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &RequestError{ProviderID: p.ID, Status: resp.StatusCode, Body: string(respBody), Underlying: err}
	}
	return out, nil
}
