package node

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/crypto/blake2b"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClientConfig configures the HTTP node client.
type HTTPClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

// HTTPClient talks to a node over its JSON HTTP API. It implements Client.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// NewHTTPClient creates an HTTP node client.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

// QueryProtocols returns the protocol definitions matching the URI.
func (c *HTTPClient) QueryProtocols(ctx context.Context, protocolURI string) (*ProtocolsReply, error) {
	body := map[string]string{"protocol": protocolURI}
	var reply ProtocolsReply
	if err := c.post(ctx, "/protocols/query", body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// ConfigureProtocol installs a protocol definition on the node.
func (c *HTTPClient) ConfigureProtocol(ctx context.Context, def ProtocolDefinition) (*ConfigureReply, error) {
	var reply ConfigureReply
	if err := c.post(ctx, "/protocols/configure", def, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// PublishProtocol sends a configured protocol to the target's replica.
func (c *HTTPClient) PublishProtocol(ctx context.Context, handle ProtocolHandle, targetDID string) (Status, error) {
	body := map[string]string{"protocol": handle.URI, "target": targetDID}
	var reply struct {
		Status Status `json:"status"`
	}
	if err := c.post(ctx, "/protocols/send", body, &reply); err != nil {
		return Status{}, err
	}
	return reply.Status, nil
}

// QueryRecords returns one page of records matching the filter.
func (c *HTTPClient) QueryRecords(ctx context.Context, filter RecordFilter) (*RecordsReply, error) {
	var reply RecordsReply
	if err := c.post(ctx, "/records/query", filter, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// ReadRecord returns the JSON payload of one record.
func (c *HTTPClient) ReadRecord(ctx context.Context, recordID string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/records/"+recordID, nil)
	if err != nil {
		return nil, fmt.Errorf("building read request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", recordID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading record %s body: %w", recordID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &QueryError{Code: resp.StatusCode, Detail: string(raw)}
	}
	return raw, nil
}

// CreateRecord creates a record. The payload is content-addressed: the create
// request carries a blake2b-256 digest of the data so the node can
// deduplicate replays of the same write.
func (c *HTTPClient) CreateRecord(ctx context.Context, opts CreateOptions) (*CreateReply, error) {
	body := struct {
		CreateOptions
		DataDigest string `json:"dataDigest"`
	}{CreateOptions: opts, DataDigest: contentDigest(opts.Data)}

	var reply CreateReply
	if err := c.post(ctx, "/records", body, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// SendRecord transmits a record to the target's replica.
func (c *HTTPClient) SendRecord(ctx context.Context, record Record, targetDID string) (Status, error) {
	body := map[string]string{"recordId": record.ID, "target": targetDID}
	var reply struct {
		Status Status `json:"status"`
	}
	if err := c.post(ctx, "/records/send", body, &reply); err != nil {
		return Status{}, err
	}
	return reply.Status, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("building %s request: %w", path, err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling node %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading node %s response: %w", path, err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding node %s response: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}

func contentDigest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
