// Package node defines the narrow interface this gateway consumes from the
// remote decentralized storage node, plus an HTTP client implementing it.
// The gateway never inspects record internals beyond a record's JSON payload
// and its author; everything else is node-owned.
package node

import (
	"context"
	"encoding/json"
)

// Status is the outcome every node call reports. Any non-2xx code is treated
// as fatal for that call; Detail carries the node's diagnostic text verbatim.
type Status struct {
	Code   int    `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// OK reports whether the node accepted the call.
func (s Status) OK() bool {
	return s.Code >= 200 && s.Code <= 299
}

// Record is an opaque handle to a node-owned record.
type Record struct {
	ID        string `json:"recordId"`
	Author    string `json:"author,omitempty"`
	ContextID string `json:"contextId,omitempty"`
	Schema    string `json:"schema,omitempty"`
}

// TypeDefinition declares the schema and data formats of one record type
// within a protocol definition.
type TypeDefinition struct {
	Schema      string   `json:"schema,omitempty"`
	DataFormats []string `json:"dataFormats,omitempty"`
}

// ProtocolDefinition is the schema/path contract for a family of records.
type ProtocolDefinition struct {
	Protocol  string                    `json:"protocol"`
	Published bool                      `json:"published"`
	Types     map[string]TypeDefinition `json:"types"`
	Structure json.RawMessage           `json:"structure"`
}

// ProtocolHandle references a configured protocol for publication.
type ProtocolHandle struct {
	URI string `json:"protocol"`
}

// RecordFilter narrows a record query to one protocol path and schema.
type RecordFilter struct {
	Protocol     string `json:"protocol,omitempty"`
	ProtocolPath string `json:"protocolPath,omitempty"`
	Schema       string `json:"schema,omitempty"`
}

// CreateOptions describes a record to create.
type CreateOptions struct {
	Schema       string          `json:"schema"`
	Protocol     string          `json:"protocol"`
	ProtocolPath string          `json:"protocolPath"`
	Recipient    string          `json:"recipient,omitempty"`
	ParentID     string          `json:"parentId,omitempty"`
	Data         json.RawMessage `json:"data"`
	Store        bool            `json:"store"`
	Publish      bool            `json:"publish"`
}

// ProtocolsReply is the result of a protocol query.
type ProtocolsReply struct {
	Status    Status               `json:"status"`
	Protocols []ProtocolDefinition `json:"protocols"`
}

// ConfigureReply is the result of configuring a protocol.
type ConfigureReply struct {
	Status   Status          `json:"status"`
	Protocol *ProtocolHandle `json:"protocol,omitempty"`
}

// RecordsReply is one page of a record query.
type RecordsReply struct {
	Status  Status   `json:"status"`
	Records []Record `json:"records"`
	Cursor  string   `json:"cursor,omitempty"`
}

// CreateReply is the result of creating a record.
type CreateReply struct {
	Status Status  `json:"status"`
	Record *Record `json:"record,omitempty"`
}

// Client is the node interface the gateway consumes. Every call is a
// potentially long-latency network boundary: implementations must honor
// context cancellation, and callers must tolerate a call aborting without
// having taken effect.
type Client interface {
	// QueryProtocols returns the protocol definitions matching the filter.
	QueryProtocols(ctx context.Context, protocolURI string) (*ProtocolsReply, error)

	// ConfigureProtocol installs a protocol definition on the node.
	ConfigureProtocol(ctx context.Context, def ProtocolDefinition) (*ConfigureReply, error)

	// PublishProtocol sends a configured protocol to the target identity's
	// remote replica.
	PublishProtocol(ctx context.Context, handle ProtocolHandle, targetDID string) (Status, error)

	// QueryRecords returns the records matching the filter plus a paging cursor.
	QueryRecords(ctx context.Context, filter RecordFilter) (*RecordsReply, error)

	// ReadRecord returns the JSON payload of one record.
	ReadRecord(ctx context.Context, recordID string) (json.RawMessage, error)

	// CreateRecord creates (and optionally stores/publishes) a record.
	CreateRecord(ctx context.Context, opts CreateOptions) (*CreateReply, error)

	// SendRecord transmits a record to the target identity's remote replica.
	SendRecord(ctx context.Context, record Record, targetDID string) (Status, error)
}
