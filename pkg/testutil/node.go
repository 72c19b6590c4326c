package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"dwn-gateway/internal/node"
)

// FakeNode is an in-memory node.Client for tests. Default behavior stores
// protocols and records; any operation can be replaced through its hook field
// to inject failures. Call counts are tracked per operation.
type FakeNode struct {
	mu        sync.Mutex
	protocols []node.ProtocolDefinition
	records   []node.Record
	payloads  map[string]json.RawMessage
	nextID    int
	calls     map[string]int

	QueryProtocolsFn    func(ctx context.Context, protocolURI string) (*node.ProtocolsReply, error)
	ConfigureProtocolFn func(ctx context.Context, def node.ProtocolDefinition) (*node.ConfigureReply, error)
	PublishProtocolFn   func(ctx context.Context, handle node.ProtocolHandle, targetDID string) (node.Status, error)
	QueryRecordsFn      func(ctx context.Context, filter node.RecordFilter) (*node.RecordsReply, error)
	ReadRecordFn        func(ctx context.Context, recordID string) (json.RawMessage, error)
	CreateRecordFn      func(ctx context.Context, opts node.CreateOptions) (*node.CreateReply, error)
	SendRecordFn        func(ctx context.Context, record node.Record, targetDID string) (node.Status, error)
}

// NewFakeNode creates an empty fake node.
func NewFakeNode() *FakeNode {
	return &FakeNode{
		payloads: make(map[string]json.RawMessage),
		calls:    make(map[string]int),
	}
}

// Calls returns how many times the named operation ran.
func (f *FakeNode) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// StoredRecords returns the stored records in creation order.
func (f *FakeNode) StoredRecords() []node.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]node.Record, len(f.records))
	copy(out, f.records)
	return out
}

// SeedRecord stores a record with the given payload, bypassing CreateRecord.
func (f *FakeNode) SeedRecord(rec node.Record, payload json.RawMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	f.payloads[rec.ID] = payload
}

func (f *FakeNode) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

// QueryProtocols implements node.Client.
func (f *FakeNode) QueryProtocols(ctx context.Context, protocolURI string) (*node.ProtocolsReply, error) {
	f.count("QueryProtocols")
	if f.QueryProtocolsFn != nil {
		return f.QueryProtocolsFn(ctx, protocolURI)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []node.ProtocolDefinition
	for _, def := range f.protocols {
		if def.Protocol == protocolURI {
			matched = append(matched, def)
		}
	}
	return &node.ProtocolsReply{Status: node.Status{Code: 200}, Protocols: matched}, nil
}

// ConfigureProtocol implements node.Client.
func (f *FakeNode) ConfigureProtocol(ctx context.Context, def node.ProtocolDefinition) (*node.ConfigureReply, error) {
	f.count("ConfigureProtocol")
	if f.ConfigureProtocolFn != nil {
		return f.ConfigureProtocolFn(ctx, def)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.protocols = append(f.protocols, def)
	return &node.ConfigureReply{
		Status:   node.Status{Code: 202},
		Protocol: &node.ProtocolHandle{URI: def.Protocol},
	}, nil
}

// PublishProtocol implements node.Client.
func (f *FakeNode) PublishProtocol(ctx context.Context, handle node.ProtocolHandle, targetDID string) (node.Status, error) {
	f.count("PublishProtocol")
	if f.PublishProtocolFn != nil {
		return f.PublishProtocolFn(ctx, handle, targetDID)
	}
	return node.Status{Code: 202}, nil
}

// QueryRecords implements node.Client.
func (f *FakeNode) QueryRecords(ctx context.Context, filter node.RecordFilter) (*node.RecordsReply, error) {
	f.count("QueryRecords")
	if f.QueryRecordsFn != nil {
		return f.QueryRecordsFn(ctx, filter)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []node.Record
	for _, rec := range f.records {
		if filter.Schema == "" || rec.Schema == filter.Schema {
			matched = append(matched, rec)
		}
	}
	return &node.RecordsReply{Status: node.Status{Code: 200}, Records: matched}, nil
}

// ReadRecord implements node.Client.
func (f *FakeNode) ReadRecord(ctx context.Context, recordID string) (json.RawMessage, error) {
	f.count("ReadRecord")
	if f.ReadRecordFn != nil {
		return f.ReadRecordFn(ctx, recordID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.payloads[recordID]
	if !ok {
		return nil, fmt.Errorf("record %s not found", recordID)
	}
	return payload, nil
}

// CreateRecord implements node.Client.
func (f *FakeNode) CreateRecord(ctx context.Context, opts node.CreateOptions) (*node.CreateReply, error) {
	f.count("CreateRecord")
	if f.CreateRecordFn != nil {
		return f.CreateRecordFn(ctx, opts)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec := node.Record{
		ID:     fmt.Sprintf("record-%d", f.nextID),
		Schema: opts.Schema,
	}
	f.records = append(f.records, rec)
	f.payloads[rec.ID] = opts.Data
	return &node.CreateReply{Status: node.Status{Code: 202}, Record: &rec}, nil
}

// SendRecord implements node.Client.
func (f *FakeNode) SendRecord(ctx context.Context, record node.Record, targetDID string) (node.Status, error) {
	f.count("SendRecord")
	if f.SendRecordFn != nil {
		return f.SendRecordFn(ctx, record, targetDID)
	}
	return node.Status{Code: 202}, nil
}

// Interface guard.
var _ node.Client = (*FakeNode)(nil)
