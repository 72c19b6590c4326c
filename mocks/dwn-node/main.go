// Mock decentralized node for local development and e2e runs. Holds protocol
// definitions and records in memory and speaks the same JSON HTTP API the
// gateway's node client expects. Not for production use.
package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
)

const defaultPort = "3000"

type status struct {
	Code   int    `json:"code"`
	Detail string `json:"detail,omitempty"`
}

type record struct {
	ID        string          `json:"recordId"`
	Author    string          `json:"author,omitempty"`
	ContextID string          `json:"contextId,omitempty"`
	Schema    string          `json:"schema,omitempty"`
	Path      string          `json:"-"`
	Data      json.RawMessage `json:"-"`
}

type store struct {
	mu        sync.Mutex
	protocols map[string]json.RawMessage
	records   map[string]*record
}

func newStore() *store {
	return &store{
		protocols: make(map[string]json.RawMessage),
		records:   make(map[string]*record),
	}
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	s := newStore()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /protocols/query", s.handleProtocolsQuery)
	mux.HandleFunc("POST /protocols/configure", s.handleProtocolsConfigure)
	mux.HandleFunc("POST /protocols/send", handleAck)
	mux.HandleFunc("POST /records/query", s.handleRecordsQuery)
	mux.HandleFunc("POST /records", s.handleRecordsCreate)
	mux.HandleFunc("POST /records/send", handleAck)
	mux.HandleFunc("GET /records/{id}", s.handleRecordRead)

	log.Printf("mock node listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatal(err)
	}
}

func (s *store) handleProtocolsQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Protocol string `json:"protocol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]any{"status": status{Code: 400, Detail: "bad request"}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	protocols := []json.RawMessage{}
	if def, ok := s.protocols[req.Protocol]; ok {
		protocols = append(protocols, def)
	}
	writeJSON(w, map[string]any{"status": status{Code: 200}, "protocols": protocols})
}

func (s *store) handleProtocolsConfigure(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, map[string]any{"status": status{Code: 400, Detail: "bad request"}})
		return
	}
	var def struct {
		Protocol string `json:"protocol"`
	}
	if err := json.Unmarshal(raw, &def); err != nil || def.Protocol == "" {
		writeJSON(w, map[string]any{"status": status{Code: 400, Detail: "invalid protocol definition"}})
		return
	}

	s.mu.Lock()
	s.protocols[def.Protocol] = raw
	s.mu.Unlock()
	writeJSON(w, map[string]any{
		"status":   status{Code: 202},
		"protocol": map[string]string{"protocol": def.Protocol},
	})
}

func (s *store) handleRecordsQuery(w http.ResponseWriter, r *http.Request) {
	var filter struct {
		Protocol     string `json:"protocol"`
		ProtocolPath string `json:"protocolPath"`
		Schema       string `json:"schema"`
	}
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		writeJSON(w, map[string]any{"status": status{Code: 400, Detail: "bad request"}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records := []*record{}
	for _, rec := range s.records {
		if filter.Schema != "" && rec.Schema != filter.Schema {
			continue
		}
		if filter.ProtocolPath != "" && rec.Path != filter.ProtocolPath {
			continue
		}
		records = append(records, rec)
	}
	writeJSON(w, map[string]any{"status": status{Code: 200}, "records": records})
}

func (s *store) handleRecordsCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Schema       string          `json:"schema"`
		ProtocolPath string          `json:"protocolPath"`
		Recipient    string          `json:"recipient"`
		ParentID     string          `json:"parentId"`
		Author       string          `json:"author"`
		Data         json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]any{"status": status{Code: 400, Detail: "bad request"}})
		return
	}

	author := req.Author
	if author == "" {
		author = r.Header.Get("X-Author-DID")
	}
	rec := &record{
		ID:        uuid.New().String(),
		Author:    author,
		ContextID: req.ParentID,
		Schema:    req.Schema,
		Path:      req.ProtocolPath,
		Data:      req.Data,
	}
	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()
	writeJSON(w, map[string]any{"status": status{Code: 202}, "record": rec})
}

func (s *store) handleRecordRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	rec, ok := s.records[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(rec.Data)
}

func handleAck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"status": status{Code: 202}})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
