package main

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/nickyhof/DemoDB"
	"github.com/nickyhof/DemoDB/core"
	"github.com/nickyhof/DemoDB/db"
)

var bindingIdentity = core.Identity{
	Name:  "DemoDB Python",
	Email: "python@demodb.local",
}

// Handle represents an open demo instance
type Handle struct {
	instance *DemoDB.Instance
	engine   *db.Engine
}

type registry struct {
	mu      sync.Mutex
	handles map[int]*Handle
	next    int
}

var handles = &registry{handles: make(map[int]*Handle), next: 1}

func (r *registry) add(instance *DemoDB.Instance) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle := r.next
	r.next++
	r.handles[handle] = &Handle{
		instance: instance,
		engine:   instance.Engine(bindingIdentity),
	}
	return handle
}

func (r *registry) get(handle int) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[handle]
	return h, ok
}

func (r *registry) remove(handle int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, handle)
}

// Response mirrors the server protocol for consistency
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

func openSeed(path string) (int, error) {
	instance, err := DemoDB.OpenWithOptions(context.Background(), DemoDB.Options{SeedSource: path})
	if err != nil {
		return -1, errors.Wrap(err, "failed to open seed")
	}
	return handles.add(instance), nil
}

func executeJSON(handle int, query, database string) string {
	h, ok := handles.get(handle)
	if !ok {
		return errorJSON("Invalid handle")
	}

	result := h.engine.Execute(query, database)
	if !result.Success {
		return errorJSON(result.Error)
	}

	kind := "commit"
	if result.Type() == db.QueryResultType {
		kind = "query"
	}
	data, err := json.Marshal(result)
	if err != nil {
		return errorJSON(err.Error())
	}
	return marshalResponse(Response{Success: true, Type: kind, Result: data})
}

func snapshotJSON(handle int) string {
	h, ok := handles.get(handle)
	if !ok {
		return errorJSON("Invalid handle")
	}
	data, err := json.Marshal(h.instance.Snapshot())
	if err != nil {
		return errorJSON(err.Error())
	}
	return marshalResponse(Response{Success: true, Type: "snapshot", Result: data})
}

func errorJSON(msg string) string {
	return marshalResponse(Response{Success: false, Error: msg})
}

func marshalResponse(resp Response) string {
	jsonData, _ := json.Marshal(resp)
	return string(jsonData)
}
