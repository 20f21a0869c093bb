package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"hirehub/backend/internal/apperr"
)

// Envelope is an RPC request frame carried over a room data channel.
// To names the destination identity, Method the remote procedure.
type Envelope struct {
	ID      string          `json:"id"`
	To      string          `json:"to"`
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Reply is the response frame for an Envelope with the same ID. Exactly one
// of Result and Error is set.
type Reply struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ReplyError     `json:"error,omitempty"`
}

// ReplyError carries a structured RPC failure back to the caller.
type ReplyError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Handler serves one RPC method. Room names the room the request arrived in
// and caller the identity of the participant that sent it.
type Handler func(ctx context.Context, room, caller string, payload json.RawMessage) (any, error)

// Dispatcher routes RPC envelopes to registered method handlers, bounding
// each call with a timeout.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	timeout  time.Duration
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		timeout:  timeout,
	}
}

// Register binds a handler to a method name. Registering the same name twice
// replaces the previous handler.
func (d *Dispatcher) Register(method string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[method] = h
}

// Dispatch runs the handler for env.Method and builds the reply frame.
// Handler errors are mapped to structured reply errors; a deadline hit
// surfaces as a timeout error.
func (d *Dispatcher) Dispatch(ctx context.Context, room, caller string, env Envelope) Reply {
	d.mu.RLock()
	h, ok := d.handlers[env.Method]
	d.mu.RUnlock()
	if !ok {
		return Reply{ID: env.ID, Error: &ReplyError{
			Kind:    apperr.KindValidation.String(),
			Message: "unknown method: " + env.Method,
		}}
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result, err := h(callCtx, room, caller, env.Payload)
	if err == nil && callCtx.Err() != nil {
		err = callCtx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperr.Timeout("rpc method "+env.Method+" timed out", err)
		}
		log.Printf("⚠️ RPC %s from %s failed: %v", env.Method, caller, err)
		return Reply{ID: env.ID, Error: replyError(err)}
	}

	data, err := json.Marshal(result)
	if err != nil {
		log.Printf("❌ RPC %s: failed to encode result: %v", env.Method, err)
		return Reply{ID: env.ID, Error: &ReplyError{
			Kind:    apperr.KindExternalService.String(),
			Message: "failed to encode result",
		}}
	}
	return Reply{ID: env.ID, Result: data}
}

func replyError(err error) *ReplyError {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return &ReplyError{Kind: appErr.Kind.String(), Message: appErr.Msg}
	}
	return &ReplyError{Kind: apperr.KindExternalService.String(), Message: err.Error()}
}
