package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirehub/backend/internal/apperr"
)

func TestDispatchSuccess(t *testing.T) {
	d := NewDispatcher(time.Second)
	d.Register("echo", func(ctx context.Context, room, caller string, payload json.RawMessage) (any, error) {
		return map[string]string{"room": room, "caller": caller}, nil
	})

	reply := d.Dispatch(context.Background(), "room-1", "candidate-1", Envelope{
		ID:     "req-1",
		To:     AgentIdentity,
		Method: "echo",
	})

	assert.Equal(t, "req-1", reply.ID)
	require.Nil(t, reply.Error)

	var result map[string]string
	require.NoError(t, json.Unmarshal(reply.Result, &result))
	assert.Equal(t, "room-1", result["room"])
	assert.Equal(t, "candidate-1", result["caller"])
}

func TestDispatchUnknownMethod(t *testing.T) {
	d := NewDispatcher(time.Second)

	reply := d.Dispatch(context.Background(), "room-1", "candidate-1", Envelope{
		ID:     "req-2",
		Method: "no_such_method",
	})

	require.NotNil(t, reply.Error)
	assert.Equal(t, apperr.KindValidation.String(), reply.Error.Kind)
}

func TestDispatchTimeout(t *testing.T) {
	d := NewDispatcher(50 * time.Millisecond)
	d.Register("slow", func(ctx context.Context, room, caller string, payload json.RawMessage) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return "done", nil
		}
	})

	reply := d.Dispatch(context.Background(), "room-1", "candidate-1", Envelope{
		ID:     "req-3",
		Method: "slow",
	})

	require.NotNil(t, reply.Error)
	assert.Equal(t, apperr.KindTimeout.String(), reply.Error.Kind)
}

func TestDispatchMapsTaxonomyErrors(t *testing.T) {
	d := NewDispatcher(time.Second)
	d.Register("fail", func(ctx context.Context, room, caller string, payload json.RawMessage) (any, error) {
		return nil, apperr.InvalidState("cannot advance interview in state created")
	})

	reply := d.Dispatch(context.Background(), "room-1", "candidate-1", Envelope{
		ID:     "req-4",
		Method: "fail",
	})

	require.NotNil(t, reply.Error)
	assert.Equal(t, apperr.KindInvalidState.String(), reply.Error.Kind)
	assert.Contains(t, reply.Error.Message, "cannot advance")
}
