package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferState_Transitions(t *testing.T) {
	tests := []struct {
		from, to TransferState
		ok       bool
	}{
		{StateIdle, StatePreparing, true},
		{StatePreparing, StateInFlight, true},
		{StatePreparing, StateFailed, true},
		{StateInFlight, StateInFlight, true},
		{StateInFlight, StateCompleted, true},
		{StateInFlight, StateFailed, true},
		{StateInFlight, StateCancelled, true},

		{StateIdle, StateInFlight, false},
		{StatePreparing, StateCancelled, false},
		{StatePreparing, StateCompleted, false},
		{StateInFlight, StatePreparing, false},
		{StateCompleted, StateFailed, false},
		{StateFailed, StateInFlight, false},
		{StateCancelled, StateCompleted, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTransferState_TerminalAndActive(t *testing.T) {
	for _, s := range []TransferState{StateCompleted, StateFailed, StateCancelled} {
		assert.True(t, s.Terminal(), s)
		assert.False(t, s.Active(), s)
	}
	for _, s := range []TransferState{StatePreparing, StateInFlight} {
		assert.False(t, s.Terminal(), s)
		assert.True(t, s.Active(), s)
	}
	assert.False(t, StateIdle.Terminal())
	assert.False(t, StateIdle.Active())
}

func TestLocalKey_Precedence(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "http://cdn/u/a.png", LocalKey(RegistryEntry{AccessURL: "http://cdn/u/a.png", StoragePath: "a.png"}))
	assert.Equal(t, "a.png", LocalKey(RegistryEntry{StoragePath: "a.png"}))
	assert.Equal(t, "a.png:2025-03-01T10:00:00Z", LocalKey(RegistryEntry{DisplayName: "a.png", SubmittedAt: &at}))
	assert.Equal(t, "a.png:", LocalKey(RegistryEntry{DisplayName: "a.png"}))
}

func TestRemoteKey_Precedence(t *testing.T) {
	assert.Equal(t, "http://cdn/u/a.png", RemoteKey(RegistryEntry{AccessURL: "http://cdn/u/a.png", StoragePath: "a.png"}))
	assert.Equal(t, "a.png", RemoteKey(RegistryEntry{StoragePath: "a.png"}))
}

func TestRegistryEntry_JSONOmitsDerivedFields(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	e := RegistryEntry{
		Key:         "k",
		DisplayName: "a.png",
		SubmittedAt: &at,
		AccessURL:   "http://cdn/u/a.png",
		StoragePath: "1-a.png",
		Origin:      OriginBoth,
	}

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a.png","uploadedAt":"2025-03-01T10:00:00Z","url":"http://cdn/u/a.png","path":"1-a.png"}`, string(b))
}

func TestRegistryEntry_ReadsLegacyNulls(t *testing.T) {
	var e RegistryEntry
	require.NoError(t, json.Unmarshal([]byte(`{"url":"","name":"x.txt","path":null,"uploadedAt":"2025-03-01T10:00:00.000Z"}`), &e))
	assert.Equal(t, "x.txt", e.DisplayName)
	assert.Empty(t, e.StoragePath)
	assert.Empty(t, e.AccessURL)
	require.NotNil(t, e.SubmittedAt)
}

func TestOrigin_Sides(t *testing.T) {
	assert.True(t, OriginBoth.HasLocal())
	assert.True(t, OriginBoth.HasRemote())
	assert.True(t, OriginLocalOnly.HasLocal())
	assert.False(t, OriginLocalOnly.HasRemote())
	assert.False(t, OriginRemoteOnly.HasLocal())
	assert.True(t, OriginRemoteOnly.HasRemote())
}
