package appctx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateUninitialized, StateInitializing, true},
		{StateInitializing, StateReady, true},
		{StateUninitialized, StateReady, true},
		{StateReady, StateInitializing, false},
		{StateReady, StateUninitialized, false},
		{StateInitializing, StateUninitialized, false},
		{StateReady, StateReady, false},
		{StateInitializing, StateInitializing, false},
		{StateUninitialized, State(7), false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCheckTransition(t *testing.T) {
	err := checkTransition(StateReady, StateInitializing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Contains(t, err.Error(), "ready -> initializing")
}

func TestParseState(t *testing.T) {
	for _, s := range []State{StateUninitialized, StateInitializing, StateReady} {
		got, err := ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseState("READY")
	require.NoError(t, err)
	assert.Equal(t, StateReady, got)

	_, err = ParseState("booting")
	assert.Error(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "State(9)", State(9).String())
}
