package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUser_DefaultState(t *testing.T) {
	u := NewUser(1, 10)
	require.Equal(t, StateMainMenu, u.State)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, int64(10), u.ChatID)
	require.Equal(t, PainLevel(0), u.Pain)
}

func TestUser_SetPain(t *testing.T) {
	u := NewUser(1, 10)
	u.SetPain(7)
	require.Equal(t, PainLevel(7), u.Pain)
}
