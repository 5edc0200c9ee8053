package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImmunitySeedNormalization(t *testing.T) {
	// Seed entries are lowercased and the @ prefix stripped; matches
	// never reach the repository.
	svc := NewImmunityService(nil, []string{"@Alice_99", "BOB_BOT", "", "@"})

	immune, err := svc.IsImmune(context.Background(), 100, 0, "alice_99")
	require.NoError(t, err)
	assert.True(t, immune)

	immune, err = svc.IsImmune(context.Background(), 100, 0, "Bob_Bot")
	require.NoError(t, err)
	assert.True(t, immune)
}

func TestImmunityGrantRequiresIdentifier(t *testing.T) {
	svc := NewImmunityService(nil, nil)

	err := svc.Grant(context.Background(), 100, 0, "")
	assert.ErrorIs(t, err, ErrNoIdentifier)

	_, err = svc.Revoke(context.Background(), 100, 0, "")
	assert.ErrorIs(t, err, ErrNoIdentifier)
}
