package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chromobot/internal/model"
)

// fakeMembers is an in-memory memberSource recording the cutoff it was
// asked for.
type fakeMembers struct {
	members []model.Member
	cutoff  time.Time
}

func (f *fakeMembers) RecentMembers(_ context.Context, _ int64, cutoff time.Time) ([]model.Member, error) {
	f.cutoff = cutoff
	return append([]model.Member(nil), f.members...), nil
}

// fakeChosen records MarkChosen calls.
type fakeChosen struct {
	marked []int64
}

func (f *fakeChosen) MarkChosen(_ context.Context, _ int64, userID int64, _ string) error {
	f.marked = append(f.marked, userID)
	return nil
}

// fakeImmunity marks a fixed set of user ids immune.
type fakeImmunity struct {
	immune map[int64]bool
}

func (f *fakeImmunity) IsImmune(_ context.Context, _ int64, userID int64, _ string) (bool, error) {
	return f.immune[userID], nil
}

func TestPoolExcludesImmuneMembers(t *testing.T) {
	members := &fakeMembers{members: []model.Member{
		{UserID: 1, Username: "alice"},
		{UserID: 2, Username: "bob"},
		{UserID: 3, Username: "carol"},
	}}
	immunity := &fakeImmunity{immune: map[int64]bool{2: true}}
	svc := NewSelectionService(members, &fakeChosen{}, immunity, 7*24*time.Hour)

	pool, err := svc.Pool(context.Background(), 100)
	require.NoError(t, err)

	require.Len(t, pool, 2)
	for _, m := range pool {
		assert.NotEqual(t, int64(2), m.UserID, "immune member leaked into the pool")
	}
}

func TestPoolUsesActivityWindowCutoff(t *testing.T) {
	members := &fakeMembers{}
	window := 7 * 24 * time.Hour
	svc := NewSelectionService(members, &fakeChosen{}, &fakeImmunity{}, window)

	before := time.Now().Add(-window)
	_, err := svc.Pool(context.Background(), 100)
	require.NoError(t, err)
	after := time.Now().Add(-window)

	// The cutoff handed to the member source is now minus the window.
	assert.False(t, members.cutoff.Before(before))
	assert.False(t, members.cutoff.After(after))
}

func TestPickDailyDrawsFromPoolAndRecords(t *testing.T) {
	members := &fakeMembers{members: []model.Member{
		{UserID: 1, Username: "alice"},
	}}
	chosen := &fakeChosen{}
	svc := NewSelectionService(members, chosen, &fakeImmunity{}, time.Hour)

	picked, err := svc.PickDaily(context.Background(), 100, "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, int64(1), picked.UserID)
	assert.Equal(t, []int64{1}, chosen.marked)
}

func TestPickDailyNeverPicksImmune(t *testing.T) {
	members := &fakeMembers{members: []model.Member{
		{UserID: 1, Username: "alice"},
		{UserID: 2, Username: "bob"},
	}}
	immunity := &fakeImmunity{immune: map[int64]bool{2: true}}
	chosen := &fakeChosen{}
	svc := NewSelectionService(members, chosen, immunity, time.Hour)

	// The draw is random; repeat enough times that an eligible immune
	// member would certainly surface.
	for i := 0; i < 50; i++ {
		picked, err := svc.PickDaily(context.Background(), 100, "2024-05-10")
		require.NoError(t, err)
		assert.Equal(t, int64(1), picked.UserID)
	}
}

func TestPickDailyAllImmune(t *testing.T) {
	members := &fakeMembers{members: []model.Member{
		{UserID: 1, Username: "alice"},
	}}
	immunity := &fakeImmunity{immune: map[int64]bool{1: true}}
	svc := NewSelectionService(members, &fakeChosen{}, immunity, time.Hour)

	_, err := svc.PickDaily(context.Background(), 100, "2024-05-10")
	assert.ErrorIs(t, err, ErrNoCandidates)
}
