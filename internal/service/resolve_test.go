package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chromobot/internal/model"
	"chromobot/internal/repository"
)

// fakeLookup is an in-memory userLookup for resolver tests.
type fakeLookup struct {
	users    []model.User
	observed []model.Member
}

func (f *fakeLookup) Observe(_ context.Context, chatID, userID int64, username string) error {
	f.observed = append(f.observed, model.Member{UserID: userID, Username: username})
	return nil
}

func (f *fakeLookup) GetByUsername(_ context.Context, chatID int64, username string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ChatID == chatID && strings.EqualFold(f.users[i].Username, username) {
			return &f.users[i], nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeLookup) GetByID(_ context.Context, chatID, userID int64) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ChatID == chatID && f.users[i].UserID == userID {
			return &f.users[i], nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func TestResolve_ReplyWins(t *testing.T) {
	lookup := &fakeLookup{users: []model.User{
		{ChatID: 100, UserID: 1, Username: "alice"},
	}}
	resolver := NewTargetResolver(lookup)

	reply := &model.Member{UserID: 7, Username: "replied"}

	// The reply author beats both the mention and the id in the text
	target, err := resolver.Resolve(context.Background(), 100, reply, "/regalar @alice 123456 10")
	require.NoError(t, err)
	assert.Equal(t, *reply, target)

	// Replying counts as activity
	require.Len(t, lookup.observed, 1)
	assert.Equal(t, *reply, lookup.observed[0])
}

func TestResolve_MentionBeatsID(t *testing.T) {
	lookup := &fakeLookup{users: []model.User{
		{ChatID: 100, UserID: 1, Username: "alice"},
		{ChatID: 100, UserID: 123456, Username: "bob"},
	}}
	resolver := NewTargetResolver(lookup)

	target, err := resolver.Resolve(context.Background(), 100, nil, "/regalar @alice 123456 10")
	require.NoError(t, err)
	assert.Equal(t, int64(1), target.UserID)
}

func TestResolve_MentionCaseInsensitive(t *testing.T) {
	lookup := &fakeLookup{users: []model.User{
		{ChatID: 100, UserID: 1, Username: "Alice"},
	}}
	resolver := NewTargetResolver(lookup)

	target, err := resolver.Resolve(context.Background(), 100, nil, "/esdaun @aLiCe")
	require.NoError(t, err)
	assert.Equal(t, int64(1), target.UserID)
}

func TestResolve_ShortMentionIgnored(t *testing.T) {
	lookup := &fakeLookup{users: []model.User{
		{ChatID: 100, UserID: 1, Username: "bob"},
	}}
	resolver := NewTargetResolver(lookup)

	// Telegram usernames are at least 5 characters, @bob is noise
	_, err := resolver.Resolve(context.Background(), 100, nil, "/esdaun @bob")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestResolve_NumericID(t *testing.T) {
	lookup := &fakeLookup{users: []model.User{
		{ChatID: 100, UserID: 123456789, Username: "carol"},
	}}
	resolver := NewTargetResolver(lookup)

	target, err := resolver.Resolve(context.Background(), 100, nil, "/randomdown 123456789")
	require.NoError(t, err)
	assert.Equal(t, "carol", target.Username)
}

func TestResolve_LastIDWins(t *testing.T) {
	lookup := &fakeLookup{users: []model.User{
		{ChatID: 100, UserID: 111111, Username: "first"},
		{ChatID: 100, UserID: 222222, Username: "second"},
	}}
	resolver := NewTargetResolver(lookup)

	target, err := resolver.Resolve(context.Background(), 100, nil, "111111 222222")
	require.NoError(t, err)
	assert.Equal(t, int64(222222), target.UserID)
}

func TestResolve_ShortNumberIsNotID(t *testing.T) {
	lookup := &fakeLookup{users: []model.User{
		{ChatID: 100, UserID: 12345, Username: "dave"},
	}}
	resolver := NewTargetResolver(lookup)

	// Five digits reads as an amount, not a user id
	_, err := resolver.Resolve(context.Background(), 100, nil, "/regalar 12345")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestResolve_UnknownMentionFallsThrough(t *testing.T) {
	lookup := &fakeLookup{users: []model.User{
		{ChatID: 100, UserID: 123456, Username: "known"},
	}}
	resolver := NewTargetResolver(lookup)

	// The mention misses but the id still resolves
	target, err := resolver.Resolve(context.Background(), 100, nil, "/regalar @stranger 123456")
	require.NoError(t, err)
	assert.Equal(t, int64(123456), target.UserID)
}

func TestResolve_NothingMatches(t *testing.T) {
	resolver := NewTargetResolver(&fakeLookup{})

	_, err := resolver.Resolve(context.Background(), 100, nil, "/regalar gracias")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestLastAmount(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   int64
		wantOK bool
	}{
		{"single number", "/regalar @alice 10", 10, true},
		{"last number wins", "/regalar 123456 25", 25, true},
		{"no number", "/regalar @alice", 0, false},
		{"number embedded in word", "dale v2 50", 50, true},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LastAmount(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMentionedUsername(t *testing.T) {
	assert.Equal(t, "alice_99", MentionedUsername("/immune_add @alice_99 100"))
	assert.Equal(t, "", MentionedUsername("/immune_add 100"))
	assert.Equal(t, "", MentionedUsername("@bob"))
}
