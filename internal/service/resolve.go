package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"chromobot/internal/model"
	"chromobot/internal/repository"
)

// Resolution errors.
var (
	ErrUnknownTarget = errors.New("target could not be resolved")
)

var (
	mentionRE = regexp.MustCompile(`@([A-Za-z0-9_]{5,})`)
	userIDRE  = regexp.MustCompile(`\d{6,}`)
	numberRE  = regexp.MustCompile(`\d+`)
)

// userLookup is the slice of the user repository the resolver needs.
type userLookup interface {
	Observe(ctx context.Context, chatID, userID int64, username string) error
	GetByUsername(ctx context.Context, chatID int64, username string) (*model.User, error)
	GetByID(ctx context.Context, chatID, userID int64) (*model.User, error)
}

// TargetResolver finds the user a command is aimed at. Resolution
// order, first match wins:
//
//  1. the author of the message being replied to
//  2. a @username mention in the command text
//  3. a numeric user id (6+ digits) in the command text
//
// Mentions and ids only resolve to users already known in the chat.
type TargetResolver struct {
	userRepo userLookup
}

// NewTargetResolver creates a new TargetResolver instance.
func NewTargetResolver(userRepo userLookup) *TargetResolver {
	return &TargetResolver{userRepo: userRepo}
}

// Resolve returns the target member for a command. reply is the author
// of the replied-to message, nil when the command is not a reply.
// Returns ErrUnknownTarget when nothing matches.
func (r *TargetResolver) Resolve(ctx context.Context, chatID int64, reply *model.Member, text string) (model.Member, error) {
	if reply != nil {
		// A replied-to author counts as observed activity.
		if err := r.userRepo.Observe(ctx, chatID, reply.UserID, reply.Username); err != nil {
			return model.Member{}, err
		}
		return *reply, nil
	}

	if m := mentionRE.FindStringSubmatch(text); m != nil {
		user, err := r.userRepo.GetByUsername(ctx, chatID, m[1])
		if err == nil {
			return model.Member{UserID: user.UserID, Username: user.Username}, nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return model.Member{}, err
		}
	}

	if ids := userIDRE.FindAllString(text, -1); len(ids) > 0 {
		id, convErr := strconv.ParseInt(ids[len(ids)-1], 10, 64)
		if convErr == nil {
			user, err := r.userRepo.GetByID(ctx, chatID, id)
			if err == nil {
				return model.Member{UserID: user.UserID, Username: user.Username}, nil
			}
			if !errors.Is(err, repository.ErrUserNotFound) {
				return model.Member{}, err
			}
		}
	}

	return model.Member{}, ErrUnknownTarget
}

// LastAmount extracts the gift amount from the command text: the last
// number token. Returns false when the text carries no number.
func LastAmount(text string) (int64, bool) {
	nums := numberRE.FindAllString(text, -1)
	if len(nums) == 0 {
		return 0, false
	}
	amount, err := strconv.ParseInt(nums[len(nums)-1], 10, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

// MentionedUsername extracts the first @username token from text,
// "" when absent.
func MentionedUsername(text string) string {
	if m := mentionRE.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
