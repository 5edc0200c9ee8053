package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"chromobot/internal/model"
	"chromobot/internal/repository"
)

// Gift-related errors.
var (
	ErrInvalidAmount     = errors.New("invalid amount: must be positive")
	ErrSelfGift          = errors.New("cannot gift to self")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUserNotFound      = errors.New("user not found")
)

// Alert describes what the threshold check after a gift produced.
type Alert int

const (
	// AlertNone: the recipient's daily received total stayed under the
	// threshold.
	AlertNone Alert = iota
	// AlertChosen: the recipient reached the threshold and was marked
	// as the daily member.
	AlertChosen
	// AlertBounced: the recipient is immune, the gift's counter amount
	// was redirected to a random substitute.
	AlertBounced
	// AlertBounceFailed: the recipient is immune but no eligible
	// substitute exists; counters stay where they landed.
	AlertBounceFailed
)

// GiftResult is the full outcome of a gift: the new giver balance, the
// recipient's running received total and whatever the threshold check
// decided.
type GiftResult struct {
	NewBalance     int64
	RecipientTotal int64
	Alert          Alert

	// Substitute fields are set when Alert is AlertBounced.
	Substitute       model.Member
	SubstituteTotal  int64
	SubstituteChosen bool
}

// balanceAdjuster applies signed balance deltas.
type balanceAdjuster interface {
	Adjust(ctx context.Context, chatID, userID int64, delta int64) (int64, error)
}

// giftJournal moves the daily counters a gift touches.
type giftJournal interface {
	RecordTransfer(ctx context.Context, chatID, giverID, recipientID, amount int64, day string) error
	ReceivedToday(ctx context.Context, chatID, userID int64, day string) (int64, error)
	Bounce(ctx context.Context, chatID, fromID, toID, amount int64, day string) (int64, error)
	MarkChosen(ctx context.Context, chatID, userID int64, day string) error
}

// candidateSource provides the eligible pool for bounce substitutes.
type candidateSource interface {
	Pool(ctx context.Context, chatID int64) ([]model.Member, error)
}

// GiftService transfers chromosomes between chat members. A gift
// debits the giver's balance and moves daily counters; the recipient's
// balance is never credited, receiving only raises the daily received
// counter that feeds the threshold alert.
type GiftService struct {
	userRepo  balanceAdjuster
	journal   giftJournal
	immunity  immunityChecker
	selection candidateSource
	threshold int64
}

// NewGiftService creates a new GiftService instance.
func NewGiftService(
	userRepo balanceAdjuster,
	journal giftJournal,
	immunity immunityChecker,
	selection candidateSource,
	threshold int64,
) *GiftService {
	return &GiftService{
		userRepo:  userRepo,
		journal:   journal,
		immunity:  immunity,
		selection: selection,
		threshold: threshold,
	}
}

// Gift executes a gift of amount from giver to target for the day.
// The debit is rejected atomically when it would drive the giver's
// balance negative; in that case no counter moves either.
func (s *GiftService) Gift(ctx context.Context, chatID, giverID int64, target model.Member, amount int64, day string) (*GiftResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if giverID == target.UserID {
		return nil, ErrSelfGift
	}

	newBalance, err := s.userRepo.Adjust(ctx, chatID, giverID, -amount)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to debit giver: %w", err)
	}

	if err := s.journal.RecordTransfer(ctx, chatID, giverID, target.UserID, amount, day); err != nil {
		return nil, fmt.Errorf("failed to record transfer: %w", err)
	}

	result := &GiftResult{NewBalance: newBalance}

	total, err := s.journal.ReceivedToday(ctx, chatID, target.UserID, day)
	if err != nil {
		return nil, err
	}
	result.RecipientTotal = total

	// Announce whenever the running total is at or past the threshold
	// after this gift; a later gift the same day fires again.
	if total < s.threshold {
		return result, nil
	}

	immune, err := s.immunity.IsImmune(ctx, chatID, target.UserID, target.Username)
	if err != nil {
		return nil, err
	}

	if !immune {
		if err := s.journal.MarkChosen(ctx, chatID, target.UserID, day); err != nil {
			return nil, err
		}
		result.Alert = AlertChosen
		return result, nil
	}

	return s.bounce(ctx, chatID, target, amount, day, result)
}

// bounce redirects the gift's counter amount from the immune recipient
// to a random non-immune, non-recipient member of the active pool.
func (s *GiftService) bounce(ctx context.Context, chatID int64, target model.Member, amount int64, day string, result *GiftResult) (*GiftResult, error) {
	pool, err := s.selection.Pool(ctx, chatID)
	if err != nil {
		return nil, err
	}

	candidates := pool[:0]
	for _, m := range pool {
		if m.UserID != target.UserID {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		result.Alert = AlertBounceFailed
		return result, nil
	}

	substitute := candidates[rand.Intn(len(candidates))]

	subTotal, err := s.journal.Bounce(ctx, chatID, target.UserID, substitute.UserID, amount, day)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("chat_id", chatID).
		Int64("from", target.UserID).
		Int64("to", substitute.UserID).
		Int64("amount", amount).
		Msg("Bounced received counter off immune recipient")

	result.Alert = AlertBounced
	result.Substitute = substitute
	result.SubstituteTotal = subTotal

	if subTotal >= s.threshold {
		if err := s.journal.MarkChosen(ctx, chatID, substitute.UserID, day); err != nil {
			return nil, err
		}
		result.SubstituteChosen = true
	}

	return result, nil
}
