package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"chromobot/internal/pkg/gameday"
	"chromobot/internal/pkg/lock"
	"chromobot/internal/repository"
	"chromobot/internal/service"
)

const giftUsage = "Uso: /regalar @usuario 10  • o •  responder con /regalar 10  • o •  /regalar <user_id> 10"

// GiftHandler handles the /regalar command.
type GiftHandler struct {
	userRepo   *repository.UserRepository
	gift       *service.GiftService
	resolver   *service.TargetResolver
	memberLock *lock.MemberLock
	clock      gameday.Clock
	threshold  int64
}

// NewGiftHandler creates a new GiftHandler.
func NewGiftHandler(
	userRepo *repository.UserRepository,
	gift *service.GiftService,
	resolver *service.TargetResolver,
	memberLock *lock.MemberLock,
	clock gameday.Clock,
	threshold int64,
) *GiftHandler {
	return &GiftHandler{
		userRepo:   userRepo,
		gift:       gift,
		resolver:   resolver,
		memberLock: memberLock,
		clock:      clock,
		threshold:  threshold,
	}
}

// HandleRegalar handles the /regalar command: resolve target and
// amount, debit the giver, record the transfer and announce whatever
// the threshold check produced.
func (h *GiftHandler) HandleRegalar(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil || c.Message() == nil {
		return nil
	}

	if err := h.userRepo.Observe(ctx, chat.ID, sender.ID, sender.Username); err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to observe sender")
		return c.Reply("Algo salió mal, probá de nuevo.")
	}

	payload := c.Message().Payload

	target, err := h.resolver.Resolve(ctx, chat.ID, replyAuthor(c), payload)
	if err != nil {
		if errors.Is(err, service.ErrUnknownTarget) {
			return c.Reply(giftUsage)
		}
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Target resolution failed")
		return c.Reply("Algo salió mal, probá de nuevo.")
	}

	amount, ok := service.LastAmount(payload)
	if !ok || amount <= 0 {
		return c.Reply(giftUsage)
	}

	if target.UserID == sender.ID {
		return c.Reply("No podés regalarte a vos mismo.")
	}

	// Serialize the giver's debit against other handlers and the reset.
	h.memberLock.Lock(chat.ID, sender.ID)
	defer h.memberLock.Unlock(chat.ID, sender.ID)

	result, err := h.gift.Gift(ctx, chat.ID, sender.ID, target, amount, h.clock.Today())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientFunds):
			balance, balErr := h.userRepo.BalanceOf(ctx, chat.ID, sender.ID)
			if balErr != nil {
				balance = 0
			}
			return c.Reply(fmt.Sprintf("No te alcanza el saldo. Te quedan %d cromosomas.", balance))
		case errors.Is(err, service.ErrSelfGift):
			return c.Reply("No podés regalarte a vos mismo.")
		case errors.Is(err, service.ErrInvalidAmount):
			return c.Reply(giftUsage)
		case errors.Is(err, service.ErrUserNotFound):
			return c.Reply(giftUsage)
		}
		log.Error().Err(err).Int64("chat_id", chat.ID).Int64("giver", sender.ID).Msg("Gift failed")
		return c.Reply("Algo salió mal, probá de nuevo.")
	}

	targetMention := mention(target.UserID, target.Username)
	if err := c.Reply(
		fmt.Sprintf("Listo: regalaste %d cromosomas a %s. Te quedan %d.", amount, targetMention, result.NewBalance),
		tele.ModeMarkdown,
	); err != nil {
		return err
	}

	switch result.Alert {
	case service.AlertChosen:
		return c.Reply(
			fmt.Sprintf("¡%s es mogólico! (≥ %d)", targetMention, h.threshold),
			tele.ModeMarkdown,
		)
	case service.AlertBounceFailed:
		return c.Reply("El destinatario es inmune, pero no encuentro otro usuario activo para rebotar los cromosomas.")
	case service.AlertBounced:
		subMention := mention(result.Substitute.UserID, result.Substitute.Username)
		if err := c.Reply(
			fmt.Sprintf("Como %s es inmune, los cromosomas le rebotan y caen en %s.", targetMention, subMention),
			tele.ModeMarkdown,
		); err != nil {
			return err
		}
		if result.SubstituteChosen {
			return c.Reply(
				fmt.Sprintf("¡%s es mogólico! (≥ %d)", subMention, h.threshold),
				tele.ModeMarkdown,
			)
		}
	}
	return nil
}
