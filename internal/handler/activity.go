package handler

import (
	"context"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"chromobot/internal/repository"
)

// ActivityHandler passively tracks group activity so the recent-user
// pool stays current. It never replies.
type ActivityHandler struct {
	userRepo *repository.UserRepository
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(userRepo *repository.UserRepository) *ActivityHandler {
	return &ActivityHandler{userRepo: userRepo}
}

// HandleMessage records the author of any group message.
func (h *ActivityHandler) HandleMessage(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}
	if chat.Type != tele.ChatGroup && chat.Type != tele.ChatSuperGroup {
		return nil
	}

	if err := h.userRepo.Observe(context.Background(), chat.ID, sender.ID, sender.Username); err != nil {
		log.Error().Err(err).
			Int64("chat_id", chat.ID).
			Int64("user_id", sender.ID).
			Msg("Failed to track activity")
	}
	return nil
}

// HandleJoin records users entering a chat.
func (h *ActivityHandler) HandleJoin(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || c.Message() == nil {
		return nil
	}

	msg := c.Message()
	joined := msg.UsersJoined
	if len(joined) == 0 && msg.UserJoined != nil {
		joined = []tele.User{*msg.UserJoined}
	}

	for _, u := range joined {
		if err := h.userRepo.Observe(context.Background(), chat.ID, u.ID, u.Username); err != nil {
			log.Error().Err(err).
				Int64("chat_id", chat.ID).
				Int64("user_id", u.ID).
				Msg("Failed to track joined user")
		}
	}
	return nil
}
