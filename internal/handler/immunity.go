package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"chromobot/internal/service"
)

// ImmunityHandler handles the owner-only immunity administration
// commands. They are issued in the private chat with the bot, so each
// takes an explicit numeric chat-id argument naming the target chat.
type ImmunityHandler struct {
	immunity *service.ImmunityService
}

// NewImmunityHandler creates a new ImmunityHandler.
func NewImmunityHandler(immunity *service.ImmunityService) *ImmunityHandler {
	return &ImmunityHandler{immunity: immunity}
}

// parseGrantArgs extracts the target chat id and the target user
// (reply author or @mention) from an immunity command.
func parseGrantArgs(c tele.Context) (chatID int64, userID int64, username string, ok bool) {
	if author := replyAuthor(c); author != nil {
		userID = author.UserID
		username = author.Username
	} else {
		username = service.MentionedUsername(c.Text())
	}

	for _, tok := range strings.Fields(c.Text())[1:] {
		id, err := strconv.ParseInt(tok, 10, 64)
		if err == nil {
			chatID = id
			break
		}
	}

	ok = chatID != 0 && (userID != 0 || username != "")
	return chatID, userID, username, ok
}

// HandleAdd handles the /immune_add command.
func (h *ImmunityHandler) HandleAdd(c tele.Context) error {
	ctx := context.Background()

	chatID, userID, username, ok := parseGrantArgs(c)
	if !ok {
		return c.Reply("Uso: /immune_add @usuario <chat_id>  • o •  en reply: /immune_add <chat_id>")
	}

	if err := h.immunity.Grant(ctx, chatID, userID, username); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to add immunity")
		return c.Reply("No se pudo agregar.")
	}

	log.Info().
		Int64("owner_id", c.Sender().ID).
		Int64("chat_id", chatID).
		Int64("user_id", userID).
		Str("username", username).
		Msg("Immunity granted")

	return c.Reply(fmt.Sprintf("👍 Agregado como inmune en chat %d: %s", chatID, describeGrant(userID, username)))
}

// HandleRemove handles the /immune_remove command.
func (h *ImmunityHandler) HandleRemove(c tele.Context) error {
	ctx := context.Background()

	chatID, userID, username, ok := parseGrantArgs(c)
	if !ok {
		return c.Reply("Uso: /immune_remove @usuario <chat_id>  • o •  en reply: /immune_remove <chat_id>")
	}

	removed, err := h.immunity.Revoke(ctx, chatID, userID, username)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to remove immunity")
		return c.Reply("No se pudo quitar.")
	}
	if removed == 0 {
		return c.Reply("No había registro para ese usuario.")
	}

	log.Info().
		Int64("owner_id", c.Sender().ID).
		Int64("chat_id", chatID).
		Int64("user_id", userID).
		Str("username", username).
		Msg("Immunity revoked")

	return c.Reply(fmt.Sprintf("🗑️ Quitado de inmunes en chat %d: %s", chatID, describeGrant(userID, username)))
}

// HandleList handles the /immune_list command.
func (h *ImmunityHandler) HandleList(c tele.Context) error {
	ctx := context.Background()

	args := strings.Fields(c.Text())
	if len(args) < 2 {
		return c.Reply("Uso: /immune_list <chat_id>")
	}
	chatID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return c.Reply("El chat_id debe ser numérico.")
	}

	entries, err := h.immunity.Entries(ctx, chatID)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to list immunity")
		return c.Reply("Algo salió mal, probá de nuevo.")
	}
	if len(entries) == 0 {
		return c.Reply("No hay inmunes en ese chat.")
	}

	var lines []string
	for _, e := range entries {
		lines = append(lines, "• "+describeGrant(e.UserID, e.Username))
	}
	return c.Reply("Inmunes:\n" + strings.Join(lines, "\n"))
}

// describeGrant renders an immunity entry for display.
func describeGrant(userID int64, username string) string {
	switch {
	case username != "":
		return "@" + username
	case userID != 0:
		return fmt.Sprintf("id=%d", userID)
	default:
		return "(desconocido)"
	}
}
