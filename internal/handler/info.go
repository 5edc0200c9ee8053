package handler

import (
	"fmt"

	tele "gopkg.in/telebot.v3"
)

// InfoHandler handles the informational commands.
type InfoHandler struct{}

// NewInfoHandler creates a new InfoHandler.
func NewInfoHandler() *InfoHandler {
	return &InfoHandler{}
}

// HandleStart handles the /start command.
func (h *InfoHandler) HandleStart(c tele.Context) error {
	return c.Reply(
		"Bot activo.\n" +
			"Comandos:\n" +
			"• /down — Elige el mogólico del día (excluye inmunes)\n" +
			"• /regalar @usuario cantidad — Regalar cromosomas (o responder con /regalar 10, o /regalar <user_id> 10)\n" +
			"• /check — Mogólicos del día (recibidos sobre el umbral + random del día)\n" +
			"• /randomdown — chequea si alguien está ON (acepta reply / @ / id)\n" +
			"• /esdaun <texto|@usuario> — tira si hoy 'está re daun' o no\n\n" +
			"Comandos privados (owner): /immune_add @usuario <chat_id> | /immune_remove @usuario <chat_id> | /immune_list <chat_id>\n" +
			"En grupo podés usar /chatid para obtener el chat_id.",
	)
}

// HandleComandos handles the /comandos command.
func (h *InfoHandler) HandleComandos(c tele.Context) error {
	return c.Reply(
		"/down — Elige el mogólico del día (excluye inmunes)\n" +
			"/regalar — /regalar @usuario 10 | responder con /regalar 10 | /regalar <user_id> 10\n" +
			"/check — Lista del día\n" +
			"/randomdown — (reply / @ / id)\n" +
			"/esdaun <texto|@usuario>\n" +
			"/chatid — muestra el ID del chat\n" +
			"Privado: /immune_add /immune_remove /immune_list",
	)
}

// HandleChatID handles the /chatid command: report the current chat's
// identifier, needed as the argument of the immunity commands.
func (h *InfoHandler) HandleChatID(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	title := chat.Title
	if title == "" {
		title = "(sin título)"
	}
	return c.Reply(fmt.Sprintf("chat_id: `%d`\nTítulo: %s", chat.ID, title), tele.ModeMarkdown)
}
