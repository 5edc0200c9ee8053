// Package handler provides Telegram bot command handlers.
package handler

import (
	"fmt"

	tele "gopkg.in/telebot.v3"

	"chromobot/internal/model"
)

// mention renders a user reference for a Markdown reply: @username when
// known, a tg://user deep link otherwise.
func mention(userID int64, username string) string {
	if username != "" {
		return "@" + username
	}
	return fmt.Sprintf("[usuario](tg://user?id=%d)", userID)
}

// replyAuthor returns the author of the message being replied to,
// nil when the command is not a reply.
func replyAuthor(c tele.Context) *model.Member {
	msg := c.Message()
	if msg == nil || msg.ReplyTo == nil || msg.ReplyTo.Sender == nil {
		return nil
	}
	u := msg.ReplyTo.Sender
	return &model.Member{UserID: u.ID, Username: u.Username}
}
