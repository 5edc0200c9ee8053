package handler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"chromobot/internal/pkg/gameday"
	"chromobot/internal/repository"
	"chromobot/internal/service"
)

// DailyHandler handles the daily-member commands: the random pick, the
// coin-flip tease, the canned-phrase tease and the day's listing.
type DailyHandler struct {
	userRepo  *repository.UserRepository
	journal   *repository.JournalRepository
	selection *service.SelectionService
	resolver  *service.TargetResolver
	clock     gameday.Clock
	threshold int64
}

// NewDailyHandler creates a new DailyHandler.
func NewDailyHandler(
	userRepo *repository.UserRepository,
	journal *repository.JournalRepository,
	selection *service.SelectionService,
	resolver *service.TargetResolver,
	clock gameday.Clock,
	threshold int64,
) *DailyHandler {
	return &DailyHandler{
		userRepo:  userRepo,
		journal:   journal,
		selection: selection,
		resolver:  resolver,
		clock:     clock,
		threshold: threshold,
	}
}

// HandleDown handles the /down command: pick and announce the daily
// member from the chat's active pool.
func (h *DailyHandler) HandleDown(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}

	if err := h.userRepo.Observe(ctx, chat.ID, sender.ID, sender.Username); err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to observe sender")
		return c.Reply("Algo salió mal, probá de nuevo.")
	}

	picked, err := h.selection.PickDaily(ctx, chat.ID, h.clock.Today())
	if err != nil {
		if errors.Is(err, service.ErrNoCandidates) {
			return c.Reply("No encuentro usuarios activos en la última semana.")
		}
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Daily pick failed")
		return c.Reply("Algo salió mal, probá de nuevo.")
	}

	return c.Reply(
		fmt.Sprintf("El mogólico del día es %s", mention(picked.UserID, picked.Username)),
		tele.ModeMarkdown,
	)
}

// HandleRandomDown handles the /randomdown command: a 50/50 call on the
// target, marking them chosen on the "on" branch only.
func (h *DailyHandler) HandleRandomDown(c tele.Context) error {
	ctx := context.Background()
	chat := c.Chat()
	if chat == nil || c.Message() == nil {
		return nil
	}

	target, err := h.resolver.Resolve(ctx, chat.ID, replyAuthor(c), c.Message().Payload)
	if err != nil {
		if errors.Is(err, service.ErrUnknownTarget) {
			return c.Reply("Uso: /randomdown @usuario  • o •  responder con /randomdown  • o •  /randomdown <user_id>")
		}
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Target resolution failed")
		return c.Reply("Algo salió mal, probá de nuevo.")
	}

	m := mention(target.UserID, target.Username)
	if rand.Intn(2) == 0 {
		if err := h.selection.MarkChosen(ctx, chat.ID, target.UserID, h.clock.Today()); err != nil {
			log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to mark chosen")
		}
		return c.Reply(fmt.Sprintf("%s está re mogólico hoy 🔥", m), tele.ModeMarkdown)
	}
	return c.Reply(fmt.Sprintf("a %s no le agarró el daun todavía 😌", m), tele.ModeMarkdown)
}

// HandleEsdaun handles the /esdaun command: a canned random verdict on
// the trailing text or on the replied-to author. No state changes.
func (h *DailyHandler) HandleEsdaun(c tele.Context) error {
	if c.Message() == nil {
		return nil
	}

	target := strings.TrimSpace(c.Message().Payload)
	if target == "" {
		if author := replyAuthor(c); author != nil {
			target = mention(author.UserID, author.Username)
		}
	}
	if target == "" {
		return c.Reply("Uso: /esdaun <texto o @usuario> (o respondé a un mensaje)")
	}

	phrases := []string{
		fmt.Sprintf("Hoy %s está re daun", target),
		fmt.Sprintf("Por ahora a %s no se le activó el daun", target),
	}
	return c.Reply(phrases[rand.Intn(len(phrases))], tele.ModeMarkdown)
}

// HandleCheck handles the /check command: list today's over-threshold
// receivers and the de-duplicated chosen set.
func (h *DailyHandler) HandleCheck(c tele.Context) error {
	ctx := context.Background()
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	receivers, chosen, err := h.journal.TodayHighlights(ctx, chat.ID, h.clock.Today(), h.threshold)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to load highlights")
		return c.Reply("Algo salió mal, probá de nuevo.")
	}

	var lines []string
	if len(receivers) > 0 {
		lines = append(lines, fmt.Sprintf("*Recibieron > %d hoy:*", h.threshold))
		for _, r := range receivers {
			lines = append(lines, fmt.Sprintf("• %s — recibió %d", mention(r.UserID, r.Username), r.Received))
		}
	}
	if len(chosen) > 0 {
		lines = append(lines, "\n*Mogólico del día:*")
		for _, m := range chosen {
			lines = append(lines, fmt.Sprintf("• %s", mention(m.UserID, m.Username)))
		}
	}

	if len(lines) == 0 {
		return c.Reply("Hoy no hay destacados aún.")
	}
	return c.Reply("📋 *Lista del día*\n"+strings.Join(lines, "\n"), tele.ModeMarkdown)
}
