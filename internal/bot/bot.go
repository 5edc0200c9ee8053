package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"chromobot/internal/config"
	"chromobot/internal/handler"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	dailyHandler    *handler.DailyHandler
	giftHandler     *handler.GiftHandler
	immunityHandler *handler.ImmunityHandler
	infoHandler     *handler.InfoHandler
	activityHandler *handler.ActivityHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config          *config.Config
	DailyHandler    *handler.DailyHandler
	GiftHandler     *handler.GiftHandler
	ImmunityHandler *handler.ImmunityHandler
	InfoHandler     *handler.InfoHandler
	ActivityHandler *handler.ActivityHandler
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:             teleBot,
		cfg:             deps.Config,
		dailyHandler:    deps.DailyHandler,
		giftHandler:     deps.GiftHandler,
		immunityHandler: deps.ImmunityHandler,
		infoHandler:     deps.InfoHandler,
		activityHandler: deps.ActivityHandler,
	}

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(LoggingMiddleware())
}

// activityEndpoints are the message kinds that count as group activity.
// Any content a member posts keeps them in the recent-activity pool,
// not just text.
var activityEndpoints = []string{
	tele.OnText,
	tele.OnSticker,
	tele.OnPhoto,
	tele.OnVideo,
	tele.OnVoice,
	tele.OnAudio,
	tele.OnDocument,
	tele.OnAnimation,
	tele.OnVideoNote,
	tele.OnLocation,
	tele.OnContact,
}

// registerHandlers registers all command and event handlers.
func (b *Bot) registerHandlers() {
	// Informational commands
	b.bot.Handle("/start", b.infoHandler.HandleStart)
	b.bot.Handle("/comandos", b.infoHandler.HandleComandos)
	b.bot.Handle("/chatid", b.infoHandler.HandleChatID)

	// Daily member commands
	b.bot.Handle("/down", b.dailyHandler.HandleDown)
	b.bot.Handle("/check", b.dailyHandler.HandleCheck)
	b.bot.Handle("/randomdown", b.dailyHandler.HandleRandomDown)
	b.bot.Handle("/esdaun", b.dailyHandler.HandleEsdaun)

	// Gift command
	b.bot.Handle("/regalar", b.giftHandler.HandleRegalar)

	// Immunity administration (owner, private chat only)
	ownerGroup := b.bot.Group()
	ownerGroup.Use(OwnerMiddleware(b.cfg))
	ownerGroup.Handle("/immune_add", b.immunityHandler.HandleAdd)
	ownerGroup.Handle("/immune_remove", b.immunityHandler.HandleRemove)
	ownerGroup.Handle("/immune_list", b.immunityHandler.HandleList)

	// Passive activity tracking
	for _, endpoint := range activityEndpoints {
		b.bot.Handle(endpoint, b.activityHandler.HandleMessage)
	}
	b.bot.Handle(tele.OnUserJoined, b.activityHandler.HandleJoin)
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
