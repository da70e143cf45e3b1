// Package bot is the Telegram front-end of the weekly ration planner. Each
// chat gets its own planner session; drafts and identity live in the shared
// planner store, scoped by chat id, so sessions survive restarts when Redis
// is configured.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"rationbook/internal/client"
	"rationbook/internal/planner"
)

const (
	btnPlanWeek   = "📋 Plan my week"
	btnSetName    = "👤 Set my name"
	btnRationType = "🍽 Ration type"
	btnExportWeek = "💾 Export week"
)

type Bot struct {
	bot        *tgbotapi.BotAPI
	api        *client.Client
	store      planner.Store
	managers   map[int64]struct{}
	exportPath string
	logger     zerolog.Logger

	sessions map[int64]*session
}

// session is one chat's planner plus the transient UI state around it.
type session struct {
	planner *planner.Planner
	// Namelist snapshot backing the name picker; callback data carries
	// indexes into it, not the names themselves.
	names []string
	// Message id of the rendered week view, edited in place on changes.
	weekMsgID int
}

func New(token string, api *client.Client, store planner.Store, managers []int64, exportPath string, logger zerolog.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	mgrs := make(map[int64]struct{}, len(managers))
	for _, id := range managers {
		mgrs[id] = struct{}{}
	}

	return &Bot{
		bot:        botAPI,
		api:        api,
		store:      store,
		managers:   mgrs,
		exportPath: exportPath,
		logger:     logger,
		sessions:   make(map[int64]*session),
	}, nil
}

// Start polls updates until ctx is cancelled. Updates are handled on this
// goroutine, so a session never sees concurrent mutations.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	b.logger.Info().Str("account", b.bot.Self.UserName).Msg("bot authorized")

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.CallbackQuery != nil {
				b.handleCallbackQuery(ctx, update)
				continue
			}
			if update.Message != nil {
				b.handleMessage(ctx, update)
			}
		}
	}
}

func (b *Bot) isManager(userID int64) bool {
	_, ok := b.managers[userID]
	return ok
}

// getSession returns the chat's planner session, creating it on first use.
func (b *Bot) getSession(chatID int64) *session {
	s, ok := b.sessions[chatID]
	if !ok {
		scope := fmt.Sprintf("planner:%d", chatID)
		s = &session{planner: planner.New(b.store, b.api, nil, scope)}
		b.sessions[chatID] = s
	}
	return s
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
	}
}
