package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rationbook/internal/models"
)

func (b *Bot) handleMessage(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	text := update.Message.Text

	switch {
	case text == "/start" || strings.EqualFold(text, "reset"):
		b.handleMainMenu(update)

	case text == btnPlanWeek || text == "/plan":
		b.handlePlanWeek(ctx, update)

	case text == btnSetName || text == "/name":
		b.handleNamePicker(ctx, update)

	case text == btnRationType || text == "/ration":
		b.handleRationPicker(update)

	case text == btnExportWeek || strings.HasPrefix(text, "/export_week"):
		if !b.isManager(update.Message.From.ID) {
			b.sendMessage(chatID, "Export is available to managers only.")
			return
		}
		b.handleExportWeek(ctx, update)

	default:
		b.sendMessage(chatID, "Use the menu below, or /start to reset.")
	}
}

func (b *Bot) handleMainMenu(update tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	s := b.getSession(chatID)

	greeting := "Welcome to the weekly ration planner!\n\n" +
		"Pick your name and ration type once, then plan which weekday meals you will claim ration for. " +
		"Weeks open for booking two weeks ahead."
	if s.planner.Name() != "" {
		greeting = fmt.Sprintf("Welcome back, %s!", s.planner.Name())
	}

	msg := tgbotapi.NewMessage(chatID, greeting)

	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnPlanWeek),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSetName),
			tgbotapi.NewKeyboardButton(btnRationType),
		),
	}
	if b.isManager(update.Message.From.ID) {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnExportWeek),
		))
	}
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(rows...)

	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("send main menu failed")
	}
}

// handlePlanWeek loads the current week from the API and renders the grid.
func (b *Bot) handlePlanWeek(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	s := b.getSession(chatID)

	if s.planner.Name() == "" {
		b.sendMessage(chatID, "Set your name first so bookings can be matched to you.")
		b.handleNamePicker(ctx, update)
		return
	}

	loadCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := s.planner.LoadWeek(loadCtx); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("week load failed, using local draft")
		b.sendMessage(chatID, "Could not reach the booking sheet; showing your local draft. Try again later.")
	}

	msg := tgbotapi.NewMessage(chatID, b.renderWeekText(s))
	msg.ReplyMarkup = b.renderWeekKeyboard(s)
	sent, err := b.bot.Send(msg)
	if err != nil {
		b.logger.Error().Err(err).Msg("send week view failed")
		return
	}
	s.weekMsgID = sent.MessageID
}

// handleNamePicker offers the namelist as an inline keyboard. Callback data
// carries indexes; Telegram caps callback payloads well below a long name.
func (b *Bot) handleNamePicker(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID
	s := b.getSession(chatID)

	names, err := b.api.Names(ctx, false)
	if err != nil {
		b.logger.Error().Err(err).Msg("namelist fetch failed")
		b.sendMessage(chatID, "Could not load the namelist. Try again later.")
		return
	}
	if len(names) == 0 {
		b.sendMessage(chatID, "The namelist is empty; ask a manager to fill it in.")
		return
	}
	s.names = names

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, name := range names {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(name, fmt.Sprintf("name:%d", i)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, "Who are you?")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("send name picker failed")
	}
}

func (b *Bot) handleRationPicker(update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, rt := range models.RationTypes {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(models.RationTypeLabels[rt], "ration:"+string(rt)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, "Ration type (applies to all your bookings, no per-day override):")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("send ration picker failed")
	}
}
