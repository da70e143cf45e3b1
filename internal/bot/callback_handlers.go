package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rationbook/internal/client"
	"rationbook/internal/models"
	"rationbook/internal/planner"
)

// handleCallbackQuery dispatches inline keyboard presses. Every press gets
// exactly one callback answer (silent or alert) so Telegram clears the
// spinner, and mutations re-render the week view in place.
func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) {
	cb := update.CallbackQuery
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	s := b.getSession(chatID)
	data := cb.Data

	var alert string
	refresh := false

	switch {
	case strings.HasPrefix(data, "day:"):
		iso := strings.TrimPrefix(data, "day:")
		day := s.planner.Plan().Days[iso]
		s.planner.SetDayEnabled(iso, !day.Enabled)
		refresh = true

	case strings.HasPrefix(data, "meal:"):
		parts := strings.SplitN(data, ":", 3)
		if len(parts) != 3 {
			break
		}
		iso, meal := parts[1], models.Meal(parts[2])
		if !s.planner.Plan().Days[iso].Enabled {
			alert = "Enable the day first."
			break
		}
		s.planner.ToggleMeal(iso, meal)
		refresh = true

	case strings.HasPrefix(data, "locked:"):
		iso := strings.TrimPrefix(data, "locked:")
		switch s.planner.DayLock(iso) {
		case planner.DayLockedPast:
			alert = "That day is in the past."
		case planner.DayLockedReadOnlyWeek:
			alert = "This week is read-only; it starts inside the 2-week lead time."
		}

	case data == "week:prev":
		alert, refresh = b.navigateWeek(ctx, s, s.planner.PrevWeek)

	case data == "week:next":
		alert, refresh = b.navigateWeek(ctx, s, s.planner.NextWeek)

	case data == "week:jump":
		alert, refresh = b.navigateWeek(ctx, s, s.planner.JumpToEarliestBookable)

	case data == "clear":
		s.planner.ClearWeek()
		refresh = true

	case data == "submit":
		alert = b.submitWeek(ctx, s)
		refresh = true

	case strings.HasPrefix(data, "name:"):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, "name:"))
		if err != nil || idx < 0 || idx >= len(s.names) {
			// Stale picker, e.g. after a bot restart dropped the snapshot.
			alert = "That list has expired; open the name picker again."
			break
		}
		s.planner.SetName(s.names[idx])
		b.sendMessage(chatID, fmt.Sprintf("Name set to %s.", s.names[idx]))

	case strings.HasPrefix(data, "ration:"):
		code := strings.TrimPrefix(data, "ration:")
		label, ok := models.RationTypeLabels[models.RationType(code)]
		if !ok {
			break
		}
		s.planner.SetRationType(code)
		b.sendMessage(chatID, fmt.Sprintf("Ration type set to %s.", label))
	}

	answer := tgbotapi.NewCallback(cb.ID, "")
	if alert != "" {
		answer = tgbotapi.NewCallbackWithAlert(cb.ID, alert)
	}
	if _, err := b.bot.Request(answer); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("answer callback failed")
	}

	if refresh {
		b.refreshWeekView(chatID, cb.Message.MessageID, s)
	}
}

// navigateWeek moves the week and, when a backend is reachable, reloads the
// target week so the grid reflects the saved plan.
func (b *Bot) navigateWeek(ctx context.Context, s *session, move func() error) (alert string, refresh bool) {
	if err := move(); err != nil {
		if errors.Is(err, planner.ErrUnsavedChanges) {
			return "You have unsaved changes. Submit or clear them first.", false
		}
		return err.Error(), false
	}

	loadCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := s.planner.LoadWeek(loadCtx); err != nil {
		b.logger.Warn().Err(err).Msg("week load failed, using local draft")
	}
	return "", true
}

func (b *Bot) submitWeek(ctx context.Context, s *session) string {
	if !s.planner.CanSubmit() {
		switch {
		case s.planner.ReadOnlyWeek():
			return "This week is read-only."
		case s.planner.Name() == "":
			return "Set your name first."
		case s.planner.RationType() == "":
			return "Pick a ration type first."
		default:
			return "Nothing changed since your last submission."
		}
	}

	submitCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	res, err := s.planner.Submit(submitCtx)
	if err != nil {
		b.logger.Error().Err(err).Str("week_start", s.planner.WeekStart()).Msg("submit failed")
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return "Submission rejected: " + apiErr.Message
		}
		return "Submission failed; your draft is kept. Try again later."
	}
	return fmt.Sprintf("Week submitted: %d rows (%d updated, %d added).",
		res.TotalWritten, res.Updated, res.Appended)
}
