package bot

import (
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rationbook/internal/dates"
	"rationbook/internal/models"
	"rationbook/internal/planner"
)

func (b *Bot) renderWeekText(s *session) string {
	p := s.planner

	var sb strings.Builder
	fmt.Fprintf(&sb, "Week of %s (Mon-Fri)\n", p.WeekStart())
	fmt.Fprintf(&sb, "Earliest editable week starts %s (2-week lead time)\n", p.MinBookableWeek())
	if p.ReadOnlyWeek() {
		sb.WriteString("This week is read-only.\n")
	}

	sb.WriteString("\n")
	if p.Name() != "" {
		fmt.Fprintf(&sb, "Name: %s\n", p.Name())
	}
	if rt := p.RationType(); rt != "" {
		label := models.RationTypeLabels[models.RationType(rt)]
		if label == "" {
			label = rt
		}
		fmt.Fprintf(&sb, "Ration type: %s\n", label)
	}
	if p.Dirty() && !p.ReadOnlyWeek() {
		sb.WriteString("\nUnsaved changes. Submit to save.")
	}
	return sb.String()
}

func (b *Bot) renderWeekKeyboard(s *session) tgbotapi.InlineKeyboardMarkup {
	p := s.planner
	weekPlan := p.Plan()

	dayKeys := make([]string, 0, len(weekPlan.Days))
	for iso := range weekPlan.Days {
		dayKeys = append(dayKeys, iso)
	}
	sort.Strings(dayKeys)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, iso := range dayKeys {
		day := weekPlan.Days[iso]
		locked := p.DayLock(iso) != planner.DayEditable

		label := dates.FormatDayLabel(iso)
		switch {
		case locked:
			label = "🔒 " + label
		case day.Enabled:
			label = "✅ " + label
		default:
			label = "▫️ " + label
		}

		dayData := "day:" + iso
		if locked {
			dayData = "locked:" + iso
		}

		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(label, dayData),
		}
		for _, m := range models.Meals {
			mealLabel := string(m)
			if day.Meals.Get(m) {
				mealLabel = "✅" + mealLabel
			}
			mealData := fmt.Sprintf("meal:%s:%s", iso, m)
			if locked {
				mealData = "locked:" + iso
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(mealLabel, mealData))
		}
		rows = append(rows, row)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Prev", "week:prev"),
		tgbotapi.NewInlineKeyboardButtonData("Next ➡️", "week:next"),
		tgbotapi.NewInlineKeyboardButtonData("⏩ Earliest", "week:jump"),
	))

	if !p.ReadOnlyWeek() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Clear week", "clear"),
			tgbotapi.NewInlineKeyboardButtonData("✉️ Submit", "submit"),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// refreshWeekView edits the rendered grid in place after a state change.
func (b *Bot) refreshWeekView(chatID int64, messageID int, s *session) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, b.renderWeekText(s), b.renderWeekKeyboard(s))
	if _, err := b.bot.Send(edit); err != nil {
		b.logger.Debug().Err(err).Msg("week view refresh failed")
	}
}
