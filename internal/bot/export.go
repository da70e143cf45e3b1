package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"

	"rationbook/internal/dates"
	"rationbook/internal/models"
	"rationbook/internal/plan"
)

const exportSheet = "Week"

// handleExportWeek builds an xlsx grid of everyone's bookings for one week
// and sends it to the requesting manager. Optional argument: the week start,
// "/export_week 2025-06-30"; default is the earliest bookable week.
func (b *Bot) handleExportWeek(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	weekStart := plan.MinBookableWeekStart(time.Now())
	if parts := strings.Fields(update.Message.Text); len(parts) > 1 {
		ws, err := dates.NormalizeWeekStart(parts[1])
		if err != nil {
			b.sendMessage(chatID, "Usage: /export_week YYYY-MM-DD (any date inside the week works)")
			return
		}
		weekStart = ws
	}

	b.sendMessage(chatID, fmt.Sprintf("Exporting week of %s...", weekStart))

	filePath, err := b.exportWeekToExcel(ctx, weekStart)
	if err != nil {
		b.logger.Error().Err(err).Str("week_start", weekStart).Msg("week export failed")
		b.sendMessage(chatID, "Export failed. Try again later.")
		return
	}

	file, err := os.Open(filePath)
	if err != nil {
		b.logger.Error().Err(err).Str("path", filePath).Msg("open export file failed")
		b.sendMessage(chatID, "Export failed. Try again later.")
		return
	}
	defer file.Close()

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{
		Name:   filepath.Base(filePath),
		Reader: file,
	})
	doc.Caption = fmt.Sprintf("📊 Ration bookings for the week of %s", weekStart)
	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error().Err(err).Msg("send export document failed")
		b.sendMessage(chatID, "Could not send the export file.")
	}
}

// exportWeekToExcel fetches every listed person's plan for the week and lays
// them out as names x weekdays. Cells hold the claimed meal codes.
func (b *Bot) exportWeekToExcel(ctx context.Context, weekStart string) (string, error) {
	if err := os.MkdirAll(b.exportPath, 0755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	names, err := b.api.Names(ctx, false)
	if err != nil {
		return "", fmt.Errorf("error fetching namelist: %v", err)
	}

	weekDays, err := dates.MonFri(weekStart)
	if err != nil {
		return "", fmt.Errorf("bad week start %q: %v", weekStart, err)
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	f.SetCellValue(exportSheet, "A1", fmt.Sprintf("Week of %s", weekStart))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, iso := range weekDays {
		cell, _ := excelize.CoordinatesToCellName(i+2, 2)
		f.SetCellValue(exportSheet, cell, dates.FormatDayLabel(iso))
		if headerStyle != 0 {
			f.SetCellStyle(exportSheet, cell, cell, headerStyle)
		}
	}

	nameStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	for i, name := range names {
		row := i + 3
		cell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellValue(exportSheet, cell, name)
		if nameStyle != 0 {
			f.SetCellStyle(exportSheet, cell, cell, nameStyle)
		}

		res, err := b.api.FetchWeek(ctx, name, weekStart)
		if err != nil {
			b.logger.Warn().Err(err).Str("name", name).Msg("fetch week for export failed")
			continue
		}

		for j, iso := range weekDays {
			day, ok := res.Plan.Days[iso]
			if !ok || !day.Enabled {
				continue
			}
			var codes []string
			for _, m := range models.Meals {
				if day.Meals.Get(m) {
					codes = append(codes, string(m))
				}
			}
			cell, _ := excelize.CoordinatesToCellName(j+2, row)
			f.SetCellValue(exportSheet, cell, strings.Join(codes, "+"))
		}
	}

	f.SetColWidth(exportSheet, "A", "A", 25)
	f.SetColWidth(exportSheet, "B", "F", 14)
	f.MergeCell(exportSheet, "A1", "F1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if titleStyle != 0 {
		f.SetCellStyle(exportSheet, "A1", "A1", titleStyle)
	}

	f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("rations_%s.xlsx", weekStart)
	filePath := filepath.Join(b.exportPath, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}
	return filePath, nil
}
