package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/insider_watchlist_bot/internal/model"
	"github.com/KotFed0t/insider_watchlist_bot/internal/service"
	"github.com/KotFed0t/insider_watchlist_bot/utils"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Watchlist"

type headerGroup struct {
	from, to string
	title    string
	color    string
	columns  []string
}

var headerGroups = []headerGroup{
	{from: "A", to: "D", title: "Company", color: "#cfe2f3", columns: []string{"ticker", "company", "insider", "title"}},
	{from: "E", to: "I", title: "Trade", color: "#d9ead3", columns: []string{"type", "price", "quantity", "value", "ownership change, %"}},
	{from: "J", to: "L", title: "Dates", color: "#f9cb9c", columns: []string{"trade date", "filing date", "already owned"}},
}

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, wl model.Watchlist) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	if len(wl) == 0 {
		return nil, "", service.ErrNothingToExport
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("trades", len(wl)))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err = f.SetSheetName("Sheet1", sheetName); err != nil {
		slog.Error("got error while renaming Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err = g.fillHeader(f); err != nil {
		slog.Error("got error while filling header", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	for i, trade := range wl {
		g.fillRow(f, i+3, trade)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillHeader(f *excelize.File) error {
	for _, group := range headerGroups {
		if err := f.MergeCell(sheetName, group.from+"1", group.to+"1"); err != nil {
			return err
		}

		_ = f.SetCellStr(sheetName, group.from+"1", group.title)

		styleID, err := f.NewStyle(&excelize.Style{
			Alignment: &excelize.Alignment{
				Horizontal: "center",
				Vertical:   "center",
			},
			Font: &excelize.Font{
				Bold: true,
				Size: 11,
			},
			Fill: excelize.Fill{
				Type:    "pattern",
				Pattern: 1,
				Color:   []string{group.color},
			},
		})
		if err != nil {
			return err
		}

		if err := f.SetCellStyle(sheetName, group.from+"1", group.from+"1", styleID); err != nil {
			return fmt.Errorf("apply style to %s: %w", group.title, err)
		}

		col := group.from
		for _, name := range group.columns {
			_ = f.SetCellStr(sheetName, col+"2", name)
			col = nextColumn(col)
		}
	}

	return nil
}

func (g *XSLSXGenerator) fillRow(f *excelize.File, row int, trade model.TradeRecord) {
	cell := func(col string) string { return fmt.Sprintf("%s%d", col, row) }

	_ = f.SetCellStr(sheetName, cell("A"), trade.Ticker)
	_ = f.SetCellStr(sheetName, cell("B"), trade.CompanyName)
	_ = f.SetCellStr(sheetName, cell("C"), trade.InsiderName)
	_ = f.SetCellStr(sheetName, cell("D"), trade.Title)

	_ = f.SetCellStr(sheetName, cell("E"), string(trade.TradeType))
	_ = f.SetCellValue(sheetName, cell("F"), trade.Price.InexactFloat64())
	_ = f.SetCellInt(sheetName, cell("G"), trade.Quantity)
	_ = f.SetCellValue(sheetName, cell("H"), trade.MoneyValueIncrease.InexactFloat64())
	if trade.PercentOwnedIncrease.IsNaN() {
		_ = f.SetCellStr(sheetName, cell("I"), "n/a")
	} else {
		_ = f.SetCellFloat(sheetName, cell("I"), float64(trade.PercentOwnedIncrease), -1, 64)
	}

	_ = f.SetCellStr(sheetName, cell("J"), trade.TradeDate)
	_ = f.SetCellStr(sheetName, cell("K"), trade.FilingDate)
	_ = f.SetCellInt(sheetName, cell("L"), trade.AlreadyOwned)
}

// nextColumn works for single letter columns, the sheet never goes past L.
func nextColumn(col string) string {
	return string(rune(col[0] + 1))
}
