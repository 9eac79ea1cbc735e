package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/aidocpro/internal/client/models"
	"github.com/dmitrijs2005/aidocpro/internal/client/services"
	"github.com/dmitrijs2005/aidocpro/internal/common"
)

// Excel generates a spreadsheet from the prompt given as arguments, or asks
// for one. Answering with a number picks a saved shortcut.
func (a *App) Excel(ctx context.Context, args []string) error {
	prompt := strings.Join(args, " ")

	if strings.TrimSpace(prompt) == "" {
		var err error
		prompt, err = a.askWithShortcuts(ctx, common.ExcelShortcutsNamespace, "Qanday Excel jadval kerak?")
		if err != nil {
			return err
		}
	}

	if !a.generation.CanGenerate(prompt) {
		if strings.TrimSpace(prompt) == "" {
			return services.ErrEmptyPrompt
		}
		return services.ErrBusy
	}

	a.generation.Edit()
	a.println("Yaratilmoqda...")

	res, err := a.generation.Generate(ctx, prompt)
	if err != nil {
		return err
	}

	if res.Preview != nil {
		a.renderPreview(res.Preview)
	}
	a.printf("Tayyor: %s (%d bayt)\n", res.Location, res.Size)
	return nil
}

// askWithShortcuts lists the namespace's shortcuts and reads the answer.
// A number selects the shortcut at that position.
func (a *App) askWithShortcuts(ctx context.Context, ns, prompt string) (string, error) {
	list, err := a.shortcuts.List(ctx, ns)
	if err != nil {
		a.logger.Warn(ctx, "shortcuts unavailable", "error", err)
	}
	for i, s := range list {
		a.printf("  %d. %s\n", i+1, s)
	}

	text, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}

	if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(list) {
		return list[n-1], nil
	}
	return text, nil
}

func (a *App) renderPreview(p *models.SpreadsheetPreview) {
	if p.Title != "" {
		a.println(p.Title)
	}

	for _, sheet := range p.Window(a.config.PreviewMaxColumns, a.config.PreviewMaxRows) {
		if sheet.Name != "" {
			a.printf("[%s]\n", sheet.Name)
		}

		tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(sheet.Headers, "\t"))
		for _, row := range sheet.Rows {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = c.String()
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		_ = tw.Flush()

		if sheet.HiddenColumns > 0 || sheet.HiddenRows > 0 {
			a.printf("... yana %d ustun, %d qator\n", sheet.HiddenColumns, sheet.HiddenRows)
		}
	}
}
