package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/aidocpro/internal/client/models"
	"github.com/dmitrijs2005/aidocpro/internal/client/services"
	"github.com/dmitrijs2005/aidocpro/internal/common"
)

const autofillUsage = "autofill add <fayl...> | dir <papka> | files | rm <n> | instruction [matn] | analyze | set <n> <qiymat> | apply | process | reset"

// Autofill dispatches the autofill subcommands.
func (a *App) Autofill(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.autofillShow()
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		if len(rest) == 0 {
			return usage("autofill add <fayl...>")
		}
		return a.autofillAdd(rest)
	case "dir":
		if len(rest) != 1 {
			return usage("autofill dir <papka>")
		}
		return a.autofillDir(rest[0])
	case "files":
		return a.autofillShow()
	case "rm":
		n, err := oneIndex(rest)
		if err != nil {
			return usage("autofill rm <n>")
		}
		if err := a.autofill.RemoveFile(n); err != nil {
			return err
		}
		return a.autofillShow()
	case "instruction":
		return a.autofillInstruction(ctx, rest)
	case "analyze":
		return a.autofillAnalyze(ctx)
	case "set":
		if len(rest) < 2 {
			return usage("autofill set <n> <qiymat>")
		}
		n, err := oneIndex(rest[:1])
		if err != nil {
			return usage("autofill set <n> <qiymat>")
		}
		if err := a.autofill.SetValue(n, strings.Join(rest[1:], " ")); err != nil {
			return err
		}
		a.printReplacements(a.autofill.Snapshot().Replacements)
		return nil
	case "apply":
		a.println("Qo'llanmoqda...")
		res, err := a.autofill.Apply(ctx)
		if err != nil {
			return err
		}
		a.printResult(res)
		return nil
	case "process":
		a.println("Qayta ishlanmoqda...")
		res, err := a.autofill.Process(ctx)
		if err != nil {
			return err
		}
		a.printResult(res)
		return nil
	case "reset":
		a.autofill.Reset()
		a.println("Tozalandi")
		return nil
	}
	return usage(autofillUsage)
}

// oneIndex parses a 1-based index argument into a 0-based one.
func oneIndex(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one index")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

func (a *App) autofillAdd(paths []string) error {
	files := make([]models.UploadedFile, 0, len(paths))
	for _, p := range paths {
		f, err := models.DescribeFile(p)
		if err != nil {
			a.printf("%s: %v\n", p, err)
			continue
		}
		files = append(files, f)
	}

	n := a.autofill.AddFiles(files...)
	a.printf("Qo'shildi: %d ta\n", n)
	return a.autofillShow()
}

// autofillDir queues every file in dir, in name order. The workflow's
// extension filter and batch cap apply as for single files.
func (a *App) autofillDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	files := make([]models.UploadedFile, 0, len(paths))
	for _, p := range paths {
		f, err := models.DescribeFile(p)
		if err != nil {
			continue
		}
		files = append(files, f)
	}

	n := a.autofill.AddFiles(files...)
	a.printf("Qo'shildi: %d ta\n", n)
	return a.autofillShow()
}

func (a *App) autofillInstruction(ctx context.Context, args []string) error {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		var err error
		text, err = a.askWithShortcuts(ctx, common.AutofillShortcutsNamespace, "Hujjatda qanday o'zgarishlar kerak?")
		if err != nil {
			return err
		}
	}
	a.autofill.SetInstruction(text)
	return nil
}

func (a *App) autofillAnalyze(ctx context.Context) error {
	a.println("Tahlil qilinmoqda...")
	res, err := a.autofill.Analyze(ctx)
	if err != nil {
		return err
	}

	if res.FileType != "" {
		a.printf("Fayl turi: %s\n", res.FileType)
	}

	snap := a.autofill.Snapshot()
	if snap.NoPlaceholders {
		a.println(snap.Message)
		return nil
	}
	a.printReplacements(snap.Replacements)
	a.println("Qiymat kiriting: autofill set <n> <qiymat>, so'ng autofill apply")
	return nil
}

func (a *App) autofillShow() error {
	snap := a.autofill.Snapshot()

	a.printf("Holat: %s\n", snap.State)
	if len(snap.Files) == 0 {
		a.println("Fayllar yo'q")
	}
	for i, f := range snap.Files {
		a.printf("  %d. %s (%d bayt)\n", i+1, f.Name, f.SizeBytes)
	}
	if snap.Instruction != "" {
		a.printf("Ko'rsatma: %s\n", snap.Instruction)
	}
	if len(snap.Replacements) > 0 {
		a.printReplacements(snap.Replacements)
	}
	if snap.Result != nil {
		a.printResult(snap.Result)
	}
	if snap.Message != "" {
		a.println(snap.Message)
	}
	return nil
}

func (a *App) printReplacements(rs []models.Replacement) {
	for i, r := range rs {
		line := fmt.Sprintf("  %d. [%s] %s", i+1, r.Type, r.Label())
		if r.Confidence != "" {
			line += " (" + r.Confidence + ")"
		}
		if r.Filled() {
			line += " -> " + r.NewValue
		}
		a.println(line)
	}
	if !a.autofill.CanApply() {
		a.println(services.UserMessage(services.ErrNothingToApply))
	}
}

func (a *App) printResult(res *services.AutofillResult) {
	a.printf("Tayyor: %s, %d ta o'zgarish\n", res.Location, res.Count)
}
