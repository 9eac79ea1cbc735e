package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/aidocpro/internal/common"
)

var shortcutNamespaces = map[string]string{
	"excel":    common.ExcelShortcutsNamespace,
	"autofill": common.AutofillShortcutsNamespace,
}

// Shortcuts dispatches "shortcuts <excel|autofill> [add <text>|rm <n>]".
func (a *App) Shortcuts(ctx context.Context, args []string) error {
	const u = "shortcuts <excel|autofill> [add <matn>|rm <n>]"

	if len(args) == 0 {
		return usage(u)
	}
	ns, ok := shortcutNamespaces[args[0]]
	if !ok {
		return usage(u)
	}

	var (
		list []string
		err  error
	)
	switch {
	case len(args) == 1:
		list, err = a.shortcuts.List(ctx, ns)
	case args[1] == "add" && len(args) > 2:
		list, err = a.shortcuts.Add(ctx, ns, strings.Join(args[2:], " "))
	case args[1] == "rm" && len(args) == 3:
		var i int
		if i, err = oneIndex(args[2:]); err != nil {
			return usage(u)
		}
		list, err = a.shortcuts.Remove(ctx, ns, i)
	default:
		return usage(u)
	}
	if err != nil {
		return err
	}

	if len(list) == 0 {
		a.println("Ro'yxat bo'sh")
	}
	for i, s := range list {
		a.printf("  %d. %s\n", i+1, s)
	}
	return nil
}
