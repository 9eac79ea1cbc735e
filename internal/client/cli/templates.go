package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/aidocpro/internal/client/models"
	"github.com/dmitrijs2005/aidocpro/internal/client/services"
)

// Templates dispatches "templates [list|add|rm <id>|get <id>]".
func (a *App) Templates(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		return a.templatesList(ctx)
	case "add":
		return a.templatesAdd(ctx)
	case "rm":
		if len(args) != 2 {
			return usage("templates rm <id>")
		}
		if err := a.gallery.Delete(ctx, args[1]); err != nil {
			return err
		}
		a.println("O'chirildi")
		return nil
	case "get":
		if len(args) != 2 {
			return usage("templates get <id>")
		}
		loc, err := a.gallery.Get(ctx, args[1])
		if err != nil {
			return err
		}
		a.printf("Yuklab olindi: %s\n", loc)
		return nil
	}
	return usage("templates [list|add|rm <id>|get <id>]")
}

func (a *App) templatesList(ctx context.Context) error {
	l := a.gallery.List(ctx)

	switch l.State {
	case services.TemplatesError:
		return l.Err
	case services.TemplatesEmpty:
		a.println("Shablonlar yo'q")
		return nil
	}

	for _, t := range l.Templates {
		line := "  " + t.ID + "  [" + string(t.Category) + "] " + t.Name
		if t.Description != "" {
			line += " - " + t.Description
		}
		if a.gallery.CanDelete(t) {
			line += " (sizniki)"
		}
		a.println(line)
	}
	return nil
}

func (a *App) templatesAdd(ctx context.Context) error {
	if !a.isLoggedIn() {
		return services.ErrAuthRequired
	}

	var in services.CreateTemplateInput
	var err error

	if in.Path, err = getSimpleText(a.reader, "Fayl yo'li", a.out); err != nil {
		return err
	}
	if in.Name, err = getSimpleText(a.reader, "Nomi", a.out); err != nil {
		return err
	}
	if in.Description, err = getSimpleText(a.reader, "Tavsif (ixtiyoriy)", a.out); err != nil {
		return err
	}

	cats := make([]string, len(models.TemplateCategories))
	for i, c := range models.TemplateCategories {
		cats[i] = string(c)
	}
	if in.Category, err = getSimpleText(a.reader, "Toifa: "+strings.Join(cats, ", "), a.out); err != nil {
		return err
	}

	t, err := a.gallery.Create(ctx, in)
	if err != nil {
		return err
	}
	a.printf("Shablon yaratildi: %s\n", t.ID)
	return nil
}
