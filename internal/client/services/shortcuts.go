package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/aidocpro/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/aidocpro/internal/common"
)

// AddShortcut appends text unless an identical entry exists. Blank text is
// ignored. The input slice is not modified.
func AddShortcut(list []string, text string) []string {
	out := slices.Clone(list)
	if strings.TrimSpace(text) == "" || slices.Contains(list, text) {
		return out
	}
	return append(out, text)
}

// RemoveShortcut drops the entry at i. Out-of-range indexes leave the list
// unchanged. The input slice is not modified.
func RemoveShortcut(list []string, i int) []string {
	out := slices.Clone(list)
	if i < 0 || i >= len(out) {
		return out
	}
	return slices.Delete(out, i, i+1)
}

var defaultShortcuts = map[string][]string{
	common.ExcelShortcutsNamespace: {
		"12 oylik moliyaviy prognoz - daromad va xarajatlar bilan",
		"Kafe uchun oylik byudjet rejasi",
		"Mahsulotlar ro'yxati - narx va miqdor bilan",
	},
	common.AutofillShortcutsNamespace: {
		"Sanalarni bugungi kunga o'zgartir",
		"Shartnoma raqamini 01-25/199B ga o'zgartir",
		"Mijoz ismi - Karimov Jasur Anvarovich",
	},
}

// ShortcutStore keeps per-workflow shortcut lists in the local store, one
// JSON array per namespace. A namespace never written reports the built-in
// suggestions.
type ShortcutStore struct {
	repo metadata.Repository
}

func NewShortcutStore(repo metadata.Repository) *ShortcutStore {
	return &ShortcutStore{repo: repo}
}

func checkNamespace(ns string) error {
	if _, ok := defaultShortcuts[ns]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNamespace, ns)
	}
	return nil
}

func (s *ShortcutStore) List(ctx context.Context, ns string) ([]string, error) {
	if err := checkNamespace(ns); err != nil {
		return nil, err
	}

	raw, err := s.repo.Get(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("load shortcuts: %w", err)
	}
	return decodeShortcuts(ns, raw)
}

func decodeShortcuts(ns string, raw []byte) ([]string, error) {
	if raw == nil {
		return slices.Clone(defaultShortcuts[ns]), nil
	}

	var list []string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode shortcuts: %w", err)
		}
	}
	return list, nil
}

func encodeShortcuts(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

// update applies fn to the namespace's list and persists the result, inside
// one transaction when the store supports it.
func (s *ShortcutStore) update(ctx context.Context, ns string, fn func([]string) ([]string, error)) ([]string, error) {
	if err := checkNamespace(ns); err != nil {
		return nil, err
	}

	var next []string
	apply := func(raw []byte) ([]byte, error) {
		list, err := decodeShortcuts(ns, raw)
		if err != nil {
			return nil, err
		}
		if next, err = fn(list); err != nil {
			return nil, err
		}
		return encodeShortcuts(next)
	}

	if u, ok := s.repo.(metadata.Updater); ok {
		if err := u.Update(ctx, ns, apply); err != nil {
			return nil, fmt.Errorf("save shortcuts: %w", err)
		}
		return next, nil
	}

	raw, err := s.repo.Get(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("load shortcuts: %w", err)
	}
	out, err := apply(raw)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Set(ctx, ns, out); err != nil {
		return nil, fmt.Errorf("save shortcuts: %w", err)
	}
	return next, nil
}

func (s *ShortcutStore) Add(ctx context.Context, ns, text string) ([]string, error) {
	return s.update(ctx, ns, func(list []string) ([]string, error) {
		return AddShortcut(list, text), nil
	})
}

func (s *ShortcutStore) Remove(ctx context.Context, ns string, i int) ([]string, error) {
	return s.update(ctx, ns, func(list []string) ([]string, error) {
		if i < 0 || i >= len(list) {
			return nil, fmt.Errorf("remove shortcut %d: %w", i, ErrIndexOutOfRange)
		}
		return RemoveShortcut(list, i), nil
	})
}
