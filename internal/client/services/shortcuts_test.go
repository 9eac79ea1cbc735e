package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/aidocpro/internal/client/client"
	"github.com/dmitrijs2005/aidocpro/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/aidocpro/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddShortcut(t *testing.T) {
	base := []string{"a", "b"}

	assert.Equal(t, []string{"a", "b", "c"}, AddShortcut(base, "c"))
	assert.Equal(t, []string{"a", "b"}, AddShortcut(base, "a"), "exact duplicate is ignored")
	assert.Equal(t, []string{"a", "b", "A"}, AddShortcut(base, "A"), "match is exact, not case-folded")
	assert.Equal(t, []string{"a", "b", " a"}, AddShortcut(base, " a"))
	assert.Equal(t, []string{"a", "b"}, AddShortcut(base, "   "))
	assert.Equal(t, []string{"x"}, AddShortcut(nil, "x"))
	assert.Equal(t, []string{"a", "b"}, base, "input untouched")
}

func TestRemoveShortcut(t *testing.T) {
	base := []string{"a", "b", "c"}

	assert.Equal(t, []string{"a", "c"}, RemoveShortcut(base, 1))
	assert.Equal(t, []string{"b", "c"}, RemoveShortcut(base, 0))
	assert.Equal(t, []string{"a", "b", "c"}, RemoveShortcut(base, 3))
	assert.Equal(t, []string{"a", "b", "c"}, RemoveShortcut(base, -1))
	assert.Equal(t, []string{"a", "b", "c"}, base, "input untouched")
}

func TestShortcutStore_DefaultsUntilWritten(t *testing.T) {
	repo := newMemRepo()
	s := NewShortcutStore(repo)
	ctx := context.Background()

	list, err := s.List(ctx, common.ExcelShortcutsNamespace)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Empty(t, repo.data, "defaults are not persisted")

	list, err = s.Remove(ctx, common.ExcelShortcutsNamespace, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = s.Remove(ctx, common.ExcelShortcutsNamespace, 0)
	require.NoError(t, err)
	list, err = s.Remove(ctx, common.ExcelShortcutsNamespace, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = s.List(ctx, common.ExcelShortcutsNamespace)
	require.NoError(t, err)
	assert.Empty(t, list, "an emptied list stays empty")
	assert.Equal(t, "[]", string(repo.data[common.ExcelShortcutsNamespace]))
}

func TestShortcutStore_NamespacesAreSeparate(t *testing.T) {
	s := NewShortcutStore(newMemRepo())
	ctx := context.Background()

	_, err := s.Add(ctx, common.ExcelShortcutsNamespace, "Haftalik jadval")
	require.NoError(t, err)
	_, err = s.Add(ctx, common.ExcelShortcutsNamespace, "Haftalik jadval")
	require.NoError(t, err)

	excel, err := s.List(ctx, common.ExcelShortcutsNamespace)
	require.NoError(t, err)
	assert.Equal(t, "Haftalik jadval", excel[len(excel)-1])
	assert.Len(t, excel, 4)

	autofill, err := s.List(ctx, common.AutofillShortcutsNamespace)
	require.NoError(t, err)
	assert.NotContains(t, autofill, "Haftalik jadval")
}

func TestShortcutStore_Errors(t *testing.T) {
	repo := newMemRepo()
	s := NewShortcutStore(repo)
	ctx := context.Background()

	_, err := s.List(ctx, "bogus")
	assert.ErrorIs(t, err, ErrUnknownNamespace)

	_, err = s.Remove(ctx, common.AutofillShortcutsNamespace, 9)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	repo.data[common.AutofillShortcutsNamespace] = []byte("{not json")
	_, err = s.List(ctx, common.AutofillShortcutsNamespace)
	assert.Error(t, err)

	repo.setErr = errors.New("disk")
	_, err = s.Add(ctx, common.ExcelShortcutsNamespace, "x")
	assert.Error(t, err)
}

func TestShortcutStore_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := client.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewShortcutStore(metadata.NewSQLiteRepository(db))

	list, err := s.Add(ctx, common.AutofillShortcutsNamespace, "Sanani yangila")
	require.NoError(t, err)
	assert.Len(t, list, 4)

	_, err = s.Remove(ctx, common.AutofillShortcutsNamespace, 10)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	list, err = s.Remove(ctx, common.AutofillShortcutsNamespace, 0)
	require.NoError(t, err)

	stored, err := s.List(ctx, common.AutofillShortcutsNamespace)
	require.NoError(t, err)
	assert.Equal(t, list, stored)
	assert.Equal(t, "Sanani yangila", stored[len(stored)-1])
}
