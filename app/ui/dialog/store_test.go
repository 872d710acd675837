package dialog

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

type role struct {
	ID   int64
	Name string
}

func TestStore(t *testing.T) {
	store := NewStore[role]()
	assert.Equal(t, ModeNone, store.Open())
	assert.Equal(t, (*role)(nil), store.CurrentRow())

	row := &role{ID: 7, Name: "Editor"}
	store.Show(ModeDelete, row)
	assert.Equal(t, ModeDelete, store.Open())
	assert.Equal(t, row, store.CurrentRow())

	store.SetOpen(ModeEdit)
	assert.Equal(t, ModeEdit, store.Open())
	assert.Equal(t, row, store.CurrentRow())

	store.Close()
	assert.Equal(t, ModeNone, store.Open())
	assert.Equal(t, (*role)(nil), store.CurrentRow())
}

func TestStore_Independent(t *testing.T) {
	users := NewStore[role]()
	roles := NewStore[role]()

	users.Show(ModeAdd, nil)
	assert.Equal(t, ModeAdd, users.Open())
	assert.Equal(t, ModeNone, roles.Open())
}
