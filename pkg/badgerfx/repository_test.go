package badgerfx_test

import (
	"encoding/json"
	"testing"

	"github.com/apiarycd/ftpdeploy/pkg/badgerfx"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID    string `json:"id"`
	Topic string `json:"topic"`
	Text  string `json:"text"`
}

func noteKey(id string) string { return "note:id:" + id }

func (n *note) StorageKey() string { return noteKey(n.ID) }

func (n *note) StorageIndexes() []string {
	return []string{"note:topic:" + n.Topic + ":" + n.ID}
}

func (n *note) MarshalStorage() ([]byte, error) { return json.Marshal(n) }

func (n *note) UnmarshalStorage(data []byte) error { return json.Unmarshal(data, n) }

func newDB(t *testing.T) *badger.DB {
	t.Helper()

	db, err := badger.Open(badgerfx.Config{InMemory: true}.Build().WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func newRepo() *badgerfx.Repository[*note] {
	return badgerfx.NewRepository(noteKey, func() *note { return new(note) })
}

func TestRepository_WriteReadDelete(t *testing.T) {
	db := newDB(t)
	repo := newRepo()

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return repo.Write(txn, &note{ID: "1", Topic: "ops", Text: "hello"})
	}))

	require.NoError(t, db.View(func(txn *badger.Txn) error {
		got, err := repo.Read(txn, "1")
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Text)

		byIndex, err := repo.ReadByIndex(txn, "note:topic:ops:1")
		require.NoError(t, err)
		assert.Equal(t, "1", byIndex.ID)
		return nil
	}))

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return repo.Delete(txn, "1")
	}))

	require.NoError(t, db.View(func(txn *badger.Txn) error {
		_, err := repo.Read(txn, "1")
		require.ErrorIs(t, err, badgerfx.ErrNotFound)

		_, err = repo.ReadByIndex(txn, "note:topic:ops:1")
		require.ErrorIs(t, err, badgerfx.ErrNotFound)
		return nil
	}))
}

func TestRepository_ListByIndex(t *testing.T) {
	db := newDB(t)
	repo := newRepo()

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		for _, n := range []*note{
			{ID: "1", Topic: "ops", Text: "a"},
			{ID: "2", Topic: "ops", Text: "b"},
			{ID: "3", Topic: "ops", Text: "c"},
			{ID: "4", Topic: "dev", Text: "d"},
		} {
			if err := repo.Write(txn, n); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.View(func(txn *badger.Txn) error {
		all, err := repo.ListByIndex(txn, "note:topic:ops:", false, 0, nil)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "1", all[0].ID)

		newest, err := repo.ListByIndex(txn, "note:topic:ops:", true, 1, nil)
		require.NoError(t, err)
		require.Len(t, newest, 1)
		assert.Equal(t, "3", newest[0].ID)

		filtered, err := repo.ListByIndex(txn, "note:topic:ops:", true, 1, func(n *note) bool {
			return n.Text != "c"
		})
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, "2", filtered[0].ID)

		entities, err := repo.List(txn, "note:id:", badger.DefaultIteratorOptions)
		require.NoError(t, err)
		assert.Len(t, entities, 4)
		return nil
	}))
}
