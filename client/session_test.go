package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/deepthiduddupudi31/community-serve/models"
)

func TestFileSessionStore_RoundTrip(t *testing.T) {
	store := NewFileSessionStore(filepath.Join(t.TempDir(), "session.json"))

	sess := &Session{
		Token: "header.payload.sig",
		User: models.AuthView{
			ID:       primitive.NewObjectID(),
			Username: "sam",
			Email:    "sam@example.com",
		},
	}
	require.NoError(t, store.Save(sess))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sess.Token, loaded.Token)
	assert.Equal(t, sess.User.Username, loaded.User.Username)
	assert.Equal(t, sess.User.ID, loaded.User.ID)
}

func TestFileSessionStore_LoadMissing(t *testing.T) {
	store := NewFileSessionStore(filepath.Join(t.TempDir(), "nope.json"))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileSessionStore_Clear(t *testing.T) {
	store := NewFileSessionStore(filepath.Join(t.TempDir(), "session.json"))

	require.NoError(t, store.Save(&Session{Token: "tok"}))
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	// clearing an already-empty store is fine
	assert.NoError(t, store.Clear())
}

func TestFileSessionStore_CreatesParentDir(t *testing.T) {
	store := NewFileSessionStore(filepath.Join(t.TempDir(), "nested", "dir", "session.json"))
	assert.NoError(t, store.Save(&Session{Token: "tok"}))
}
