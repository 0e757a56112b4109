package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samparkdash/internal/sampark"
)

var creds = sampark.Credentials{
	Token: "tok",
	User:  sampark.User{Name: "Asha", State: "22", Role: "state"},
}

func TestStoreLifecycle(t *testing.T) {
	req := require.New(t)
	s := NewStore(time.Hour)

	sess := s.Create(creds)
	req.NotEmpty(sess.ID)
	req.Equal(1, s.Len())

	got, err := s.Get(sess.ID)
	req.NoError(err)
	req.Equal("tok", got.Token)
	req.Nil(got.District)

	updated, err := s.SelectDistrict(sess.ID, "111", "RAIPUR")
	req.NoError(err)
	req.Equal(&Selection{ID: "111", Name: "RAIPUR"}, updated.District)

	got, err = s.Get(sess.ID)
	req.NoError(err)
	req.Equal("111", got.District.ID)

	s.Delete(sess.ID)
	_, err = s.Get(sess.ID)
	req.ErrorIs(err, ErrNotFound)
	_, err = s.SelectDistrict(sess.ID, "112", "DURG")
	req.ErrorIs(err, ErrNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore(time.Hour)
	sess := s.Create(creds)
	_, err := s.SelectDistrict(sess.ID, "111", "RAIPUR")
	require.NoError(t, err)

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	got.District.Name = "changed"
	got.Token = "changed"

	again, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "RAIPUR", again.District.Name)
	assert.Equal(t, "tok", again.Token)
}

func TestSessionsAreDistinct(t *testing.T) {
	s := NewStore(time.Hour)
	a := s.Create(creds)
	b := s.Create(creds)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, s.Len())
}

func TestExpiry(t *testing.T) {
	s := NewStore(20 * time.Millisecond)
	sess := s.Create(creds)
	time.Sleep(50 * time.Millisecond)
	_, err := s.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileRoundTrip(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "auth", "session.json")

	_, err := LoadFile(path)
	req.ErrorIs(err, ErrNotFound)

	sess := New(creds)
	sess.District = &Selection{ID: "111", Name: "RAIPUR"}
	req.NoError(SaveFile(path, sess))

	got, err := LoadFile(path)
	req.NoError(err)
	req.Equal(sess.ID, got.ID)
	req.Equal(sess.User, got.User)
	req.Equal(*sess.District, *got.District)

	req.NoError(RemoveFile(path))
	req.NoError(RemoveFile(path))
	_, err = LoadFile(path)
	req.ErrorIs(err, ErrNotFound)
}
