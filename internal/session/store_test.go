package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *State {
	s := New()
	s.BindDevice("C1", "fp-1")
	s.Remember(Identity{ID: "E1", Name: "Alice", Email: "alice@example.com", InitialDeviceID: "fp-1"})
	s.PendingRegistrationCompanyID = "C2"
	s.GrantTimeTracking("C1", "Q1", "E1", time.Now())
	return s
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, "sid", sampleState()))
	loaded, err := store.Load(ctx, "sid")
	require.NoError(t, err)

	fp, ok := loaded.DeviceFor("C1")
	assert.True(t, ok)
	assert.Equal(t, "fp-1", fp)
	require.NotNil(t, loaded.Identity)
	assert.Equal(t, "E1", loaded.Identity.ID)
	assert.Equal(t, "C2", loaded.PendingRegistrationCompanyID)
	require.NotNil(t, loaded.Grant)
	assert.Equal(t, "Q1", loaded.Grant.QRID)
	assert.True(t, loaded.Grant.Allows("C1", "E1", time.Now(), time.Minute))
	assert.False(t, loaded.LoggedOut)

	loaded.LoggedOut = true
	require.NoError(t, store.Save(ctx, "sid", loaded))
	again, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, again.LoggedOut)

	require.NoError(t, store.Delete(ctx, "sid"))
	_, err = store.Load(ctx, "sid")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	state := sampleState()
	require.NoError(t, store.Save(ctx, "sid", state))

	state.BindDevice("C1", "changed")
	loaded, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	fp, _ := loaded.DeviceFor("C1")
	assert.Equal(t, "fp-1", fp)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), "sid", New()))
	now = now.Add(2 * time.Minute)
	_, err := store.Load(context.Background(), "sid")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, time.Hour)
	exerciseStore(t, store)

	require.NoError(t, store.Save(context.Background(), "ttl", New()))
	assert.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+"ttl"))

	mr.FastForward(2 * time.Hour)
	_, err = store.Load(context.Background(), "ttl")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStateDeviceForNil(t *testing.T) {
	var s *State
	_, ok := s.DeviceFor("C1")
	assert.False(t, ok)
}

func TestGrantAllows(t *testing.T) {
	issued := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	g := &Grant{CompanyID: "C1", QRID: "Q1", EmployeeID: "E1", IssuedAt: issued}

	assert.True(t, g.Allows("C1", "E1", issued.Add(5*time.Minute), 10*time.Minute))
	assert.False(t, g.Allows("C1", "E1", issued.Add(11*time.Minute), 10*time.Minute), "已过期")
	assert.False(t, g.Allows("C2", "E1", issued, 10*time.Minute), "其他企业")
	assert.False(t, g.Allows("C1", "E2", issued, 10*time.Minute), "其他员工")

	var none *Grant
	assert.False(t, none.Allows("C1", "E1", issued, 0))
}
