package pg_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"skylark/internal/entity"
	"skylark/internal/model"
	"skylark/internal/pg"
)

// startDB brings up a throwaway Postgres and returns a connected store.
func startDB(t *testing.T) *pg.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("skylark"),
		tcpostgres.WithUsername("skylark"),
		tcpostgres.WithPassword("skylark"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("no container runtime: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pg.Open(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	return pg.New(pool)
}

type countingListener struct {
	updates int
	deletes int
}

func (l *countingListener) Update(*entity.Instance)                  { l.updates++ }
func (l *countingListener) Delete(*entity.Instance)                  { l.deletes++ }
func (l *countingListener) NewReference(_, _ *entity.Instance)       {}
func (l *countingListener) RemoveReference(_, _ *entity.Instance)    {}
func (l *countingListener) AddListenee(*entity.Instance)             {}
func (l *countingListener) RemoveListenee(*entity.Instance)          {}

func TestEntityLifecycleAgainstPostgres(t *testing.T) {
	db := startDB(t)
	s, err := model.New()
	require.NoError(t, err)
	require.NoError(t, pg.Install(db, s.Model))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// insert assigns the surrogate key and registers the instance
	eve, err := s.User.New(map[string]any{"name": "Eve", "email": "eve@example.org"})
	require.NoError(t, err)
	require.NoError(t, eve.Insert(ctx, db))
	require.NotNil(t, eve.Key())

	cached, ok := s.User.Cache().Lookup(eve.Key())
	require.True(t, ok)
	assert.Same(t, eve, cached)

	// fetch by key returns the resident instance, not a copy
	again, err := s.User.FindByKey(ctx, db, eve.Key())
	require.NoError(t, err)
	assert.Same(t, eve, again)

	// a live room pushes its updates
	room, err := s.Room.New(map[string]any{"name": "lobby"})
	require.NoError(t, err)
	require.NoError(t, room.Insert(ctx, db))

	l := &countingListener{}
	room.AddListener(l)
	require.NoError(t, room.Set(s.RoomName, "hall"))
	require.NoError(t, room.Update(ctx, db))
	assert.Equal(t, 1, l.updates)

	row, err := db.Query(ctx, s.Room.FindByKeyStatement(), map[string]any{"id": room.Key()})
	require.NoError(t, err)
	vals, err := row.Single()
	require.NoError(t, err)
	assert.Equal(t, "hall", vals[1])

	// message references both persisted entities
	msg, err := s.Message.New(map[string]any{
		"body":   "hello",
		"author": eve.Key(),
		"room":   room.Key(),
	})
	require.NoError(t, err)
	require.NoError(t, msg.Insert(ctx, db))

	found, err := s.Message.Get(s.MessageBody.Eq("hello")).Single(ctx, db)
	require.NoError(t, err)
	assert.Same(t, msg, found)

	// delete notifies and forgets the listeners
	require.NoError(t, msg.Delete(ctx, db))
	require.NoError(t, room.Delete(ctx, db))
	assert.Equal(t, 1, l.deletes)
	assert.Equal(t, 0, room.Listeners())

	require.NoError(t, pg.Uninstall(db, s.Model))
}

func TestCompositeKeyRoundTrip(t *testing.T) {
	db := startDB(t)
	s, err := model.New()
	require.NoError(t, err)
	require.NoError(t, pg.Install(db, s.Model))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	room, err := s.Room.New(map[string]any{"name": "den"})
	require.NoError(t, err)
	require.NoError(t, room.Insert(ctx, db))

	mem, err := s.Membership.New(map[string]any{
		"room":   room.Key(),
		"member": 42,
		"role":   "admin",
	})
	require.NoError(t, err)
	require.NoError(t, mem.Insert(ctx, db))

	key := []any{room.Key(), int64(42)}
	got, ok := s.Membership.Cache().Lookup(key)
	require.True(t, ok)
	assert.Same(t, mem, got)

	again, err := s.Membership.FindByKey(ctx, db, key)
	require.NoError(t, err)
	assert.Same(t, mem, again)

	require.NoError(t, mem.Set(s.MembershipRole, "owner"))
	require.NoError(t, mem.Update(ctx, db))
}

func TestInstallToleratesExistingTables(t *testing.T) {
	db := startDB(t)
	s, err := model.New()
	require.NoError(t, err)

	require.NoError(t, pg.Install(db, s.Model))
	require.NoError(t, pg.Install(db, s.Model))
}

func TestResultAmountClamps(t *testing.T) {
	r := pg.Result{{int64(1)}, {int64(2)}}

	rows, err := r.Amount(-1)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = r.Amount(5)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = r.Single()
	var nse *entity.NotSingleError
	require.ErrorAs(t, err, &nse)
	assert.Equal(t, 2, nse.Count)
}

func TestStorageErrorCarriesStatement(t *testing.T) {
	db := startDB(t)
	s, err := model.New()
	require.NoError(t, err)

	ctx := context.Background()
	// no tables installed yet
	_, qerr := db.Query(ctx, s.User.FindByKeyStatement(), map[string]any{"id": int64(1)})
	var se *pg.StorageError
	require.ErrorAs(t, qerr, &se)
	assert.Contains(t, se.Statement, "SELECT")
}
