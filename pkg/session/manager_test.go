package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/phdev/briefing/pkg/adapters/memory"
	"github.com/phdev/briefing/pkg/adapters/redis"
	"github.com/phdev/briefing/pkg/domain"
	"github.com/phdev/briefing/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.March, 7, 12, 0, 0, 0, time.UTC)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
	creates int
	mu      sync.Mutex
}

func NewSlowStore() *SlowStore {
	return &SlowStore{Store: memory.NewStore()}
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	time.Sleep(5 * time.Millisecond)
	if _, err := s.Store.Load(ctx, sessionID); errors.Is(err, domain.ErrSessionNotFound) {
		s.mu.Lock()
		s.creates++
		s.mu.Unlock()
	}
	return s.Store.Save(ctx, sessionID, sess)
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, sessionID)
}

func TestManager_UpdateIsSerialised(t *testing.T) {
	store := NewSlowStore()
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Save(ctx, id, domain.NewSession(id, domain.Seed{}, now)))

	var wg sync.WaitGroup
	const writers = 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, id, func(s *domain.Session) (*domain.Session, error) {
				next := s.Snapshot()
				next.Epoch++
				return next, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, writers, s.Epoch, "no update is lost")
}

func TestManager_UpdateErrorKeepsStoredSession(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, manager.Save(ctx, "s", domain.NewSession("s", domain.Seed{}, now)))

	boom := errors.New("boom")
	_, err := manager.Update(ctx, "s", func(s *domain.Session) (*domain.Session, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	s, err := manager.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Epoch)

	_, err = manager.Update(ctx, "missing", func(s *domain.Session) (*domain.Session, error) {
		return s, nil
	})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

type failingSaveStore struct {
	*memory.Store
	err error
}

func (s *failingSaveStore) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	if s.err != nil {
		return s.err
	}
	return s.Store.Save(ctx, sessionID, sess)
}

func TestManager_CommittedRunsAfterSave(t *testing.T) {
	store := &failingSaveStore{Store: memory.NewStore()}
	manager := session.NewManager(store)
	ctx := context.Background()
	require.NoError(t, manager.Save(ctx, "s", domain.NewSession("s", domain.Seed{}, now)))

	bump := func(s *domain.Session) (*domain.Session, error) {
		next := s.Snapshot()
		next.Epoch++
		return next, nil
	}
	var committed []int
	record := func(s *domain.Session) { committed = append(committed, s.Epoch) }

	_, err := manager.Update(ctx, "s", bump, record)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, committed)

	store.err = errors.New("disk full")
	_, err = manager.Update(ctx, "s", bump, record)
	assert.ErrorIs(t, err, store.err)
	assert.Equal(t, []int{1}, committed, "a failed save commits nothing")

	_, _, err = manager.LoadOrStart(ctx, "new", func(context.Context) (*domain.Session, error) {
		return domain.NewSession("new", domain.Seed{}, now), nil
	}, record)
	assert.Error(t, err)
	assert.Equal(t, []int{1}, committed)

	store.err = nil
	_, created, err := manager.LoadOrStart(ctx, "new", func(context.Context) (*domain.Session, error) {
		return domain.NewSession("new", domain.Seed{}, now), nil
	}, record)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []int{1, 0}, committed)
}

func TestManager_LoadOrStart(t *testing.T) {
	store := NewSlowStore()
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "atomic-init"

	start := func(context.Context) (*domain.Session, error) {
		s := domain.NewSession(id, domain.Seed{}, now)
		s.CurrentStepID = "start"
		return s, nil
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, fresh, err := manager.LoadOrStart(ctx, id, start)
			assert.NoError(t, err)
			assert.NotNil(t, s)
			if fresh {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, store.creates)

	s, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StepID("start"), s.CurrentStepID)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redis.NewFromClient(client)
	// Two managers stand in for two replicas sharing Redis.
	replicaA := session.NewManager(store, session.WithLocker(redis.NewLocker(client, store.Prefix())))
	replicaB := session.NewManager(store, session.WithLocker(redis.NewLocker(client, store.Prefix())), session.WithLockTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, replicaA.Save(ctx, "shared", domain.NewSession("shared", domain.Seed{}, now)))

	var wg sync.WaitGroup
	for _, m := range []*session.Manager{replicaA, replicaB, replicaA, replicaB} {
		wg.Add(1)
		go func(m *session.Manager) {
			defer wg.Done()
			_, err := m.Update(ctx, "shared", func(s *domain.Session) (*domain.Session, error) {
				next := s.Snapshot()
				next.Epoch++
				return next, nil
			})
			assert.NoError(t, err)
		}(m)
	}
	wg.Wait()

	s, err := replicaB.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, 4, s.Epoch)
	assert.False(t, mr.Exists(store.Prefix()+"lock:shared"), "lock released")
}
