package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/cache"
	"finance_tracker/internal/db"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/events"
	"finance_tracker/internal/ledger"
	"finance_tracker/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.GroupTransactionEvent
}

func (p *recordingPublisher) PublishGroupTransaction(_ context.Context, e *events.GroupTransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type fixture struct {
	deps      Deps
	store     *repository.Store
	redis     *miniredis.Miniredis
	publisher *recordingPublisher
	clock     *clock
	alice     *domain.User
	bob       *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &fixture{
		store:     repository.New(gdb),
		redis:     mr,
		publisher: &recordingPublisher{},
		clock:     &clock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)},
	}
	f.deps = Deps{
		Store:      f.store,
		Ledger:     ledger.NewWalletLedger(false),
		Cache:      cache.NewSettlementCache(rdb, time.Minute),
		Publisher:  f.publisher,
		RetryLimit: 3,
		Now:        f.clock.Now,
	}
	f.alice = f.user(t, "alice")
	f.bob = f.user(t, "bob")
	return f
}

func (f *fixture) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, Password: "x"}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) category(t *testing.T, owner uint, typ domain.TransactionType) *domain.Category {
	t.Helper()
	c := &domain.Category{UserID: owner, Name: string(typ), Type: typ}
	require.NoError(t, f.store.CreateCategory(context.Background(), c))
	return c
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeTransactor struct {
	calls int
	errs  []error
}

func (f *fakeTransactor) Transaction(_ context.Context, fn func(*repository.Store) error) error {
	f.calls++
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func TestRunUnitRetriesConflicts(t *testing.T) {
	ctx := context.Background()
	conflict := apperr.Wrap(apperr.ErrVersionConflict, errors.New("wallet 1 at version 3"))

	ft := &fakeTransactor{errs: []error{conflict, conflict}}
	require.NoError(t, runUnit(ctx, ft, 3, "test", nil))
	assert.Equal(t, 3, ft.calls)

	ft = &fakeTransactor{errs: []error{conflict, conflict, conflict, conflict}}
	err := runUnit(ctx, ft, 3, "test", nil)
	assert.ErrorIs(t, err, apperr.ErrVersionConflict)
	assert.True(t, apperr.IsRetryable(err))
	assert.Equal(t, 3, ft.calls)

	ft = &fakeTransactor{errs: []error{apperr.ErrInsufficientBalance}}
	err = runUnit(ctx, ft, 3, "test", nil)
	assert.ErrorIs(t, err, apperr.ErrInsufficientBalance)
	assert.Equal(t, 1, ft.calls, "validation errors are not retried")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	ft = &fakeTransactor{errs: []error{conflict, conflict}}
	_ = runUnit(cancelled, ft, 3, "test", nil)
	assert.Equal(t, 1, ft.calls)
}

func TestDepsDefaults(t *testing.T) {
	d := Deps{}.withDefaults()
	assert.Equal(t, DefaultRetryLimit, d.RetryLimit)
	assert.NotNil(t, d.Ledger)
	assert.IsType(t, events.Nop{}, d.Publisher)
	assert.Equal(t, time.UTC, d.Now().Location())
}
