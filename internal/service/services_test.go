package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/krakosik/reputation/internal/client"
	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/model"
	"github.com/krakosik/reputation/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dayD = time.Date(2026, 5, 14, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mutex sync.Mutex
	now   time.Time
}

func (c *testClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.now = c.now.Add(d)
}

type fixture struct {
	repositories repository.Repositories
	services     *services
	clock        *testClock
	publisher    *recordingVotePublisher
}

// recordingVotePublisher keeps every published event for assertions.
type recordingVotePublisher struct {
	mutex  sync.Mutex
	events []dto.VoteRecordedEvent
}

func (p *recordingVotePublisher) PublishVote(_ context.Context, vote model.Vote) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.events = append(p.events, newVoteRecordedEvent(vote))
}

func (p *recordingVotePublisher) Close() error {
	return nil
}

func (p *recordingVotePublisher) published() []dto.VoteRecordedEvent {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return append([]dto.VoteRecordedEvent(nil), p.events...)
}

type fixtureOptions struct {
	statsCache StatsCache
	authClient client.AuthClient
	location   *time.Location
	wrapVotes  func(repository.VoteRepository) repository.VoteRepository
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

type wrappedRepositories struct {
	repository.Repositories
	votes repository.VoteRepository
}

func (w wrappedRepositories) Vote() repository.VoteRepository {
	return w.votes
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()

	repos := repository.NewRepositories(newTestDB(t))
	if opts.wrapVotes != nil {
		repos = wrappedRepositories{Repositories: repos, votes: opts.wrapVotes(repos.Vote())}
	}
	if opts.statsCache == nil {
		opts.statsCache = noopStatsCache{}
	}
	if opts.location == nil {
		opts.location = time.UTC
	}

	clock := &testClock{now: dayD}
	publisher := &recordingVotePublisher{}

	return &fixture{
		repositories: repos,
		services:     newServices(repos, opts.statsCache, publisher, opts.authClient, opts.location, clock.Now),
		clock:        clock,
		publisher:    publisher,
	}
}

func (f *fixture) actor(t *testing.T, id int64, handle string) model.Actor {
	t.Helper()

	actor, err := f.services.Identity().Upsert(context.Background(), id, handle, "", "")
	if err != nil {
		t.Fatalf("upsert actor %d: %v", id, err)
	}
	return actor
}

// vote submits a vote that must be accepted and advances the clock by a minute.
func (f *fixture) vote(t *testing.T, from, to int64, polarity model.Polarity) model.Vote {
	t.Helper()

	result, err := f.services.Ledger().Submit(context.Background(), submitRequest(from, to, polarity, fmt.Sprintf("ph-%d-%d", from, to)))
	if err != nil {
		t.Fatalf("submit %d->%d: %v", from, to, err)
	}
	if !result.Accepted {
		t.Fatalf("submit %d->%d rejected: %s", from, to, result.Reason)
	}
	f.clock.Advance(time.Minute)
	return *result.Vote
}
