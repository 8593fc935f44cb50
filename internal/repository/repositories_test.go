package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/krakosik/reputation/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2026, 5, 14, 10, 0, 0, 0, time.UTC)

func newTestRepositories(t *testing.T) Repositories {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
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

	return NewRepositories(db)
}

func strPtr(s string) *string {
	return &s
}

func seedActor(t *testing.T, repos Repositories, id int64, handle string) model.Actor {
	t.Helper()

	actor := model.Actor{ID: id, RegisteredAt: baseTime}
	if handle != "" {
		actor.Handle = strPtr(handle)
	}
	created, err := repos.Actor().Upsert(context.Background(), actor)
	if err != nil {
		t.Fatalf("seed actor %d: %v", id, err)
	}
	return created
}

func seedVote(t *testing.T, repos Repositories, from, to int64, polarity model.Polarity, at time.Time) model.Vote {
	t.Helper()

	created, err := repos.Vote().CreateFirstOfDay(context.Background(), model.Vote{
		FromActorID: from,
		ToActorID:   to,
		VoteDay:     model.CalendarDay(at, time.UTC),
		Polarity:    polarity,
		EvidenceRef: fmt.Sprintf("photo-%d-%d", from, at.Unix()),
		CreatedAt:   at,
	})
	if err != nil {
		t.Fatalf("seed vote %d->%d: %v", from, to, err)
	}
	return created
}
