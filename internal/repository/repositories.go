package repository

import (
	"github.com/krakosik/reputation/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Repositories interface {
	Actor() ActorRepository
	Vote() VoteRepository
}

type repositories struct {
	actorRepository ActorRepository
	voteRepository  VoteRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	err := db.AutoMigrate(&model.Actor{}, &model.Vote{})
	if err != nil {
		logrus.Panic(err)
	}
	actorRepository := newActorRepository(db)
	voteRepository := newVoteRepository(db)
	return &repositories{
		actorRepository: actorRepository,
		voteRepository:  voteRepository,
	}
}

func (r repositories) Actor() ActorRepository {
	return r.actorRepository
}

func (r repositories) Vote() VoteRepository {
	return r.voteRepository
}
