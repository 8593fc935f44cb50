package service

import (
	"time"

	authV4 "firebase.google.com/go/v4/auth"
	"github.com/krakosik/reputation/internal/client"
	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/repository"
	"github.com/sirupsen/logrus"
)

type Services interface {
	Identity() IdentityService
	Ledger() LedgerService
	Stats() StatsService
	Query() QueryService
	Search() SearchService
	Auth() AuthService
	Close() error
}

type services struct {
	identityService IdentityService
	ledgerService   LedgerService
	statsService    StatsService
	queryService    QueryService
	searchService   SearchService
	authService     AuthService
	votePublisher   VotePublisher
}

func NewServices(repositories repository.Repositories, config dto.Config, clients client.Clients) Services {
	location, err := config.Location()
	if err != nil {
		logrus.Panic(err)
	}

	return newServices(
		repositories,
		newStatsCache(clients.RedisClient(), config.StatsCacheTTL),
		newVotePublisher(clients.RabbitMQClient()),
		clients.AuthClient(),
		location,
		time.Now,
	)
}

func newServices(
	repositories repository.Repositories,
	statsCache StatsCache,
	votePublisher VotePublisher,
	authClient client.AuthClient,
	location *time.Location,
	now func() time.Time,
) *services {
	return &services{
		identityService: newIdentityService(repositories.Actor(), now),
		ledgerService: newLedgerService(
			repositories.Actor(),
			repositories.Vote(),
			statsCache,
			votePublisher,
			location,
			now,
		),
		statsService:  newStatsService(repositories.Vote(), statsCache),
		queryService:  newQueryService(repositories.Vote()),
		searchService: newSearchService(repositories.Actor()),
		authService:   newAuthService(repositories.Actor(), authClient, authV4.IsIDTokenExpired, now),
		votePublisher: votePublisher,
	}
}

func (s services) Identity() IdentityService {
	return s.identityService
}

func (s services) Ledger() LedgerService {
	return s.ledgerService
}

func (s services) Stats() StatsService {
	return s.statsService
}

func (s services) Query() QueryService {
	return s.queryService
}

func (s services) Search() SearchService {
	return s.searchService
}

func (s services) Auth() AuthService {
	return s.authService
}

func (s services) Close() error {
	return s.votePublisher.Close()
}
