package controller

import (
	"github.com/krakosik/reputation/internal/service"
	"github.com/labstack/echo/v4"
)

type Controllers interface {
	Actor() ActorController
	Vote() VoteController
	Info() InfoController

	Route(e *echo.Echo)
}

type controllers struct {
	actorController ActorController
	voteController  VoteController
	infoController  InfoController
	authMiddleware  echo.MiddlewareFunc
}

func NewControllers(services service.Services) Controllers {
	actorController := newActorController(services.Identity(), services.Stats(), services.Search(), services.Query())
	voteController := newVoteController(services.Ledger(), services.Identity(), services.Search(), services.Query())
	infoController := newInfoController()
	return &controllers{
		actorController: actorController,
		voteController:  voteController,
		infoController:  infoController,
		authMiddleware:  AuthMiddleware(services.Auth()),
	}
}

func (c controllers) Actor() ActorController {
	return c.actorController
}

func (c controllers) Vote() VoteController {
	return c.voteController
}

func (c controllers) Info() InfoController {
	return c.infoController
}

func (c controllers) Route(e *echo.Echo) {
	e.GET("/", c.infoController.Info)

	actors := e.Group("/actors")
	actors.GET("/search", c.actorController.Search)
	actors.GET("/:id", c.actorController.Profile)
	actors.PUT("/:id", c.actorController.Upsert, c.authMiddleware)
	actors.GET("/:id/votes", c.actorController.ListVotes)

	votes := e.Group("/votes")
	votes.POST("", c.voteController.Submit, c.authMiddleware)
	votes.GET("/:id", c.voteController.Get)
	votes.GET("/:id/position", c.voteController.Position)
	votes.GET("/:id/navigate", c.voteController.Navigate)
}
