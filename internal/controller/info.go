package controller

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type InfoController interface {
	Info(c echo.Context) error
}

type infoController struct {
	startedAt time.Time
}

type infoResponse struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

func newInfoController() InfoController {
	return &infoController{
		startedAt: time.Now().UTC(),
	}
}

func (i *infoController) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, infoResponse{
		Name:      "reputation",
		Status:    "ok",
		StartedAt: i.startedAt,
	})
}
