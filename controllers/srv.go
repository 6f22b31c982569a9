// controllers/srv.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"relief_resource_sync/app"
	"relief_resource_sync/engine"
	"relief_resource_sync/netmon"
	"relief_resource_sync/queue"
	"relief_resource_sync/store"
)

type Srv struct {
	Engine *engine.Engine
	Store  *store.Store
	Queue  *queue.Queue
	Net    *netmon.Monitor
	Cfg    app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Engine: a.Engine,
		Store:  a.Store,
		Queue:  a.Queue,
		Net:    a.Net,
		Cfg:    a.Config,
	}
}

// --- helpers ---

// actorID reads the identity the ActorID middleware stored.
func actorID(c *gin.Context) string {
	v, _ := c.Get("userID")
	id, _ := v.(string)
	return id
}

// fail maps engine sentinel errors onto HTTP statuses. Validation failures
// carry the full message so the field worker sees which resource or quantity
// was rejected.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrEntityNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, engine.ErrInsufficientQuantity):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, engine.ErrInvalidReturnQuantity):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	case errors.Is(err, engine.ErrPersistenceFailure):
		c.JSON(http.StatusBadGateway, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}
