// controllers/sync_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"relief_resource_sync/app"
)

// SyncController exposes the write queue and connectivity state, mainly for
// field diagnostics and drills.
type SyncController struct{ *Srv }

func NewSyncController(s *Srv) *SyncController { return &SyncController{Srv: s} }

func (sc *SyncController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, app.H{
		"online":  sc.Net.IsOnline(),
		"pending": sc.Queue.Len(),
		"queue":   sc.Queue.Pending(),
	})
}

// SetConnectivity flips the monitor, e.g. to rehearse an offline window.
// Going online triggers a queue drain through the monitor's subscribers.
func (sc *SyncController) SetConnectivity(c *gin.Context) {
	var in struct {
		Online *bool `json:"online" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	sc.Net.Set(*in.Online)
	c.JSON(http.StatusOK, app.H{"online": sc.Net.IsOnline()})
}

// Drain replays the queue immediately instead of waiting for a transition.
func (sc *SyncController) Drain(c *gin.Context) {
	if !sc.Net.IsOnline() {
		c.JSON(http.StatusConflict, app.H{"error": "cannot drain while offline"})
		return
	}
	replayed, failed := sc.Engine.DrainQueue(c.Request.Context())
	c.JSON(http.StatusOK, app.H{"replayed": replayed, "failed": failed, "pending": sc.Queue.Len()})
}
