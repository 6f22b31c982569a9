// controllers/resource_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"relief_resource_sync/app"
	"relief_resource_sync/engine"
)

type ResourceController struct{ *Srv }

func NewResourceController(s *Srv) *ResourceController { return &ResourceController{Srv: s} }

func (rc *ResourceController) CreateResource(c *gin.Context) {
	var in struct {
		Name          string   `json:"name" binding:"required"`
		Category      string   `json:"category"`
		Condition     string   `json:"condition"`
		TotalQuantity int      `json:"totalQuantity"`
		Location      string   `json:"location"`
		Tags          []string `json:"tags"`
		AgencyID      string   `json:"agencyId"`
		ImageRefs     []string `json:"imageRefs"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	res, err := rc.Engine.CreateResource(c.Request.Context(), engine.ResourceInput{
		Name:          in.Name,
		Category:      in.Category,
		Condition:     in.Condition,
		TotalQuantity: in.TotalQuantity,
		Location:      in.Location,
		Tags:          in.Tags,
		AgencyID:      in.AgencyID,
		ImageRefs:     in.ImageRefs,
	}, actorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (rc *ResourceController) ListResources(c *gin.Context) {
	c.JSON(http.StatusOK, app.H{"items": rc.Store.Resources()})
}

func (rc *ResourceController) GetResource(c *gin.Context) {
	res, ok := rc.Store.Resource(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, app.H{"error": "resource not found"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// UpdateResource accepts a partial field map, the same shape the remote
// document store receives.
func (rc *ResourceController) UpdateResource(c *gin.Context) {
	var changes map[string]any
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	delete(changes, "id")
	res, err := rc.Engine.UpdateResource(c.Request.Context(), c.Param("id"), changes, actorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (rc *ResourceController) DeleteResource(c *gin.Context) {
	if err := rc.Engine.DeleteResource(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// ListHistory returns the audit trail, optionally scoped to one resource.
func (rc *ResourceController) ListHistory(c *gin.Context) {
	entries := rc.Store.History()
	if rid := c.Query("resourceId"); rid != "" {
		filtered := entries[:0:0]
		for _, e := range entries {
			if e.ResourceID == rid {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	c.JSON(http.StatusOK, app.H{"items": entries})
}
