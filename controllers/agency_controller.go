// controllers/agency_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"relief_resource_sync/app"
	"relief_resource_sync/engine"
)

type AgencyController struct{ *Srv }

func NewAgencyController(s *Srv) *AgencyController { return &AgencyController{Srv: s} }

type agencyReq struct {
	Name     string `json:"name" binding:"required"`
	Contact  string `json:"contact"`
	Location string `json:"location"`
}

func (ac *AgencyController) CreateAgency(c *gin.Context) {
	var in agencyReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	a, err := ac.Engine.CreateAgency(c.Request.Context(), engine.AgencyInput{
		Name: in.Name, Contact: in.Contact, Location: in.Location,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (ac *AgencyController) ListAgencies(c *gin.Context) {
	c.JSON(http.StatusOK, app.H{"items": ac.Store.Agencies()})
}

func (ac *AgencyController) UpdateAgency(c *gin.Context) {
	var in struct {
		Name     string `json:"name"`
		Contact  string `json:"contact"`
		Location string `json:"location"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	a, err := ac.Engine.UpdateAgency(c.Request.Context(), c.Param("id"), engine.AgencyInput{
		Name: in.Name, Contact: in.Contact, Location: in.Location,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (ac *AgencyController) DeleteAgency(c *gin.Context) {
	if err := ac.Engine.DeleteAgency(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
