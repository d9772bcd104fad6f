package handlers

import (
	"net/http"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/services"
	"github.com/gin-gonic/gin"
)

// PlanHandler serves the public plan catalog and its admin editor
type PlanHandler struct {
	plans *services.PlanService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(plans *services.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// PlanRequest is the body of the plan create and update endpoints
type PlanRequest struct {
	Slug          string   `json:"slug" binding:"required"`
	Name          string   `json:"name" binding:"required"`
	Category      string   `json:"category" binding:"required"`
	PriceCents    int      `json:"price_cents" binding:"min=0"`
	BillingPeriod string   `json:"billing_period" binding:"omitempty,oneof=monthly quarterly yearly"`
	Features      []string `json:"features"`
	Position      int      `json:"position"`
	IsActive      *bool    `json:"is_active"`
}

func (r *PlanRequest) toPlan(id int64) *models.Plan {
	return &models.Plan{
		ID:            id,
		Slug:          r.Slug,
		Name:          r.Name,
		Category:      r.Category,
		PriceCents:    r.PriceCents,
		BillingPeriod: r.BillingPeriod,
		Features:      r.Features,
		Position:      r.Position,
		IsActive:      r.IsActive == nil || *r.IsActive,
	}
}

// HandleList returns the active plans
func (ph *PlanHandler) HandleList(c *gin.Context) {
	plans, err := ph.plans.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to load plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// HandleCreate adds a plan
func (ph *PlanHandler) HandleCreate(c *gin.Context) {
	var req PlanRequest
	if !bindJSON(c, &req) {
		return
	}

	plan := req.toPlan(0)
	if err := ph.plans.Create(c.Request.Context(), plan); err != nil {
		respondError(c, err, "failed to create plan")
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// HandleUpdate replaces a plan
func (ph *PlanHandler) HandleUpdate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req PlanRequest
	if !bindJSON(c, &req) {
		return
	}

	plan := req.toPlan(id)
	if err := ph.plans.Update(c.Request.Context(), plan); err != nil {
		respondError(c, err, "failed to update plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// HandleDelete removes a plan
func (ph *PlanHandler) HandleDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := ph.plans.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "failed to delete plan")
		return
	}
	c.Status(http.StatusNoContent)
}
