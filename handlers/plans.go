package handlers

import (
	"errors"
	"net/http"

	"churchops/apperr"
	"churchops/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PlansHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPlansHandler(db *gorm.DB, logger *zap.Logger) *PlansHandler {
	return &PlansHandler{db: db, logger: logger}
}

type planRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	MaxMembers int    `json:"max_members" validate:"required,min=1"`
	MaxTeams   int    `json:"max_teams" validate:"required,min=1"`
	PriceCents int    `json:"price_cents" validate:"min=0"`
}

func (h *PlansHandler) List(w http.ResponseWriter, r *http.Request) {
	var plans []models.Plan
	if err := h.db.Find(&plans).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, plans)
}

func (h *PlansHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	plan := models.Plan{
		Name:       req.Name,
		MaxMembers: req.MaxMembers,
		MaxTeams:   req.MaxTeams,
		PriceCents: req.PriceCents,
	}
	if err := h.db.Create(&plan).Error; err != nil {
		respondError(w, h.logger, apperr.Conflict("Plan already exists"))
		return
	}
	respondJSON(w, http.StatusCreated, plan)
}

func (h *PlansHandler) Update(w http.ResponseWriter, r *http.Request) {
	planID, err := uintParam(r, "planID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	var plan models.Plan
	if err := h.db.First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, h.logger, apperr.NotFound("Plan not found"))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	plan.Name = req.Name
	plan.MaxMembers = req.MaxMembers
	plan.MaxTeams = req.MaxTeams
	plan.PriceCents = req.PriceCents
	if err := h.db.Save(&plan).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (h *PlansHandler) Delete(w http.ResponseWriter, r *http.Request) {
	planID, err := uintParam(r, "planID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var count int64
	h.db.Model(&models.Tenant{}).Where("plan_id = ?", planID).Count(&count)
	if count > 0 {
		respondError(w, h.logger, apperr.Conflict("Plan is in use by tenants"))
		return
	}

	result := h.db.Delete(&models.Plan{}, planID)
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Plan not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
