package handlers

import (
	"errors"
	"net/http"

	"churchops/apperr"
	"churchops/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type TenantsHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewTenantsHandler(db *gorm.DB, logger *zap.Logger) *TenantsHandler {
	return &TenantsHandler{db: db, logger: logger}
}

type createTenantRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	Slug          string `json:"slug" validate:"required,max=100,lowercase"`
	PlanID        uint   `json:"plan_id" validate:"required"`
	OwnerEmail    string `json:"owner_email" validate:"required,email"`
	OwnerName     string `json:"owner_name" validate:"required,max=255"`
	OwnerPassword string `json:"owner_password" validate:"required,min=8"`
}

type createTenantResponse struct {
	Tenant models.Tenant `json:"tenant"`
	APIKey string        `json:"api_key"`
	Owner  models.Person `json:"owner"`
}

// Create provisions a tenant with its owner person and seat in one
// transaction, and returns the issued API key once.
func (h *TenantsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	var plan models.Plan
	if err := h.db.First(&plan, req.PlanID).Error; err != nil {
		respondError(w, h.logger, apperr.BadRequest("Plan not found"))
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	apiKey := uuid.NewString()
	tenant := models.Tenant{
		Name:   req.Name,
		Slug:   req.Slug,
		APIKey: apiKey,
		PlanID: plan.ID,
	}
	owner := models.Person{
		Email:        req.OwnerEmail,
		FullName:     req.OwnerName,
		Role:         models.TenantRoleOwner,
		PasswordHash: string(passwordHash),
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return apperr.Conflict("Tenant slug already exists")
		}
		owner.TenantID = tenant.ID
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		seat := models.TenantUser{PersonID: owner.ID, TenantID: tenant.ID}
		return tx.Create(&seat).Error
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	h.logger.Info("tenant provisioned",
		zap.Uint("tenant_id", tenant.ID),
		zap.String("slug", tenant.Slug))
	respondJSON(w, http.StatusCreated, createTenantResponse{Tenant: tenant, APIKey: apiKey, Owner: owner})
}

func (h *TenantsHandler) List(w http.ResponseWriter, r *http.Request) {
	var tenants []models.Tenant
	if err := h.db.Preload("Plan").Find(&tenants).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, tenants)
}

func (h *TenantsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var tenant models.Tenant
	if err := h.db.Preload("Plan").First(&tenant, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, h.logger, apperr.NotFound("Tenant not found"))
			return
		}
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, tenant)
}

type updateTenantRequest struct {
	Name   string `json:"name" validate:"omitempty,max=255"`
	PlanID uint   `json:"plan_id"`
}

func (h *TenantsHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req updateTenantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.PlanID != 0 {
		var plan models.Plan
		if err := h.db.First(&plan, req.PlanID).Error; err != nil {
			respondError(w, h.logger, apperr.BadRequest("Plan not found"))
			return
		}
		updates["plan_id"] = req.PlanID
	}
	if len(updates) == 0 {
		respondError(w, h.logger, apperr.BadRequest("No fields to update"))
		return
	}

	result := h.db.Model(&models.Tenant{}).Where("id = ?", tenantID).Updates(updates)
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Tenant not found"))
		return
	}

	var tenant models.Tenant
	if err := h.db.First(&tenant, tenantID).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, tenant)
}

func (h *TenantsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.Delete(&models.Tenant{}, tenantID)
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Tenant not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type grantSeatRequest struct {
	PersonID uint `json:"person_id" validate:"required"`
}

// GrantSeat turns a person into an active user of the tenant.
func (h *TenantsHandler) GrantSeat(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req grantSeatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	var person models.Person
	err = h.db.Where("id = ? AND tenant_id = ?", req.PersonID, tenantID).First(&person).Error
	if err != nil {
		respondError(w, h.logger, apperr.NotFound("Person not found in this tenant"))
		return
	}

	var existing int64
	h.db.Model(&models.TenantUser{}).Where("person_id = ?", person.ID).Count(&existing)
	if existing > 0 {
		respondError(w, h.logger, apperr.Conflict("Person already has an active seat"))
		return
	}

	seat := models.TenantUser{PersonID: person.ID, TenantID: tenantID}
	if err := h.db.Create(&seat).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, seat)
}

func (h *TenantsHandler) RevokeSeat(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	personID, err := uintParam(r, "personID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.Where("person_id = ? AND tenant_id = ?", personID, tenantID).Delete(&models.TenantUser{})
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Seat not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *TenantsHandler) ListSeats(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var seats []models.TenantUser
	if err := h.db.Preload("Person").Where("tenant_id = ?", tenantID).Find(&seats).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, seats)
}
