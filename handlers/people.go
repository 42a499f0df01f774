package handlers

import (
	"errors"
	"net/http"

	"churchops/apperr"
	"churchops/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PeopleHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPeopleHandler(db *gorm.DB, logger *zap.Logger) *PeopleHandler {
	return &PeopleHandler{db: db, logger: logger}
}

func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var people []models.Person
	if err := h.db.Where("tenant_id = ?", tenantID).Find(&people).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, people)
}

type createPersonRequest struct {
	Email    string            `json:"email" validate:"required,email"`
	FullName string            `json:"full_name" validate:"required,max=255"`
	Role     models.TenantRole `json:"role" validate:"omitempty,oneof=owner admin"`
	Password string            `json:"password" validate:"omitempty,min=8"`
}

func (h *PeopleHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req createPersonRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	person := models.Person{
		TenantID: tenantID,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(w, h.logger, err)
			return
		}
		person.PasswordHash = string(hash)
	}

	if err := h.db.Create(&person).Error; err != nil {
		respondError(w, h.logger, apperr.Conflict("A person with this email already exists in this tenant"))
		return
	}
	respondJSON(w, http.StatusCreated, person)
}

func (h *PeopleHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	var person models.Person
	err = h.db.Where("id = ? AND tenant_id = ?", personID, tenantID).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, h.logger, apperr.NotFound("Person not found"))
			return
		}
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, person)
}

type updatePersonRequest struct {
	FullName string            `json:"full_name" validate:"omitempty,max=255"`
	Role     *models.TenantRole `json:"role" validate:"omitempty"`
}

func (h *PeopleHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req updatePersonRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.Role != nil {
		if *req.Role != models.TenantRoleMember && *req.Role != models.TenantRoleAdmin && *req.Role != models.TenantRoleOwner {
			respondError(w, h.logger, apperr.BadRequest("Invalid role"))
			return
		}
		updates["role"] = *req.Role
	}
	if len(updates) == 0 {
		respondError(w, h.logger, apperr.BadRequest("No fields to update"))
		return
	}

	result := h.db.Model(&models.Person{}).
		Where("id = ? AND tenant_id = ?", personID, tenantID).
		Updates(updates)
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Person not found"))
		return
	}

	var person models.Person
	if err := h.db.First(&person, personID).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, person)
}

func (h *PeopleHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	result := h.db.Where("id = ? AND tenant_id = ?", personID, tenantID).Delete(&models.Person{})
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Person not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type createFieldRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	DisplayName string `json:"display_name" validate:"required,max=255"`
}

func (h *PeopleHandler) CreateField(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req createFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	field := models.PersonField{
		TenantID:    tenantID,
		Name:        req.Name,
		DisplayName: req.DisplayName,
	}
	if err := h.db.Create(&field).Error; err != nil {
		respondError(w, h.logger, apperr.Conflict("Field already exists"))
		return
	}
	respondJSON(w, http.StatusCreated, field)
}

func (h *PeopleHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var fields []models.PersonField
	if err := h.db.Where("tenant_id = ?", tenantID).Find(&fields).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, fields)
}

func (h *PeopleHandler) DeleteField(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	fieldID, err := uintParam(r, "fieldID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.Where("id = ? AND tenant_id = ?", fieldID, tenantID).Delete(&models.PersonField{})
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Field not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type setFieldValueRequest struct {
	Value string `json:"value" validate:"max=1000"`
}

// SetFieldValue upserts one custom field value for a person.
func (h *PeopleHandler) SetFieldValue(w http.ResponseWriter, r *http.Request) {
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
	fieldID, err := uintParam(r, "fieldID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req setFieldValueRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	var person models.Person
	if err := h.db.Where("id = ? AND tenant_id = ?", personID, tenantID).First(&person).Error; err != nil {
		respondError(w, h.logger, apperr.NotFound("Person not found"))
		return
	}
	var field models.PersonField
	if err := h.db.Where("id = ? AND tenant_id = ?", fieldID, tenantID).First(&field).Error; err != nil {
		respondError(w, h.logger, apperr.NotFound("Field not found"))
		return
	}

	value := models.PersonFieldValue{
		PersonID: personID,
		FieldID:  fieldID,
		Value:    req.Value,
	}
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "person_id"}, {Name: "field_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&value).Error
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, value)
}

func (h *PeopleHandler) ListFieldValues(w http.ResponseWriter, r *http.Request) {
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

	var person models.Person
	if err := h.db.Where("id = ? AND tenant_id = ?", personID, tenantID).First(&person).Error; err != nil {
		respondError(w, h.logger, apperr.NotFound("Person not found"))
		return
	}

	var values []models.PersonFieldValue
	if err := h.db.Where("person_id = ?", personID).Find(&values).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, values)
}
