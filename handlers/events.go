package handlers

import (
	"errors"
	"net/http"
	"time"

	"churchops/apperr"
	"churchops/models"
	"churchops/scheduling"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EventsHandler struct {
	db          *gorm.DB
	assignments *scheduling.Assignments
	logger      *zap.Logger
}

func NewEventsHandler(db *gorm.DB, assignments *scheduling.Assignments, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{db: db, assignments: assignments, logger: logger}
}

type templateRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (h *EventsHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	template := models.EventTemplate{TenantID: tenantID, Name: req.Name}
	if err := h.db.Create(&template).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, template)
}

func (h *EventsHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var templates []models.EventTemplate
	err = h.db.Preload("Slots").Where("tenant_id = ?", tenantID).Find(&templates).Error
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, templates)
}

func (h *EventsHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	templateID, err := uintParam(r, "templateID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.Where("id = ? AND tenant_id = ?", templateID, tenantID).Delete(&models.EventTemplate{})
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Template not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type templateSlotRequest struct {
	TeamID   uint `json:"team_id" validate:"required"`
	SkillID  uint `json:"skill_id" validate:"required"`
	Quantity int  `json:"quantity" validate:"required,min=1"`
}

func (h *EventsHandler) CreateTemplateSlot(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	templateID, err := uintParam(r, "templateID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req templateSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	var template models.EventTemplate
	err = h.db.Where("id = ? AND tenant_id = ?", templateID, tenantID).First(&template).Error
	if err != nil {
		respondError(w, h.logger, apperr.NotFound("Template not found"))
		return
	}

	if err := h.verifySlotTarget(tenantID, req.TeamID, req.SkillID); err != nil {
		respondError(w, h.logger, err)
		return
	}

	slot := models.TemplateSlot{
		TenantID:   tenantID,
		TemplateID: templateID,
		TeamID:     req.TeamID,
		SkillID:    req.SkillID,
		Quantity:   req.Quantity,
	}
	if err := h.db.Create(&slot).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, slot)
}

func (h *EventsHandler) DeleteTemplateSlot(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	slotID, err := uintParam(r, "slotID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.Where("id = ? AND tenant_id = ?", slotID, tenantID).Delete(&models.TemplateSlot{})
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Template slot not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type createEventRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Date       string `json:"date" validate:"required"`
	TemplateID *uint  `json:"template_id"`
}

// CreateEvent creates an event, copying template slots inside one transaction
// when a template is given. A partially copied slot set must never be
// observable.
func (h *EventsHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		respondError(w, h.logger, apperr.BadRequest("Invalid date format"))
		return
	}

	if req.TemplateID != nil {
		var template models.EventTemplate
		err = h.db.Where("id = ? AND tenant_id = ?", *req.TemplateID, tenantID).First(&template).Error
		if err != nil {
			respondError(w, h.logger, apperr.BadRequest("Template not found in this tenant"))
			return
		}
	}

	event := models.Event{
		TenantID:   tenantID,
		TemplateID: req.TemplateID,
		Name:       req.Name,
		Date:       date,
		Status:     models.EventStatusDraft,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		if req.TemplateID == nil {
			return nil
		}

		var templateSlots []models.TemplateSlot
		err := tx.Where("template_id = ? AND tenant_id = ?", *req.TemplateID, tenantID).
			Find(&templateSlots).Error
		if err != nil {
			return err
		}
		if len(templateSlots) == 0 {
			return nil
		}

		slots := make([]models.EventSlot, 0, len(templateSlots))
		for _, ts := range templateSlots {
			slots = append(slots, models.EventSlot{
				TenantID: tenantID,
				EventID:  event.ID,
				TeamID:   ts.TeamID,
				SkillID:  ts.SkillID,
				Quantity: ts.Quantity,
			})
		}
		return tx.Create(&slots).Error
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, event)
}

func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var events []models.Event
	if err := h.db.Where("tenant_id = ?", tenantID).Find(&events).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	eventID, err := uintParam(r, "eventID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var event models.Event
	err = h.db.Preload("Slots").Where("id = ? AND tenant_id = ?", eventID, tenantID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, h.logger, apperr.NotFound("Event not found"))
			return
		}
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

type updateEventRequest struct {
	Name   string             `json:"name" validate:"omitempty,max=255"`
	Date   string             `json:"date"`
	Status models.EventStatus `json:"status" validate:"omitempty,oneof=draft published completed cancelled"`
}

func (h *EventsHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	eventID, err := uintParam(r, "eventID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Date != "" {
		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			respondError(w, h.logger, apperr.BadRequest("Invalid date format"))
			return
		}
		updates["date"] = date
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if len(updates) == 0 {
		respondError(w, h.logger, apperr.BadRequest("No fields to update"))
		return
	}

	result := h.db.Model(&models.Event{}).
		Where("id = ? AND tenant_id = ?", eventID, tenantID).
		Updates(updates)
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Event not found"))
		return
	}

	var event models.Event
	if err := h.db.First(&event, eventID).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

func (h *EventsHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	eventID, err := uintParam(r, "eventID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.Where("id = ? AND tenant_id = ?", eventID, tenantID).Delete(&models.Event{})
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Event not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type eventSlotRequest struct {
	TeamID   uint `json:"team_id" validate:"required"`
	SkillID  uint `json:"skill_id" validate:"required"`
	Quantity int  `json:"quantity" validate:"required,min=1"`
}

func (h *EventsHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	eventID, err := uintParam(r, "eventID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req eventSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	var event models.Event
	err = h.db.Where("id = ? AND tenant_id = ?", eventID, tenantID).First(&event).Error
	if err != nil {
		respondError(w, h.logger, apperr.BadRequest("Event not found in this tenant"))
		return
	}

	if err := h.verifySlotTarget(tenantID, req.TeamID, req.SkillID); err != nil {
		respondError(w, h.logger, err)
		return
	}

	slot := models.EventSlot{
		TenantID: tenantID,
		EventID:  eventID,
		TeamID:   req.TeamID,
		SkillID:  req.SkillID,
		Quantity: req.Quantity,
	}
	if err := h.db.Create(&slot).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, slot)
}

func (h *EventsHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	eventID, err := uintParam(r, "eventID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var slots []models.EventSlot
	err = h.db.Where("event_id = ? AND tenant_id = ?", eventID, tenantID).Find(&slots).Error
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

type updateSlotRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func (h *EventsHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	slotID, err := uintParam(r, "slotID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req updateSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.Model(&models.EventSlot{}).
		Where("id = ? AND tenant_id = ?", slotID, tenantID).
		Update("quantity", req.Quantity)
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Event slot not found"))
		return
	}

	var slot models.EventSlot
	if err := h.db.First(&slot, slotID).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, slot)
}

func (h *EventsHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	slotID, err := uintParam(r, "slotID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.Where("id = ? AND tenant_id = ?", slotID, tenantID).Delete(&models.EventSlot{})
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Event slot not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type createAssignmentRequest struct {
	SlotID uint `json:"slot_id" validate:"required"`
	UserID uint `json:"user_id" validate:"required"`
}

func (h *EventsHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	eventID, err := uintParam(r, "eventID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req createAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	assignment, err := h.assignments.Create(r.Context(), tenantID, eventID, req.SlotID, req.UserID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, assignment)
}

func (h *EventsHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	assignmentID, err := uintParam(r, "assignmentID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := h.assignments.Delete(r.Context(), tenantID, assignmentID); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *EventsHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	eventID, err := uintParam(r, "eventID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	assignments, err := h.assignments.List(r.Context(), tenantID, eventID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, assignments)
}

// verifySlotTarget checks that the team is in the tenant and the skill
// belongs to that team.
func (h *EventsHandler) verifySlotTarget(tenantID, teamID, skillID uint) error {
	var team models.Team
	err := h.db.Where("id = ? AND tenant_id = ?", teamID, tenantID).First(&team).Error
	if err != nil {
		return apperr.BadRequest("Team not found in this tenant")
	}

	var skill models.Skill
	err = h.db.Where("id = ? AND tenant_id = ? AND team_id = ?", skillID, tenantID, teamID).First(&skill).Error
	if err != nil {
		return apperr.BadRequest("Skill not found in this team")
	}
	return nil
}
