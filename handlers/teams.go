package handlers

import (
	"errors"
	"net/http"

	"churchops/apperr"
	"churchops/models"
	"churchops/scheduling"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TeamsHandler struct {
	db     *gorm.DB
	rules  *scheduling.Rules
	logger *zap.Logger
}

func NewTeamsHandler(db *gorm.DB, rules *scheduling.Rules, logger *zap.Logger) *TeamsHandler {
	return &TeamsHandler{db: db, rules: rules, logger: logger}
}

type teamRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (h *TeamsHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req teamRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	team := models.Team{TenantID: tenantID, Name: req.Name}
	if err := h.db.Create(&team).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, team)
}

func (h *TeamsHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var teams []models.Team
	if err := h.db.Preload("Skills").Where("tenant_id = ?", tenantID).Find(&teams).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, teams)
}

func (h *TeamsHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	teamID, err := uintParam(r, "teamID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req teamRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.Model(&models.Team{}).
		Where("id = ? AND tenant_id = ?", teamID, tenantID).
		Update("name", req.Name)
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Team not found"))
		return
	}

	var team models.Team
	if err := h.db.First(&team, teamID).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

func (h *TeamsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	teamID, err := uintParam(r, "teamID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.Where("id = ? AND tenant_id = ?", teamID, tenantID).Delete(&models.Team{})
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Team not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type skillRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (h *TeamsHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	teamID, err := uintParam(r, "teamID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req skillRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	var team models.Team
	if err := h.db.Where("id = ? AND tenant_id = ?", teamID, tenantID).First(&team).Error; err != nil {
		respondError(w, h.logger, apperr.NotFound("Team not found"))
		return
	}

	skill := models.Skill{TenantID: tenantID, TeamID: teamID, Name: req.Name}
	if err := h.db.Create(&skill).Error; err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, skill)
}

func (h *TeamsHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	teamID, err := uintParam(r, "teamID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var skills []models.Skill
	err = h.db.Where("team_id = ? AND tenant_id = ?", teamID, tenantID).Find(&skills).Error
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, skills)
}

func (h *TeamsHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	skillID, err := uintParam(r, "skillID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.Where("id = ? AND tenant_id = ?", skillID, tenantID).Delete(&models.Skill{})
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Skill not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type addMemberRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"omitempty,max=100"`
}

// AddMember puts a seated user on a team. Only people holding an active seat
// qualify.
func (h *TeamsHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	teamID, err := uintParam(r, "teamID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	var team models.Team
	if err := h.db.Where("id = ? AND tenant_id = ?", teamID, tenantID).First(&team).Error; err != nil {
		respondError(w, h.logger, apperr.NotFound("Team not found"))
		return
	}

	var seated int64
	err = h.db.Model(&models.TenantUser{}).
		Joins("JOIN people ON people.id = tenant_users.person_id").
		Where("tenant_users.person_id = ? AND people.tenant_id = ?", req.UserID, tenantID).
		Count(&seated).Error
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if seated == 0 {
		respondError(w, h.logger, apperr.BadRequest("Active user not found or does not belong to this tenant"))
		return
	}

	member := models.TeamMember{
		TenantID: tenantID,
		TeamID:   teamID,
		UserID:   req.UserID,
		Role:     req.Role,
	}
	if err := h.db.Create(&member).Error; err != nil {
		respondError(w, h.logger, apperr.Conflict("User is already a member of this team"))
		return
	}
	respondJSON(w, http.StatusCreated, member)
}

func (h *TeamsHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	teamID, err := uintParam(r, "teamID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var members []models.TeamMember
	err = h.db.Preload("Skills").
		Where("team_id = ? AND tenant_id = ?", teamID, tenantID).
		Find(&members).Error
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

func (h *TeamsHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	memberID, err := uintParam(r, "memberID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.Where("id = ? AND tenant_id = ?", memberID, tenantID).Delete(&models.TeamMember{})
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Team member not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type grantMemberSkillRequest struct {
	SkillID uint `json:"skill_id" validate:"required"`
}

// GrantMemberSkill records that a membership holds a skill. The skill must
// belong to the member's own team.
func (h *TeamsHandler) GrantMemberSkill(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	memberID, err := uintParam(r, "memberID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req grantMemberSkillRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	var member models.TeamMember
	err = h.db.Where("id = ? AND tenant_id = ?", memberID, tenantID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, h.logger, apperr.NotFound("Team member not found or does not belong to this tenant"))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	var skill models.Skill
	err = h.db.Where("id = ? AND tenant_id = ? AND team_id = ?", req.SkillID, tenantID, member.TeamID).
		First(&skill).Error
	if err != nil {
		respondError(w, h.logger, apperr.NotFound("Skill not found in this team"))
		return
	}

	grant := models.TeamMemberSkill{
		TenantID:     tenantID,
		TeamMemberID: member.ID,
		SkillID:      skill.ID,
	}
	if err := h.db.Create(&grant).Error; err != nil {
		respondError(w, h.logger, apperr.Conflict("Member already has this skill"))
		return
	}
	respondJSON(w, http.StatusCreated, grant)
}

func (h *TeamsHandler) RevokeMemberSkill(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	memberID, err := uintParam(r, "memberID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	skillID, err := uintParam(r, "skillID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	result := h.db.
		Where("team_member_id = ? AND skill_id = ? AND tenant_id = ?", memberID, skillID, tenantID).
		Delete(&models.TeamMemberSkill{})
	if result.Error != nil {
		respondError(w, h.logger, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, h.logger, apperr.NotFound("Member skill not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type incompatibilityRequest struct {
	SkillID1 uint `json:"skill_id_1" validate:"required"`
	SkillID2 uint `json:"skill_id_2" validate:"required"`
}

func (h *TeamsHandler) AddIncompatibility(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req incompatibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	pair, err := h.rules.Add(r.Context(), tenantID, req.SkillID1, req.SkillID2)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, pair)
}

func (h *TeamsHandler) RemoveIncompatibility(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	skillID1, err := uintParam(r, "skillID1")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	skillID2, err := uintParam(r, "skillID2")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := h.rules.Remove(r.Context(), tenantID, skillID1, skillID2); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *TeamsHandler) ListIncompatibilities(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uintParam(r, "tenantID")
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	pairs, err := h.rules.List(r.Context(), tenantID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, pairs)
}
