package handlers

import (
	"errors"
	"net/http"

	"churchops/apperr"
	"churchops/config"
	"churchops/middleware"
	"churchops/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	config *config.Config
	db     *gorm.DB
	auth   *middleware.Auth
	logger *zap.Logger
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB, auth *middleware.Auth, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{config: cfg, db: db, auth: auth, logger: logger}
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	TenantSlug string `json:"tenant_slug"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates a platform admin, or a tenant person when tenant_slug
// is given. Wrong slug, unknown email and bad password all yield the same
// response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	if req.TenantSlug == "" {
		h.loginAdmin(w, req)
		return
	}
	h.loginPerson(w, req)
}

func (h *AuthHandler) loginAdmin(w http.ResponseWriter, req loginRequest) {
	var admin models.PlatformAdmin
	err := h.db.Where("email = ?", req.Email).First(&admin).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		respondError(w, h.logger, apperr.BadRequest("Invalid credentials"))
		return
	}

	token, err := h.auth.GenerateAdminToken(&admin, h.config.JWTExpiration)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (h *AuthHandler) loginPerson(w http.ResponseWriter, req loginRequest) {
	var tenant models.Tenant
	if err := h.db.Where("slug = ?", req.TenantSlug).First(&tenant).Error; err != nil {
		respondError(w, h.logger, apperr.BadRequest("Invalid credentials"))
		return
	}

	var person models.Person
	err := h.db.Where("email = ? AND tenant_id = ?", req.Email, tenant.ID).First(&person).Error
	if err != nil || person.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(req.Password)) != nil {
		respondError(w, h.logger, apperr.BadRequest("Invalid credentials"))
		return
	}

	// Only seated people can log in.
	var seat models.TenantUser
	if err := h.db.Where("person_id = ?", person.ID).First(&seat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, h.logger, apperr.BadRequest("Invalid credentials"))
			return
		}
		respondError(w, h.logger, err)
		return
	}

	token, err := h.auth.GeneratePersonToken(&person, h.config.JWTExpiration)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{Token: token})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		respondError(w, h.logger, apperr.BadRequest("Unauthorized"))
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.logger, err)
		return
	}

	var currentHash string
	if principal.IsPlatformAdmin() {
		currentHash = principal.Admin.PasswordHash
	} else {
		currentHash = principal.Person.PasswordHash
	}

	if bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(req.CurrentPassword)) != nil {
		respondError(w, h.logger, apperr.BadRequest("Current password is incorrect"))
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if principal.IsPlatformAdmin() {
		err = h.db.Model(principal.Admin).
			Updates(map[string]interface{}{"password_hash": string(newHash), "must_change_password": false}).Error
	} else {
		err = h.db.Model(principal.Person).
			Update("password_hash", string(newHash)).Error
	}
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
