package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"churchops/models"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contextKey string

const PrincipalContextKey contextKey = "principal"

// Principal is the authenticated caller: either a platform admin or a
// tenant-scoped person.
type Principal struct {
	Admin  *models.PlatformAdmin
	Person *models.Person
}

func (p *Principal) IsPlatformAdmin() bool {
	return p.Admin != nil
}

type Claims struct {
	SubjectID uint   `json:"subject_id"`
	TenantID  uint   `json:"tenant_id"`
	Email     string `json:"email"`
	Admin     bool   `json:"admin"`
	jwt.RegisteredClaims
}

// Auth issues and validates tokens and carries the route guards. The secret
// and database handle are injected; there is no package-level state.
type Auth struct {
	secret []byte
	db     *gorm.DB
	logger *zap.Logger
}

func NewAuth(secret string, db *gorm.DB, logger *zap.Logger) *Auth {
	return &Auth{secret: []byte(secret), db: db, logger: logger}
}

func (a *Auth) GenerateAdminToken(admin *models.PlatformAdmin, expiration time.Duration) (string, error) {
	return a.sign(&Claims{
		SubjectID: admin.ID,
		Email:     admin.Email,
		Admin:     true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

func (a *Auth) GeneratePersonToken(person *models.Person, expiration time.Duration) (string, error) {
	return a.sign(&Claims{
		SubjectID: person.ID,
		TenantID:  person.TenantID,
		Email:     person.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
}

func (a *Auth) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Auth) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// Middleware authenticates the Bearer token and loads the principal.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tokenString string
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			writeJSONError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		principal := &Principal{}
		if claims.Admin {
			var admin models.PlatformAdmin
			if err := a.db.First(&admin, claims.SubjectID).Error; err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Account not found")
				return
			}
			principal.Admin = &admin
		} else {
			var person models.Person
			if err := a.db.First(&person, claims.SubjectID).Error; err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Account not found")
				return
			}
			principal.Person = &person
		}

		ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin restricts a route to platform admins.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := GetPrincipal(r.Context())
		if principal == nil || !principal.IsPlatformAdmin() {
			writeJSONError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTenantUser admits platform admins and any person of the tenant named
// in the URL.
func (a *Auth) RequireTenantUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, tenantID, ok := a.tenantScope(w, r)
		if !ok {
			return
		}
		if principal.IsPlatformAdmin() || principal.Person.TenantID == tenantID {
			next.ServeHTTP(w, r)
			return
		}
		writeJSONError(w, http.StatusForbidden, "Forbidden")
	})
}

// RequireTenantManager admits platform admins and tenant owners/admins.
func (a *Auth) RequireTenantManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, tenantID, ok := a.tenantScope(w, r)
		if !ok {
			return
		}
		if principal.IsPlatformAdmin() {
			next.ServeHTTP(w, r)
			return
		}
		if principal.Person.TenantID == tenantID && principal.Person.IsManager() {
			next.ServeHTTP(w, r)
			return
		}
		writeJSONError(w, http.StatusForbidden, "Forbidden")
	})
}

func (a *Auth) tenantScope(w http.ResponseWriter, r *http.Request) (*Principal, uint, bool) {
	principal := GetPrincipal(r.Context())
	if principal == nil {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, 0, false
	}

	tenantID, err := strconv.ParseUint(chi.URLParam(r, "tenantID"), 10, 32)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid tenant id")
		return nil, 0, false
	}
	return principal, uint(tenantID), true
}

func GetPrincipal(ctx context.Context) *Principal {
	principal, ok := ctx.Value(PrincipalContextKey).(*Principal)
	if !ok {
		return nil
	}
	return principal
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
