package handlers

import (
	"net/http"

	"github.com/gamehost/siteadmin/src/middleware"
	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/services"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles admin identity endpoints
type AdminHandler struct {
	adminService  *services.AdminService
	jwtManager    *middleware.JWTManager
	secureCookies bool
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService, jwtManager *middleware.JWTManager, secureCookies bool) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		jwtManager:    jwtManager,
		secureCookies: secureCookies,
	}
}

// RegisterFirstUserRequest is the body of POST /api/admin/register-first-user
type RegisterFirstUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=8"`
}

// AdminLoginRequest is the body of POST /api/admin/login
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminSessionResponse is returned after registration and login
type AdminSessionResponse struct {
	Token string               `json:"token"`
	User  models.AdminIdentity `json:"user"`
}

// HandleCheckFirstUser reports whether the first-run registration is still open
func (ah *AdminHandler) HandleCheckFirstUser(c *gin.Context) {
	hasAdmins, err := ah.adminService.HasAdmins(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to check admin users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"isFirstUser": !hasAdmins})
}

// HandleRegisterFirstUser creates the first admin and signs them in
func (ah *AdminHandler) HandleRegisterFirstUser(c *gin.Context) {
	hasAdmins, err := ah.adminService.HasAdmins(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to check admin users")
		return
	}
	if hasAdmins {
		respondError(c, services.ErrFirstUserExists, "")
		return
	}

	var req RegisterFirstUserRequest
	if !bindJSON(c, &req) {
		return
	}

	admin, err := ah.adminService.RegisterFirstUser(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		respondError(c, err, "failed to register admin user")
		return
	}

	ah.startSession(c, admin)
}

// HandleAdminLogin authenticates an admin and returns a session token
func (ah *AdminHandler) HandleAdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	admin, err := ah.adminService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "failed to authenticate")
		return
	}

	ah.startSession(c, admin)
}

// HandleCheckAuth confirms the session token and echoes the identity
func (ah *AdminHandler) HandleCheckAuth(c *gin.Context) {
	admin, _ := middleware.CurrentAdmin(c)
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  admin,
	})
}

// HandleAdminLogout clears the admin token cookie
func (ah *AdminHandler) HandleAdminLogout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AdminTokenCookie, "", -1, "/", "", ah.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (ah *AdminHandler) startSession(c *gin.Context, admin *models.AdminUser) {
	identity := admin.Identity()
	token, err := ah.jwtManager.Generate(identity)
	if err != nil {
		respondError(c, err, "failed to generate token")
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		middleware.AdminTokenCookie,
		token,
		int(middleware.TokenLifetime.Seconds()),
		"/",
		"",
		ah.secureCookies,
		true, // HttpOnly
	)

	c.JSON(http.StatusOK, AdminSessionResponse{Token: token, User: identity})
}
