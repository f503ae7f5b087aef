package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"ogarx/internal/domain"
	"ogarx/internal/service"
)

// RegisterOutput contains the results of a successful registration.
type RegisterOutput struct {
	User  *domain.User   `json:"user"`
	Token *service.Token `json:"token"`
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService     service.AuthService
	identityService service.IdentityService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, identityService service.IdentityService) *AuthHandler {
	return &AuthHandler{authService: authService, identityService: identityService}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	token, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, token)
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	user, err := h.identityService.Register(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		log.Printf("AuthHandler.Register: user %s created but token issue failed: %v", user.Username, err)
		HandleError(c, err)
		return
	}

	RespondCreated(c, RegisterOutput{User: user, Token: token})
}
