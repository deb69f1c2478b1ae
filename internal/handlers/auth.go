package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"epicmail-service/internal/auth"
	"epicmail-service/internal/models"
	"epicmail-service/internal/repositories"
	"epicmail-service/internal/telemetry"
	"epicmail-service/internal/validation"
)

// AuthHandler manages signup and login.
type AuthHandler struct {
	users  repositories.UserRepository
	tokens *auth.TokenIssuer
	audit  *telemetry.AuditEmitter
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users repositories.UserRepository, tokens *auth.TokenIssuer, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, audit: audit}
}

// Signup handles POST /api/v1/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	fields, ok := bindStrict(c, "firstName", "lastName", "email", "password")
	if !ok {
		return
	}

	if verr := validation.ValidateSignup(fields["firstName"], fields["lastName"], fields["email"], fields["password"]); verr != nil {
		rejectValidation(c, verr)
		return
	}

	// Safe after validation: all four are strings now.
	firstName := fields["firstName"].(string)
	lastName := fields["lastName"].(string)
	email := fields["email"].(string)
	password := fields["password"].(string)

	hash, err := auth.HashPassword(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create account"})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), firstName, lastName, email, hash)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("User with email %s already exists", email)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create account"})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	h.emitAudit(c, "INFO", "User signed up")
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"data":  models.Identity{UserID: user.ID, Email: user.Email},
	})
}

// Login handles POST /api/v1/auth/login. Pure read plus compare, no mutation.
func (h *AuthHandler) Login(c *gin.Context) {
	fields, ok := bindStrict(c, "email", "password")
	if !ok {
		return
	}

	if verr := validation.ValidateLogin(fields["email"], fields["password"]); verr != nil {
		rejectValidation(c, verr)
		return
	}

	email := fields["email"].(string)
	password := fields["password"].(string)

	user, err := h.users.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with email %s does not exist", email)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not log in"})
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		h.emitAudit(c, "ERROR", "login rejected: bad credential")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Your password is incorrect. Please try again"})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	h.emitAudit(c, "INFO", "User logged in")
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"data":  models.Identity{UserID: user.ID, Email: user.Email},
	})
}

func (h *AuthHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
