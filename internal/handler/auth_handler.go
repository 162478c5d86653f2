package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/retail_api/internal/middleware"
	"github.com/GTDGit/retail_api/internal/models"
	"github.com/GTDGit/retail_api/internal/utils"
)

// Authenticator checks credentials and issues tokens.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

type AuthHandler struct {
	authService Authenticator
	limiter     *middleware.InvalidAuthRateLimiter
}

func NewAuthHandler(authService Authenticator, limiter *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

func (h *AuthHandler) Login(c *gin.Context) {
	ip := c.ClientIP()
	if h.limiter != nil && h.limiter.Blocked(ip) {
		utils.Error(c, 429, "TOO_MANY_ATTEMPTS", "Too many failed login attempts, try again later")
		return
	}

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidCredentials), errors.Is(err, utils.ErrAccountInactive):
			if h.limiter != nil {
				h.limiter.Fail(ip)
			}
			utils.Error(c, 401, "INVALID_CREDENTIALS", err.Error())
		default:
			log.Error().Err(err).Msg("Login failed")
			utils.Error(c, 500, "INTERNAL_ERROR", "Login failed")
		}
		return
	}

	if h.limiter != nil {
		h.limiter.Reset(ip)
	}
	utils.Success(c, 200, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}
