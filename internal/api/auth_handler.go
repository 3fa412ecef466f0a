package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"portify/internal/api/middleware"
	"portify/internal/auth"
	"portify/internal/database"
)

const refreshTokenCookieName = "refresh_token"
const refreshTokenBlacklistKeyPrefix = "auth:refresh:blacklist:"
const loginRateLimitPerHour = 20

// AuthHandler handles registration (onboarding), login, refresh and logout.
type AuthHandler struct {
	db           *gorm.DB
	authService  *auth.AuthService
	redis        redis.UniversalClient
	logger       *slog.Logger
	cookieDomain string
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(db *gorm.DB, authService *auth.AuthService, redisClient redis.UniversalClient, logger *slog.Logger, cookieDomain string) *AuthHandler {
	return &AuthHandler{
		db:           db,
		authService:  authService,
		redis:        redisClient,
		logger:       logger,
		cookieDomain: cookieDomain,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=255"`
	Username string `json:"username" binding:"required,min=3,max=30"`
}

// Register creates an account with its public username and the default
// customization (minimal template, neutral theme, geist fonts). The username
// availability check is case-insensitive.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	username := database.NormalizeUsername(req.Username)
	if !ValidUsername(username) {
		BadRequest(c, "username must be 3-30 characters: lowercase letters, digits, hyphens")
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.String("username", username))

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing database.User
	err := h.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&existing).Error
	if err == nil {
		logger.Info("register conflict: account already exists")
		Conflict(c, "username or email already taken")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("register lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	user := database.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashed,
		Name:         req.Name,
		Username:     username,
		Theme:        database.DefaultTheme,
		Template:     database.TemplateMinimal,
	}

	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		logger.Error("create user failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("user registered", slog.String("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login verifies the password and returns a token pair, with the refresh
// token set as an HTTP-only cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	rateKey := "auth:login:rate:" + c.ClientIP()
	if count, err := incrWithTTL(ctx, h.redis, rateKey, time.Hour); err == nil && count > loginRateLimitPerHour {
		Error(c, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var user database.User
	err := h.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Unauthorized(c)
			return
		}
		logger.Error("login lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		Unauthorized(c)
		return
	}

	pair, err := h.authService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		logger.Error("generate token pair failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.authService.AccessTokenTTL().Seconds()),
	})
}

// Refresh rotates the token pair. The old refresh token is blacklisted for
// the remainder of its lifetime so it cannot be replayed.
func (h *AuthHandler) Refresh(c *gin.Context) {
	rawToken, err := c.Cookie(refreshTokenCookieName)
	if err != nil || strings.TrimSpace(rawToken) == "" {
		Unauthorized(c)
		return
	}

	claims, err := h.authService.ValidateToken(rawToken)
	if err != nil || claims.TokenType != "refresh" {
		Unauthorized(c)
		return
	}

	ctx := c.Request.Context()
	if h.isRefreshBlacklisted(c, claims.ID) {
		Unauthorized(c)
		return
	}

	var user database.User
	if err := h.db.WithContext(ctx).First(&user, "id = ?", claims.UserID).Error; err != nil {
		Unauthorized(c)
		return
	}

	pair, err := h.authService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate token pair failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.blacklistRefreshToken(c, claims)
	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.authService.AccessTokenTTL().Seconds()),
	})
}

// Logout blacklists the current refresh token and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if rawToken, err := c.Cookie(refreshTokenCookieName); err == nil && rawToken != "" {
		if claims, err := h.authService.ValidateToken(rawToken); err == nil && claims.TokenType == "refresh" {
			h.blacklistRefreshToken(c, claims)
		}
	}

	c.SetCookie(refreshTokenCookieName, "", -1, "/", h.cookieDomain, true, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	maxAge := int(h.authService.RefreshTokenTTL().Seconds())
	c.SetCookie(refreshTokenCookieName, token, maxAge, "/", h.cookieDomain, true, true)
}

func (h *AuthHandler) isRefreshBlacklisted(c *gin.Context, jti string) bool {
	if jti == "" {
		return true
	}
	exists, err := h.redis.Exists(c.Request.Context(), refreshTokenBlacklistKeyPrefix+jti).Result()
	if err != nil {
		middleware.LoggerFromContext(c).Warn("refresh blacklist check failed", slog.Any("error", err))
		return false
	}
	return exists > 0
}

func (h *AuthHandler) blacklistRefreshToken(c *gin.Context, claims *auth.TokenClaims) {
	if claims.ID == "" {
		return
	}
	ttl := h.authService.RefreshTokenTTL()
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	key := refreshTokenBlacklistKeyPrefix + claims.ID
	if err := h.redis.Set(c.Request.Context(), key, "1", ttl).Err(); err != nil {
		middleware.LoggerFromContext(c).Warn("refresh blacklist write failed", slog.Any("error", err))
	}
}
