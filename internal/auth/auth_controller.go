package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/golazo-app/golazo/config"
	"github.com/golazo-app/golazo/internal/middleware"
	"github.com/golazo-app/golazo/internal/user"
	"github.com/golazo-app/golazo/pkg/responses"
	"github.com/golazo-app/golazo/pkg/token"
	"github.com/golazo-app/golazo/pkg/utils"
	"github.com/golazo-app/golazo/pkg/validator"
)

// AuthController handles registration and login.
type AuthController struct {
	repo      AuthRepository
	appConfig *config.Config
}

// NewAuthController creates a new auth controller.
func NewAuthController(repo AuthRepository, appConfig *config.Config) *AuthController {
	return &AuthController{repo: repo, appConfig: appConfig}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} responses.SuccessResponse
// @Failure 409 {object} responses.ErrorResponse "Email already registered"
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	existing, err := ac.repo.GetUserByEmail(req.Email)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to check existing user")
		return
	}
	if existing != nil {
		responses.SendError(c, http.StatusConflict, "Email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	u := user.User{Name: req.Name, Email: req.Email, Password: hash}
	if err := ac.repo.CreateUser(&u); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	zap.L().Info("user registered", zap.Uint("user_id", u.ID))
	responses.SendSuccess(c, http.StatusCreated, "User registered successfully", gin.H{"id": u.ID, "email": u.Email})
}

// Login godoc
// @Summary Log in and obtain an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} responses.SuccessResponse
// @Failure 401 {object} responses.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, validator.ParseError(err))
		return
	}

	u, err := ac.repo.GetUserByEmail(req.Email)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to look up user")
		return
	}
	if u == nil || !utils.CheckPassword(req.Password, u.Password) {
		responses.SendError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	accessToken, err := token.Generate(u.ID, ac.appConfig.JWT.AccessTokenSecret, ac.appConfig.JWT.AccessTokenExpiryMinutes)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Logged in successfully", gin.H{
		"access_token": accessToken,
		"user":         gin.H{"id": u.ID, "name": u.Name, "email": u.Email},
	})
}

// Me godoc
// @Summary Get the authenticated user's profile
// @Tags Auth
// @Produce json
// @Success 200 {object} responses.SuccessResponse
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := ac.repo.GetUserByID(userID)
	if err != nil || u == nil {
		responses.SendError(c, http.StatusNotFound, "User not found")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Profile retrieved successfully", u)
}
