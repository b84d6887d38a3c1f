package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"
)

type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler sets up the routing dependencies for authentication endpoints
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.Me)
	}

	admins := router.Group("/admins", middleware.RequireRole(model.RoleAdmin))
	{
		admins.GET("", h.ListAdmins)
		admins.GET("/:id", h.GetAdmin)
		admins.POST("", h.CreateAdmin)
	}
}

// Login handles POST /auth/login
// @Summary      Administrator login
// @Description  Authenticates against the company identified by slug and returns a JWT, also set as an HttpOnly cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}

	// 24h, HttpOnly; Secure is left to the proxy in front
	c.SetCookie("access_token", token.Token, 86400, "/", "", false, true)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// Logout handles POST /auth/logout
// @Summary      Logout
// @Description  Clears the access token cookie
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Logged out"))
}

// Me handles GET /auth/me
// @Summary      Current administrator profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.AdminResponse}
// @Failure      404  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	actor := middleware.ActorID(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return
	}

	account, err := h.authService.GetAdmin(c.Request.Context(), companyID, actor.String())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}

// CreateAdmin handles POST /admins
// @Summary      Create an administrator account
// @Description  Creates an admin or manager login; the password must be at least 8 characters with one uppercase letter
// @Tags         admins
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateAdminRequest  true  "New account"
// @Success      201      {object}  response.Response{data=service.AdminResponse}
// @Failure      400      {object}  response.Response
// @Router       /admins [post]
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	account, err := h.authService.CreateAdmin(c.Request.Context(), companyID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, account))
}

// GetAdmin handles GET /admins/:id
// @Summary      Get administrator by ID
// @Tags         admins
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Admin ID"
// @Success      200  {object}  response.Response{data=service.AdminResponse}
// @Failure      404  {object}  response.Response
// @Router       /admins/{id} [get]
func (h *AuthHandler) GetAdmin(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	account, err := h.authService.GetAdmin(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}

// ListAdmins handles GET /admins
// @Summary      List administrator accounts
// @Tags         admins
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /admins [get]
func (h *AuthHandler) ListAdmins(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	accounts, total, err := h.authService.ListAdmins(c.Request.Context(), companyID, params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"admins": accounts,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}
