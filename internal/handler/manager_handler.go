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

type ManagerHandler struct {
	managerService service.ManagerService
}

// NewManagerHandler sets up the routing dependencies for Manager endpoints
func NewManagerHandler(managerService service.ManagerService) *ManagerHandler {
	return &ManagerHandler{managerService: managerService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ManagerHandler) RegisterRoutes(router *gin.RouterGroup) {
	managers := router.Group("/managers", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		managers.GET("", h.List)
		managers.GET("/:id", h.Get)
		managers.POST("", h.Create)
		managers.PUT("/:id", h.Update)
		managers.DELETE("/:id", h.Delete)
		managers.PATCH("/:id/active", h.SetActive)
	}
}

// Create handles POST /managers
// @Summary      Create a new manager
// @Description  Creates a manager, validating country-specific CI format, salary bounds, and company email domain
// @Tags         managers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateManagerRequest  true  "Create Manager Payload"
// @Success      201      {object}  response.Response{data=service.ManagerResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /managers [post]
func (h *ManagerHandler) Create(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.CreateManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	manager, err := h.managerService.Create(c.Request.Context(), companyID, req, mutationContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, manager))
}

// List handles GET /managers
// @Summary      List managers
// @Description  Retrieves a paginated list of managers, optionally filtered by search term
// @Tags         managers
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Param        search  query     string  false  "Search by name, email, or CI"
// @Success      200     {object}  response.Response{data=object}
// @Router       /managers [get]
func (h *ManagerHandler) List(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	managers, total, err := h.managerService.List(c.Request.Context(), companyID, c.Query("search"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"managers": managers,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// Get handles GET /managers/:id
// @Summary      Get manager by ID
// @Tags         managers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Manager ID"
// @Success      200  {object}  response.Response{data=service.ManagerResponse}
// @Failure      404  {object}  response.Response
// @Router       /managers/{id} [get]
func (h *ManagerHandler) Get(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	manager, err := h.managerService.Get(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, manager))
}

// Update handles PUT /managers/:id
// @Summary      Update manager
// @Description  Guarded edit: requires at least one field change, a change reason, and identity + password confirmation
// @Tags         managers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Manager ID"
// @Param        payload  body      service.UpdateManagerRequest  true  "Update envelope"
// @Success      200      {object}  response.Response{data=service.ManagerResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /managers/{id} [put]
func (h *ManagerHandler) Update(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.UpdateManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	manager, err := h.managerService.Update(c.Request.Context(), companyID, c.Param("id"), req, mutationContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, manager))
}

// Delete handles DELETE /managers/:id
// @Summary      Delete manager
// @Description  Soft deletes a manager after identity + password confirmation; blocked while assignments remain
// @Tags         managers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Manager ID"
// @Param        payload  body      service.DeleteManagerRequest  true  "Delete confirmation"
// @Success      200      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /managers/{id} [delete]
func (h *ManagerHandler) Delete(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.DeleteManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.managerService.Delete(c.Request.Context(), companyID, c.Param("id"), req, mutationContext(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Manager deleted successfully"))
}

// SetActive handles PATCH /managers/:id/active
// @Summary      Toggle manager active status
// @Tags         managers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Manager ID"
// @Param        payload  body      object  true  "{\"is_active\": bool}"
// @Success      200      {object}  response.Response{data=service.ManagerResponse}
// @Router       /managers/{id}/active [patch]
func (h *ManagerHandler) SetActive(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	manager, err := h.managerService.SetActive(c.Request.Context(), companyID, c.Param("id"), *req.IsActive, mutationContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, manager))
}
