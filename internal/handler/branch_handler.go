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

type BranchHandler struct {
	branchService service.BranchService
}

// NewBranchHandler sets up the routing dependencies for Branch endpoints
func NewBranchHandler(branchService service.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *BranchHandler) RegisterRoutes(router *gin.RouterGroup) {
	branches := router.Group("/branches", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		branches.GET("", h.List)
		branches.GET("/:id", h.Get)
		branches.POST("", h.Create)
		branches.PUT("/:id", h.Update)
		branches.DELETE("/:id", h.Delete)
		branches.PATCH("/:id/active", h.SetActive)
		branches.PUT("/:id/primary-warehouse", h.SetPrimaryWarehouse)
	}
}

// Create handles POST /branches
// @Summary      Create a new branch
// @Tags         branches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateBranchRequest  true  "Create Branch Payload"
// @Success      201      {object}  response.Response{data=service.BranchResponse}
// @Failure      400      {object}  response.Response
// @Router       /branches [post]
func (h *BranchHandler) Create(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	branch, err := h.branchService.Create(c.Request.Context(), companyID, req, mutationContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, branch))
}

// List handles GET /branches
// @Summary      List branches
// @Tags         branches
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Param        search  query     string  false  "Search by name or address"
// @Success      200     {object}  response.Response{data=object}
// @Router       /branches [get]
func (h *BranchHandler) List(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	branches, total, err := h.branchService.List(c.Request.Context(), companyID, c.Query("search"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"branches": branches,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// Get handles GET /branches/:id
// @Summary      Get branch by ID
// @Tags         branches
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Branch ID"
// @Success      200  {object}  response.Response{data=service.BranchResponse}
// @Failure      404  {object}  response.Response
// @Router       /branches/{id} [get]
func (h *BranchHandler) Get(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	branch, err := h.branchService.Get(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, branch))
}

// Update handles PUT /branches/:id
// @Summary      Update branch
// @Description  Guarded edit: requires a change reason and identity + password confirmation
// @Tags         branches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Branch ID"
// @Param        payload  body      service.UpdateBranchRequest  true  "Update envelope"
// @Success      200      {object}  response.Response{data=service.BranchResponse}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /branches/{id} [put]
func (h *BranchHandler) Update(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.UpdateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	branch, err := h.branchService.Update(c.Request.Context(), companyID, c.Param("id"), req, mutationContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, branch))
}

// Delete handles DELETE /branches/:id
// @Summary      Delete branch
// @Description  Soft deletes a branch; blocked while active managers or assignments remain
// @Tags         branches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Branch ID"
// @Param        payload  body      service.DeleteBranchRequest  true  "Delete confirmation"
// @Success      200      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /branches/{id} [delete]
func (h *BranchHandler) Delete(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.DeleteBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.branchService.Delete(c.Request.Context(), companyID, c.Param("id"), req, mutationContext(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Branch deleted successfully"))
}

// SetActive handles PATCH /branches/:id/active
// @Summary      Toggle branch active status
// @Tags         branches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Branch ID"
// @Param        payload  body      object  true  "{\"is_active\": bool}"
// @Success      200      {object}  response.Response{data=service.BranchResponse}
// @Router       /branches/{id}/active [patch]
func (h *BranchHandler) SetActive(c *gin.Context) {
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

	branch, err := h.branchService.SetActive(c.Request.Context(), companyID, c.Param("id"), *req.IsActive, mutationContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, branch))
}

// SetPrimaryWarehouse handles PUT /branches/:id/primary-warehouse
// @Summary      Set the branch's primary warehouse
// @Description  Flags one warehouse link as primary; any previous primary for the branch is cleared
// @Tags         branches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                              true  "Branch ID"
// @Param        payload  body      service.SetPrimaryWarehouseRequest  true  "Primary warehouse"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /branches/{id}/primary-warehouse [put]
func (h *BranchHandler) SetPrimaryWarehouse(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.SetPrimaryWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.branchService.SetPrimaryWarehouse(c.Request.Context(), companyID, c.Param("id"), req, mutationContext(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Primary warehouse updated"))
}
