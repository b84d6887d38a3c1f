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

type WarehouseHandler struct {
	warehouseService service.WarehouseService
}

// NewWarehouseHandler sets up the routing dependencies for Warehouse endpoints
func NewWarehouseHandler(warehouseService service.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseService: warehouseService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *WarehouseHandler) RegisterRoutes(router *gin.RouterGroup) {
	warehouses := router.Group("/warehouses", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		warehouses.GET("", h.List)
		warehouses.GET("/:id", h.Get)
		warehouses.POST("", h.Create)
		warehouses.PUT("/:id", h.Update)
		warehouses.DELETE("/:id", h.Delete)
		warehouses.PATCH("/:id/active", h.SetActive)
		warehouses.POST("/:id/branches", h.AssignBranch)
		warehouses.DELETE("/:id/branches/:branchId", h.RemoveBranch)
	}
}

// Create handles POST /warehouses
// @Summary      Create a new warehouse
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateWarehouseRequest  true  "Create Warehouse Payload"
// @Success      201      {object}  response.Response{data=service.WarehouseResponse}
// @Failure      400      {object}  response.Response
// @Router       /warehouses [post]
func (h *WarehouseHandler) Create(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	warehouse, err := h.warehouseService.Create(c.Request.Context(), companyID, req, mutationContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, warehouse))
}

// List handles GET /warehouses
// @Summary      List warehouses
// @Tags         warehouses
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Param        search  query     string  false  "Search by name or address"
// @Success      200     {object}  response.Response{data=object}
// @Router       /warehouses [get]
func (h *WarehouseHandler) List(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	warehouses, total, err := h.warehouseService.List(c.Request.Context(), companyID, c.Query("search"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"warehouses": warehouses,
		"total":      total,
		"page":       params.Page,
		"limit":      params.Limit,
	}))
}

// Get handles GET /warehouses/:id
// @Summary      Get warehouse by ID
// @Tags         warehouses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Warehouse ID"
// @Success      200  {object}  response.Response{data=service.WarehouseResponse}
// @Failure      404  {object}  response.Response
// @Router       /warehouses/{id} [get]
func (h *WarehouseHandler) Get(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	warehouse, err := h.warehouseService.Get(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, warehouse))
}

// Update handles PUT /warehouses/:id
// @Summary      Update warehouse
// @Description  Guarded edit: requires a change reason and identity + password confirmation; branch links are reconciled against the submitted list
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Warehouse ID"
// @Param        payload  body      service.UpdateWarehouseRequest  true  "Update envelope"
// @Success      200      {object}  response.Response{data=service.WarehouseResponse}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /warehouses/{id} [put]
func (h *WarehouseHandler) Update(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	warehouse, err := h.warehouseService.Update(c.Request.Context(), companyID, c.Param("id"), req, mutationContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, warehouse))
}

// Delete handles DELETE /warehouses/:id
// @Summary      Delete warehouse
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "Warehouse ID"
// @Param        payload  body      service.DeleteWarehouseRequest  true  "Delete confirmation"
// @Success      200      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /warehouses/{id} [delete]
func (h *WarehouseHandler) Delete(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.DeleteWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.warehouseService.Delete(c.Request.Context(), companyID, c.Param("id"), req, mutationContext(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Warehouse deleted successfully"))
}

// SetActive handles PATCH /warehouses/:id/active
// @Summary      Toggle warehouse active status
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Warehouse ID"
// @Param        payload  body      object  true  "{\"is_active\": bool}"
// @Success      200      {object}  response.Response{data=service.WarehouseResponse}
// @Router       /warehouses/{id}/active [patch]
func (h *WarehouseHandler) SetActive(c *gin.Context) {
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

	warehouse, err := h.warehouseService.SetActive(c.Request.Context(), companyID, c.Param("id"), *req.IsActive, mutationContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, warehouse))
}

// AssignBranch handles POST /warehouses/:id/branches
// @Summary      Assign warehouse to a branch
// @Description  Links the warehouse to a branch; assigning an already linked branch returns 409
// @Tags         warehouses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Warehouse ID"
// @Param        payload  body      service.AssignBranchRequest  true  "Branch link"
// @Success      200      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /warehouses/{id}/branches [post]
func (h *WarehouseHandler) AssignBranch(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.AssignBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.warehouseService.AssignBranch(c.Request.Context(), companyID, c.Param("id"), req, mutationContext(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Branch assigned successfully"))
}

// RemoveBranch handles DELETE /warehouses/:id/branches/:branchId
// @Summary      Unassign warehouse from a branch
// @Tags         warehouses
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true  "Warehouse ID"
// @Param        branchId  path      string  true  "Branch ID"
// @Success      200       {object}  response.Response
// @Failure      404       {object}  response.Response
// @Router       /warehouses/{id}/branches/{branchId} [delete]
func (h *WarehouseHandler) RemoveBranch(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	if err := h.warehouseService.RemoveBranch(c.Request.Context(), companyID, c.Param("id"), c.Param("branchId"), mutationContext(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Branch unassigned successfully"))
}
