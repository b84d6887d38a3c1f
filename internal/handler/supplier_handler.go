package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"
)

type SupplierHandler struct {
	supplierService service.SupplierService
}

// NewSupplierHandler sets up the routing dependencies for Supplier endpoints
func NewSupplierHandler(supplierService service.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *SupplierHandler) RegisterRoutes(router *gin.RouterGroup) {
	suppliers := router.Group("/suppliers", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		suppliers.GET("", h.List)
		suppliers.GET("/:id", h.Get)
		suppliers.POST("", h.Create)
		suppliers.PUT("/:id", h.Update)
		suppliers.DELETE("/:id", h.Delete)
		suppliers.PATCH("/:id/active", h.SetActive)
		suppliers.POST("/:id/managers", h.AssignManager)
		suppliers.DELETE("/:id/managers/:managerId", h.RemoveManager)
	}
}

// Create handles POST /suppliers
// @Summary      Create a new supplier
// @Description  Creates a supplier with a tax ID unique within the company
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateSupplierRequest  true  "Create Supplier Payload"
// @Success      201      {object}  response.Response{data=service.SupplierResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), companyID, req, mutationContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, supplier))
}

// List handles GET /suppliers
// @Summary      List suppliers
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Param        search  query     string  false  "Search by name or tax ID"
// @Success      200     {object}  response.Response{data=object}
// @Router       /suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	suppliers, total, err := h.supplierService.List(c.Request.Context(), companyID, c.Query("search"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"suppliers": suppliers,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// Get handles GET /suppliers/:id
// @Summary      Get supplier by ID
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Supplier ID"
// @Success      200  {object}  response.Response{data=service.SupplierResponse}
// @Failure      404  {object}  response.Response
// @Router       /suppliers/{id} [get]
func (h *SupplierHandler) Get(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	supplier, err := h.supplierService.Get(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// Update handles PUT /suppliers/:id
// @Summary      Update supplier
// @Description  Guarded edit: requires a change reason and identity + password confirmation; branch and manager links are reconciled against the submitted lists
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Supplier ID"
// @Param        payload  body      service.UpdateSupplierRequest  true  "Update envelope"
// @Success      200      {object}  response.Response{data=service.SupplierResponse}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), companyID, c.Param("id"), req, mutationContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// Delete handles DELETE /suppliers/:id
// @Summary      Delete supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Supplier ID"
// @Param        payload  body      service.DeleteSupplierRequest  true  "Delete confirmation"
// @Success      200      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req service.DeleteSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.supplierService.Delete(c.Request.Context(), companyID, c.Param("id"), req, mutationContext(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Supplier deleted successfully"))
}

// SetActive handles PATCH /suppliers/:id/active
// @Summary      Toggle supplier active status
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Supplier ID"
// @Param        payload  body      object  true  "{\"is_active\": bool}"
// @Success      200      {object}  response.Response{data=service.SupplierResponse}
// @Router       /suppliers/{id}/active [patch]
func (h *SupplierHandler) SetActive(c *gin.Context) {
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

	supplier, err := h.supplierService.SetActive(c.Request.Context(), companyID, c.Param("id"), *req.IsActive, mutationContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, supplier))
}

// AssignManager handles POST /suppliers/:id/managers
// @Summary      Assign a manager to the supplier
// @Description  Links a manager as the supplier's account contact; duplicate links return 409
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Supplier ID"
// @Param        payload  body      object  true  "{\"manager_id\": uuid}"
// @Success      200      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /suppliers/{id}/managers [post]
func (h *SupplierHandler) AssignManager(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	var req struct {
		ManagerID uuid.UUID `json:"manager_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.supplierService.AssignManager(c.Request.Context(), companyID, c.Param("id"), req.ManagerID, mutationContext(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Manager assigned successfully"))
}

// RemoveManager handles DELETE /suppliers/:id/managers/:managerId
// @Summary      Unassign a manager from the supplier
// @Tags         suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "Supplier ID"
// @Param        managerId  path      string  true  "Manager ID"
// @Success      200        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /suppliers/{id}/managers/{managerId} [delete]
func (h *SupplierHandler) RemoveManager(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	if err := h.supplierService.RemoveManager(c.Request.Context(), companyID, c.Param("id"), c.Param("managerId"), mutationContext(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Manager unassigned successfully"))
}
