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

type CompanyHandler struct {
	companyService service.CompanyService
}

// NewCompanyHandler sets up the routing dependencies for Company endpoints
func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// Create and the slug lookup are unauthenticated so a new tenant can
// bootstrap itself and the login page can resolve a company.
func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	companies := router.Group("/companies")
	{
		companies.POST("", h.Create)
		companies.GET("/slug/:slug", h.GetBySlug)
		companies.GET("", middleware.RequireRole(model.RoleAdmin), h.List)
		companies.GET("/:id", middleware.RequireRole(model.RoleAdmin), h.Get)
	}
}

// Create handles POST /companies
// @Summary      Register a new company
// @Description  Creates a tenant with a unique lowercase slug
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCompanyRequest  true  "New company"
// @Success      201      {object}  response.Response{data=service.CompanyResponse}
// @Failure      400      {object}  response.Response
// @Router       /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req service.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

// GetBySlug handles GET /companies/slug/:slug
// @Summary      Resolve a company by slug
// @Tags         companies
// @Produce      json
// @Param        slug  path      string  true  "Company slug"
// @Success      200   {object}  response.Response{data=service.CompanyResponse}
// @Failure      404   {object}  response.Response
// @Router       /companies/slug/{slug} [get]
func (h *CompanyHandler) GetBySlug(c *gin.Context) {
	company, err := h.companyService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// Get handles GET /companies/:id
// @Summary      Get company by ID
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Company ID"
// @Success      200  {object}  response.Response{data=service.CompanyResponse}
// @Failure      404  {object}  response.Response
// @Router       /companies/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	companyID, ok := tenant(c)
	if !ok {
		return
	}
	// Tenants can only read their own record
	if c.Param("id") != companyID.String() {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	company, err := h.companyService.Get(c.Request.Context(), companyID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// List handles GET /companies
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	companies, total, err := h.companyService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"companies": companies,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}
