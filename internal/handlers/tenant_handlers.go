package handlers

import (
	"net/http"
	"strconv"

	"authhub/internal/models"
	"authhub/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers serves tenant branding and provisioning. GetTenant is a
// public endpoint consumed by login screens before any session exists;
// the provisioning endpoints sit behind authentication.
type TenantHandlers struct {
	tenantService services.TenantService
}

func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

// GetTenant returns tenant branding by id. Logo values are resolved to
// presigned URLs by the service.
func (h *TenantHandlers) GetTenant(c echo.Context) error {
	tenantID := c.Param("tenantId")
	if tenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tenant ID is required")
	}

	tenant, err := h.tenantService.GetTenant(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch tenant")
	}
	if tenant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	return c.JSON(http.StatusOK, tenant)
}

type CreateTenantRequest struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	PrimaryColor   string               `json:"primaryColor"`
	SecondaryColor string               `json:"secondaryColor"`
	Config         *models.TenantConfig `json:"config"`
}

func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	var req CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tenant ID is required")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tenant name is required")
	}

	tenant := &models.Tenant{
		ID:             req.ID,
		Name:           req.Name,
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		Config:         req.Config,
	}
	if err := h.tenantService.CreateTenant(c.Request().Context(), tenant); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create tenant")
	}

	return c.JSON(http.StatusCreated, tenant)
}

type UpdateTenantRequest struct {
	Name           string               `json:"name"`
	PrimaryColor   string               `json:"primaryColor"`
	SecondaryColor string               `json:"secondaryColor"`
	Config         *models.TenantConfig `json:"config"`
}

func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	tenantID := c.Param("tenantId")
	if tenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tenant ID is required")
	}

	var req UpdateTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request().Context(), tenantID, services.TenantUpdate{
		Name:           req.Name,
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		Config:         req.Config,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update tenant")
	}
	if tenant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	return c.JSON(http.StatusOK, tenant)
}

func (h *TenantHandlers) ListTenants(c echo.Context) error {
	limit := 50
	offset := 0
	if v := c.QueryParam("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 200 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
		limit = parsed
	}
	if v := c.QueryParam("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid offset")
		}
		offset = parsed
	}

	tenants, err := h.tenantService.ListTenants(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list tenants")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"count":   len(tenants),
	})
}

// UploadLogo accepts a multipart "logo" file, stores it in object storage,
// and records the object key on the tenant.
func (h *TenantHandlers) UploadLogo(c echo.Context) error {
	tenantID := c.Param("tenantId")
	if tenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Tenant ID is required")
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Logo file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read logo file")
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	tenant, err := h.tenantService.UploadLogo(c.Request().Context(), tenantID, src, fileHeader.Size, contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload logo")
	}
	if tenant == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Tenant not found")
	}

	return c.JSON(http.StatusOK, tenant)
}
