package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/pos/backend/internal/application/catalog"
	"github.com/pos/backend/internal/interfaces/http/dto"
)

// ServiceHandler handles the catalog of sellable services
type ServiceHandler struct {
	BaseHandler
	serviceCatalog *catalogapp.ServiceCatalogService
}

// NewServiceHandler creates a new ServiceHandler
func NewServiceHandler(serviceCatalog *catalogapp.ServiceCatalogService) *ServiceHandler {
	return &ServiceHandler{serviceCatalog: serviceCatalog}
}

// Create godoc
// @Summary      Create a service
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateServiceRequest true "Service creation request"
// @Success      201 {object} dto.Response{data=catalogapp.ServiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/services [post]
func (h *ServiceHandler) Create(c *gin.Context) {
	var req catalogapp.CreateServiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	service, err := h.serviceCatalog.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, service)
}

// GetByID godoc
// @Summary      Get service by ID
// @Tags         services
// @Produce      json
// @Param        id path string true "Service ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ServiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/services/{id} [get]
func (h *ServiceHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "service")
	if !ok {
		return
	}

	service, err := h.serviceCatalog.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, service)
}

// List godoc
// @Summary      List services
// @Tags         services
// @Produce      json
// @Param        search query string false "Name search"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]catalogapp.ServiceResponse,meta=dto.Meta}
// @Router       /catalog/services [get]
func (h *ServiceHandler) List(c *gin.Context) {
	var filter catalogapp.ServiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = dto.NormalizePage(filter.Page, filter.PageSize)

	services, total, err := h.serviceCatalog.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, services, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a service
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id path string true "Service ID" format(uuid)
// @Param        request body catalogapp.UpdateServiceRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=catalogapp.ServiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/services/{id} [put]
func (h *ServiceHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "service")
	if !ok {
		return
	}
	var req catalogapp.UpdateServiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	service, err := h.serviceCatalog.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, service)
}

// Delete godoc
// @Summary      Delete a service
// @Description  Services with recorded sales cannot be deleted.
// @Tags         services
// @Param        id path string true "Service ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/services/{id} [delete]
func (h *ServiceHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "service")
	if !ok {
		return
	}

	if err := h.serviceCatalog.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
