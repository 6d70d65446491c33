package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/pos/backend/internal/application/finance"
	"github.com/pos/backend/internal/interfaces/http/dto"
)

// DebitHandler handles customer debit endpoints
type DebitHandler struct {
	BaseHandler
	debitService *financeapp.DebitService
}

// NewDebitHandler creates a new DebitHandler
func NewDebitHandler(debitService *financeapp.DebitService) *DebitHandler {
	return &DebitHandler{debitService: debitService}
}

// Create godoc
// @Summary      Open a debit
// @Description  Puts one or more sales on credit for a customer.
// @Tags         debits
// @Accept       json
// @Produce      json
// @Param        request body financeapp.CreateDebitRequest true "Debit creation request"
// @Success      201 {object} dto.Response{data=financeapp.DebitResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /debits [post]
func (h *DebitHandler) Create(c *gin.Context) {
	var req financeapp.CreateDebitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	debit, err := h.debitService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, debit)
}

// GetByID godoc
// @Summary      Get debit by ID
// @Tags         debits
// @Produce      json
// @Param        id path string true "Debit ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.DebitResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /debits/{id} [get]
func (h *DebitHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "debit")
	if !ok {
		return
	}

	debit, err := h.debitService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, debit)
}

// List godoc
// @Summary      List debits
// @Tags         debits
// @Produce      json
// @Param        search query string false "Customer name search"
// @Param        status query string false "Debit status" Enums(PENDING, PARTIAL, PAID)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]financeapp.DebitResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /debits [get]
func (h *DebitHandler) List(c *gin.Context) {
	var filter financeapp.DebitListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = dto.NormalizePage(filter.Page, filter.PageSize)

	debits, total, err := h.debitService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, debits, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a debit or record a payment
// @Description  paid_amount is cumulative; the status follows it.
// @Tags         debits
// @Accept       json
// @Produce      json
// @Param        id path string true "Debit ID" format(uuid)
// @Param        request body financeapp.UpdateDebitRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=financeapp.DebitResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /debits/{id} [put]
func (h *DebitHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "debit")
	if !ok {
		return
	}
	var req financeapp.UpdateDebitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	debit, err := h.debitService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, debit)
}

// Delete godoc
// @Summary      Delete a debit
// @Tags         debits
// @Param        id path string true "Debit ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /debits/{id} [delete]
func (h *DebitHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "debit")
	if !ok {
		return
	}

	if err := h.debitService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RemoveItem godoc
// @Summary      Take a sale off its debit
// @Description  The debit is deleted when its last item is removed.
// @Tags         debits
// @Produce      json
// @Param        saleId path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.RemoveDebitItemResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /debits/items/{saleId} [delete]
func (h *DebitHandler) RemoveItem(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("saleId"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	result, err := h.debitService.RemoveItem(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
