package handler

import (
	"github.com/gin-gonic/gin"
	salesapp "github.com/pos/backend/internal/application/sales"
	"github.com/pos/backend/internal/interfaces/http/dto"
)

// SaleHandler handles the sales ledger endpoints
type SaleHandler struct {
	BaseHandler
	saleService *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Sell godoc
// @Summary      Record a sale
// @Description  Sells one product or service. Product stock is decremented in the same transaction.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client key deduplicating retries"
// @Param        request body salesapp.SellRequest true "Sale line"
// @Success      201 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales [post]
func (h *SaleHandler) Sell(c *gin.Context) {
	var req salesapp.SellRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.Sell(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// BulkSell godoc
// @Summary      Record a multi-line sale
// @Description  All lines succeed or none are recorded.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client key deduplicating retries"
// @Param        request body salesapp.BulkSellRequest true "Sale lines"
// @Success      201 {object} dto.Response{data=salesapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales/bulk [post]
func (h *SaleHandler) BulkSell(c *gin.Context) {
	var req salesapp.BulkSellRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tx, err := h.saleService.BulkSell(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// GetByID godoc
// @Summary      Get sale by ID
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        kind query string false "Sale kind" Enums(PRODUCT, SERVICE)
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        service_id query string false "Service ID" format(uuid)
// @Param        transaction_id query string false "Transaction ID" format(uuid)
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]salesapp.SaleResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var filter salesapp.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = dto.NormalizePage(filter.Page, filter.PageSize)

	sales, total, err := h.saleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}

// Amend godoc
// @Summary      Amend a sale
// @Description  Changes amount, price or date. Stock, product aggregates and debits are reconciled.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body salesapp.AmendSaleRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales/{id} [put]
func (h *SaleHandler) Amend(c *gin.Context) {
	id, ok := h.pathID(c, "sale")
	if !ok {
		return
	}
	var req salesapp.AmendSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sale, err := h.saleService.Amend(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Delete godoc
// @Summary      Delete a sale
// @Description  Restores product stock and removes the sale from its debit and transaction.
// @Tags         sales
// @Param        id path string true "Sale ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales/{id} [delete]
func (h *SaleHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "sale")
	if !ok {
		return
	}

	if err := h.saleService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetTransaction godoc
// @Summary      Get transaction by ID
// @Tags         sales
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=salesapp.TransactionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales/transactions/{id} [get]
func (h *SaleHandler) GetTransaction(c *gin.Context) {
	id, ok := h.pathID(c, "transaction")
	if !ok {
		return
	}

	tx, err := h.saleService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// ListTransactions godoc
// @Summary      List transactions
// @Tags         sales
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]salesapp.TransactionResponse,meta=dto.Meta}
// @Router       /sales/transactions [get]
func (h *SaleHandler) ListTransactions(c *gin.Context) {
	var filter salesapp.TransactionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = dto.NormalizePage(filter.Page, filter.PageSize)

	txs, total, err := h.saleService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, txs, total, filter.Page, filter.PageSize)
}
