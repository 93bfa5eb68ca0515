package handler

import (
	"net/http"
	"strconv"

	"pos-backend/internal/middleware"
	"pos-backend/internal/service"
	"pos-backend/pkg/pagination"
	"pos-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	ledgerService  service.LedgerService
}

func NewInvoiceHandler(invoiceService service.InvoiceService, ledgerService service.LedgerService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		ledgerService:  ledgerService,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.POST("", middleware.RequireAuth(), h.CreateInvoice)
		invoices.GET("", middleware.RequireAuth(), h.ListInvoices)
		invoices.GET("/:id", middleware.RequireAuth(), h.GetInvoice)
		invoices.PUT("/:id", middleware.RequireAuth(), h.UpdateInvoice)
	}

	ledger := router.Group("/api/ledger")
	{
		ledger.GET("", middleware.RequireRole("admin"), h.ListLedgerEntries)
	}
}

// saveInvoiceResponse is the wire shape for a committed sale: the success
// flag at top level next to the result fields.
type saveInvoiceResponse struct {
	Success bool `json:"success"`
	service.InvoiceResult
}

// CreateInvoice commits a sale
// @Summary      Create invoice
// @Description  Atomically saves the invoice header, its lines, stock decrements and the audit row
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Create Invoice Payload"
// @Success      201      {object}  handler.saveInvoiceResponse
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.invoiceService.CreateInvoice(c.Request.Context(), middleware.Operator(c), req)
	if err != nil {
		status := http.StatusInternalServerError
		if service.IsValidationError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, response.Fail(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, saveInvoiceResponse{Success: true, InvoiceResult: result})
}

// UpdateInvoice replaces the header and lines of an existing invoice
// @Summary      Update invoice
// @Description  Replaces the invoice header and lines. Never moves stock and never posts to the ledger
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                           true  "Invoice ID"
// @Param        payload  body      service.CreateInvoiceRequest  true  "Update Invoice Payload"
// @Success      200      {object}  handler.saveInvoiceResponse
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid invoice id"))
		return
	}

	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.invoiceService.UpdateInvoice(c.Request.Context(), middleware.Operator(c), uint(id), req)
	if err != nil {
		status := http.StatusInternalServerError
		if service.IsValidationError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, response.Fail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, saveInvoiceResponse{Success: true, InvoiceResult: result})
}

// GetInvoice returns one invoice with its lines
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id  path      int  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid invoice id"))
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Fail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.OK(invoice))
}

// ListInvoices returns a paginated list of invoices, newest first
// @Summary      List invoices
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	params := pagination.Parse(c)

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Fail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.OK(map[string]interface{}{
		"invoices": invoices,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// ListLedgerEntries returns posted cash/card ledger entries
// @Summary      List ledger entries
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Param        operator  query     string  false  "Filter by operator name"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Failure      500       {object}  response.Response
// @Router       /api/ledger [get]
func (h *InvoiceHandler) ListLedgerEntries(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.ledgerService.ListEntries(c.Request.Context(), c.Query("operator"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Fail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.OK(map[string]interface{}{
		"entries": entries,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}
