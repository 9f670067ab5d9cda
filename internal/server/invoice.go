package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/vendepy/vendepy/internal/invoice/domain"
	"github.com/vendepy/vendepy/pkg/db/pagination"
)

type createInvoiceRequest struct {
	CustomerID     string                    `json:"customer_id"`
	CondicionVenta string                    `json:"condicion_venta"`
	Currency       string                    `json:"currency"`
	DueDate        *time.Time                `json:"due_date"`
	Notes          *string                   `json:"notes"`
	Lines          []invoicedomain.LineInput `json:"lines"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		Actor:          s.actor(c),
		CustomerID:     strings.TrimSpace(req.CustomerID),
		CondicionVenta: invoicedomain.CondicionVenta(strings.TrimSpace(req.CondicionVenta)),
		Currency:       req.Currency,
		DueDate:        req.DueDate,
		Notes:          req.Notes,
		Lines:          req.Lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     invoicedomain.InvoiceStatus(strings.TrimSpace(query.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type registerPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    *string         `json:"method"`
	Reference *string         `json:"reference"`
	Notes     *string         `json:"notes"`
}

func (s *Server) RegisterPayment(c *gin.Context) {
	var req registerPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.RegisterPayment(c.Request.Context(), invoicedomain.RegisterPaymentRequest{
		Actor:     s.actor(c),
		InvoiceID: strings.TrimSpace(c.Param("id")),
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) CancelInvoice(c *gin.Context) {
	invoice, err := s.invoiceSvc.Cancel(c.Request.Context(), s.actor(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}
