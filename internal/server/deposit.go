package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	depositdomain "github.com/vendepy/vendepy/internal/deposit/domain"
)

type createDepositRequest struct {
	CustomerID    string          `json:"customer_id"`
	Type          string          `json:"type"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	ReceivedDate  *time.Time      `json:"received_date"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
	PaymentMethod *string         `json:"payment_method"`
	Reference     *string         `json:"reference"`
	Notes         *string         `json:"notes"`
}

func (s *Server) CreateDeposit(c *gin.Context) {
	var req createDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	deposit, err := s.depositSvc.Create(c.Request.Context(), depositdomain.CreateDepositRequest{
		Actor:         s.actor(c),
		CustomerID:    strings.TrimSpace(req.CustomerID),
		Type:          depositdomain.DepositType(strings.TrimSpace(req.Type)),
		Currency:      req.Currency,
		Amount:        req.Amount,
		ReceivedDate:  req.ReceivedDate,
		ExpiryDate:    req.ExpiryDate,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		Notes:         req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": deposit})
}

func (s *Server) GetDepositByID(c *gin.Context) {
	deposit, err := s.depositSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": deposit})
}

func (s *Server) ListCustomerDeposits(c *gin.Context) {
	deposits, err := s.depositSvc.ListByCustomer(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": deposits})
}

type applyDepositRequest struct {
	InvoiceID string          `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     *string         `json:"notes"`
}

func (s *Server) ApplyDeposit(c *gin.Context) {
	var req applyDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	deposit, err := s.depositSvc.ApplyToInvoice(c.Request.Context(), depositdomain.ApplyRequest{
		Actor:     s.actor(c),
		DepositID: strings.TrimSpace(c.Param("id")),
		InvoiceID: strings.TrimSpace(req.InvoiceID),
		Amount:    req.Amount,
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": deposit})
}

type refundDepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason *string         `json:"reason"`
	Method *string         `json:"method"`
}

func (s *Server) RefundDeposit(c *gin.Context) {
	var req refundDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	deposit, err := s.depositSvc.Refund(c.Request.Context(), depositdomain.RefundRequest{
		Actor:     s.actor(c),
		DepositID: strings.TrimSpace(c.Param("id")),
		Amount:    req.Amount,
		Reason:    req.Reason,
		Method:    req.Method,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": deposit})
}

func (s *Server) ExpireDeposits(c *gin.Context) {
	expired, err := s.depositSvc.ExpireDeposits(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"expired": expired}})
}

func (s *Server) GetDepositSummary(c *gin.Context) {
	summary, err := s.depositSvc.Summary(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
