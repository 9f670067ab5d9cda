package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	salesdomain "github.com/vendepy/vendepy/internal/sales/domain"
	"github.com/vendepy/vendepy/pkg/db/pagination"
)

type createQuoteRequest struct {
	CustomerID string                  `json:"customer_id"`
	Currency   string                  `json:"currency"`
	ValidUntil *time.Time              `json:"valid_until"`
	Notes      *string                 `json:"notes"`
	Lines      []salesdomain.LineInput `json:"lines"`
}

func (s *Server) CreateQuote(c *gin.Context) {
	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	quote, err := s.salesSvc.CreateQuote(c.Request.Context(), salesdomain.CreateQuoteRequest{
		Actor:      s.actor(c),
		CustomerID: strings.TrimSpace(req.CustomerID),
		Currency:   req.Currency,
		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,
		Lines:      req.Lines,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": quote})
}

func (s *Server) GetQuoteByID(c *gin.Context) {
	quote, err := s.salesSvc.GetQuote(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": quote})
}

func (s *Server) ListQuotes(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.salesSvc.ListQuotes(c.Request.Context(), salesdomain.ListQuoteRequest{
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     salesdomain.QuoteStatus(strings.TrimSpace(query.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type quoteStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateQuoteStatus(c *gin.Context) {
	var req quoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	quote, err := s.salesSvc.UpdateQuoteStatus(
		c.Request.Context(),
		s.actor(c),
		strings.TrimSpace(c.Param("id")),
		salesdomain.QuoteStatus(strings.TrimSpace(req.Status)),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": quote})
}

func (s *Server) ConvertQuoteToOrder(c *gin.Context) {
	order, err := s.salesSvc.ConvertToOrder(c.Request.Context(), s.actor(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) GetOrderByID(c *gin.Context) {
	order, err := s.salesSvc.GetOrder(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

func (s *Server) CancelOrder(c *gin.Context) {
	order, err := s.salesSvc.CancelOrder(c.Request.Context(), s.actor(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}
