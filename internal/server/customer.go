package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	customerdomain "github.com/vendepy/vendepy/internal/customer/domain"
	"github.com/vendepy/vendepy/pkg/db/pagination"
)

type createCustomerRequest struct {
	Name         string           `json:"name"`
	RazonSocial  *string          `json:"razon_social"`
	DocumentType string           `json:"document_type"`
	TaxID        *string          `json:"tax_id"`
	Email        *string          `json:"email"`
	Phone        *string          `json:"phone"`
	Address      *string          `json:"address"`
	Ciudad       *string          `json:"ciudad"`
	CreditLimit  *decimal.Decimal `json:"credit_limit"`
	Notes        *string          `json:"notes"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customer, err := s.customerSvc.Create(c.Request.Context(), customerdomain.CreateCustomerRequest{
		Actor:        s.actor(c),
		Name:         strings.TrimSpace(req.Name),
		RazonSocial:  req.RazonSocial,
		DocumentType: customerdomain.DocumentType(req.DocumentType),
		TaxID:        req.TaxID,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Ciudad:       req.Ciudad,
		CreditLimit:  req.CreditLimit,
		Notes:        req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (s *Server) GetCustomerByID(c *gin.Context) {
	customer, err := s.customerSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var req customerdomain.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	customer, err := s.customerSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": customer})
}

type tourismRegimeRequest struct {
	Enabled bool       `json:"enabled"`
	PDFPath *string    `json:"pdf_path"`
	Expiry  *time.Time `json:"expiry"`
}

func (s *Server) SetTourismRegime(c *gin.Context) {
	var req tourismRegimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customer, err := s.customerSvc.SetTourismRegime(c.Request.Context(), customerdomain.SetTourismRegimeRequest{
		Actor:   s.actor(c),
		ID:      strings.TrimSpace(c.Param("id")),
		Enabled: req.Enabled,
		PDFPath: req.PDFPath,
		Expiry:  req.Expiry,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": customer})
}

func (s *Server) ListCustomers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name          string `form:"name"`
		TaxID         string `form:"tax_id"`
		TourismRegime string `form:"tourism_regime"`
		ActiveOnly    bool   `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tourism, err := parseOptionalBool(query.TourismRegime)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.customerSvc.List(c.Request.Context(), customerdomain.ListCustomerRequest{
		PageToken:     query.PageToken,
		PageSize:      query.PageSize,
		Name:          strings.TrimSpace(query.Name),
		TaxID:         strings.TrimSpace(query.TaxID),
		TourismRegime: tourism,
		ActiveOnly:    query.ActiveOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
