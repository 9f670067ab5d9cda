package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	companydomain "github.com/vendepy/vendepy/internal/company/domain"
	numberingdomain "github.com/vendepy/vendepy/internal/numbering/domain"
)

func (s *Server) GetCompanySettings(c *gin.Context) {
	settings, err := s.companySvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

type createCompanyRequest struct {
	RazonSocial     string     `json:"razon_social"`
	NombreComercial *string    `json:"nombre_comercial"`
	RUC             string     `json:"ruc"`
	Timbrado        string     `json:"timbrado"`
	TimbradoExpiry  *time.Time `json:"timbrado_expiry"`
	PuntoExpedicion string     `json:"punto_expedicion"`
	Direccion       string     `json:"direccion"`
	Ciudad          string     `json:"ciudad"`
	Telefono        *string    `json:"telefono"`
	Email           *string    `json:"email"`
	DefaultCurrency string     `json:"default_currency"`

	IVA10Rate *decimal.Decimal `json:"iva_10_rate"`
	IVA5Rate  *decimal.Decimal `json:"iva_5_rate"`

	InvoiceNumberStart int64 `json:"invoice_number_start"`
	QuoteNumberStart   int64 `json:"quote_number_start"`
}

func (s *Server) CreateCompanySettings(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	settings, err := s.companySvc.Create(c.Request.Context(), companydomain.CreateRequest{
		RazonSocial:     req.RazonSocial,
		NombreComercial: req.NombreComercial,
		RUC:             req.RUC,
		Timbrado:        req.Timbrado,
		TimbradoExpiry:  req.TimbradoExpiry,
		PuntoExpedicion: req.PuntoExpedicion,
		Direccion:       req.Direccion,
		Ciudad:          req.Ciudad,
		Telefono:        req.Telefono,
		Email:           req.Email,
		DefaultCurrency: req.DefaultCurrency,

		IVA10Rate: req.IVA10Rate,
		IVA5Rate:  req.IVA5Rate,

		InvoiceNumberStart: req.InvoiceNumberStart,
		QuoteNumberStart:   req.QuoteNumberStart,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (s *Server) UpdateCompanySettings(c *gin.Context) {
	var req companydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	settings, err := s.companySvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (s *Server) MarkCompanyComplete(c *gin.Context) {
	settings, err := s.companySvc.MarkComplete(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

type resetNumberingRequest struct {
	Target string `json:"target"`
	Start  int64  `json:"start"`
}

func (s *Server) ResetNumbering(c *gin.Context) {
	var req resetNumberingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	settings, err := s.companySvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	target := numberingdomain.Target(strings.TrimSpace(req.Target))
	if err := s.numberingSvc.Reset(c.Request.Context(), settings.ID, req.Start, target); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"target": target,
		"start":  req.Start,
	}})
}
