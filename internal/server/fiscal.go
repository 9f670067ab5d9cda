package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vendepy/vendepy/internal/fiscal"
)

func (s *Server) ValidateRUC(c *gin.Context) {
	ruc, err := fiscal.ValidateRUC(strings.TrimSpace(c.Param("ruc")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"ruc":         ruc.Formatted(),
		"base":        ruc.Base,
		"check_digit": ruc.CheckDigit,
	}})
}

func (s *Server) ValidateTimbrado(c *gin.Context) {
	expiry, err := parseOptionalTime(c.Query("expiry"), true)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	timbrado, err := fiscal.ValidateTimbrado(c.Query("timbrado"), expiry, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"timbrado":       timbrado.Number,
		"days_to_expire": timbrado.DaysToExpire,
		"expiry_warning": timbrado.ExpiryWarning,
	}})
}
