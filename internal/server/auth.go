package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.userSvc.Authenticate(c.Request.Context(), strings.TrimSpace(req.Login), req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.actor(c)})
}

type createUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.userSvc.Create(c.Request.Context(), userdomain.CreateUserRequest{
		Actor:    s.actor(c),
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
		Role:     userdomain.Role(req.Role),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.userSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users})
}

type updateLimitsRequest struct {
	MaxCustomers *int `json:"max_customers,omitempty"`
	MaxQuotes    *int `json:"max_quotes,omitempty"`
	MaxOrders    *int `json:"max_orders,omitempty"`
	MaxInvoices  *int `json:"max_invoices,omitempty"`

	CanManageDeposits      *bool `json:"can_manage_deposits,omitempty"`
	CanManageTourismRegime *bool `json:"can_manage_tourism_regime,omitempty"`
}

func (s *Server) UpdateUserLimits(c *gin.Context) {
	var req updateLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.userSvc.UpdateLimits(c.Request.Context(), userdomain.UpdateLimitsRequest{
		Actor: s.actor(c),
		ID:    strings.TrimSpace(c.Param("id")),

		MaxCustomers: req.MaxCustomers,
		MaxQuotes:    req.MaxQuotes,
		MaxOrders:    req.MaxOrders,
		MaxInvoices:  req.MaxInvoices,

		CanManageDeposits:      req.CanManageDeposits,
		CanManageTourismRegime: req.CanManageTourismRegime,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) GetUsageSummary(c *gin.Context) {
	summary, err := s.usageSvc.UsageSummary(c.Request.Context(), s.actor(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
