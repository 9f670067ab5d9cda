package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vendepy/vendepy/internal/clock"
	companydomain "github.com/vendepy/vendepy/internal/company/domain"
	"github.com/vendepy/vendepy/internal/config"
	customerdomain "github.com/vendepy/vendepy/internal/customer/domain"
	depositdomain "github.com/vendepy/vendepy/internal/deposit/domain"
	invoicedomain "github.com/vendepy/vendepy/internal/invoice/domain"
	numberingdomain "github.com/vendepy/vendepy/internal/numbering/domain"
	salesdomain "github.com/vendepy/vendepy/internal/sales/domain"
	usagedomain "github.com/vendepy/vendepy/internal/usagelimit/domain"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	genID  *snowflake.Node
	clock  clock.Clock

	userSvc      userdomain.Service
	companySvc   companydomain.Service
	numberingSvc numberingdomain.Service
	customerSvc  customerdomain.Service
	salesSvc     salesdomain.Service
	invoiceSvc   invoicedomain.Service
	depositSvc   depositdomain.Service
	usageSvc     usagedomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	GenID        *snowflake.Node
	Clock        clock.Clock
	UserSvc      userdomain.Service
	CompanySvc   companydomain.Service
	NumberingSvc numberingdomain.Service
	CustomerSvc  customerdomain.Service
	SalesSvc     salesdomain.Service
	InvoiceSvc   invoicedomain.Service
	DepositSvc   depositdomain.Service
	UsageSvc     usagedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		genID:        p.GenID,
		clock:        p.Clock,
		userSvc:      p.UserSvc,
		companySvc:   p.CompanySvc,
		numberingSvc: p.NumberingSvc,
		customerSvc:  p.CustomerSvc,
		salesSvc:     p.SalesSvc,
		invoiceSvc:   p.InvoiceSvc,
		depositSvc:   p.DepositSvc,
		usageSvc:     p.UsageSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.GET("/me", s.ActorRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.ActorRequired())

	// -------- Fiscal helpers --------
	api.GET("/fiscal/ruc/:ruc", s.ValidateRUC)
	api.GET("/fiscal/timbrado", s.ValidateTimbrado)

	// -------- Company settings --------
	api.GET("/company", s.GetCompanySettings)
	api.POST("/company", s.AdminRequired(), s.CreateCompanySettings)
	api.PATCH("/company", s.AdminRequired(), s.UpdateCompanySettings)
	api.POST("/company/complete", s.AdminRequired(), s.MarkCompanyComplete)
	api.POST("/company/numbering/reset", s.AdminRequired(), s.ResetNumbering)

	// -------- Users --------
	api.GET("/users", s.AdminRequired(), s.ListUsers)
	api.POST("/users", s.AdminRequired(), s.CreateUser)
	api.PATCH("/users/:id/limits", s.AdminRequired(), s.UpdateUserLimits)
	api.GET("/usage", s.GetUsageSummary)

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PATCH("/customers/:id", s.UpdateCustomer)
	api.PUT("/customers/:id/tourism-regime", s.SetTourismRegime)
	api.GET("/customers/:id/deposits", s.ListCustomerDeposits)
	api.GET("/customers/:id/deposits/summary", s.GetDepositSummary)

	// -------- Quotes / Orders --------
	api.GET("/quotes", s.ListQuotes)
	api.POST("/quotes", s.CreateQuote)
	api.GET("/quotes/:id", s.GetQuoteByID)
	api.POST("/quotes/:id/status", s.UpdateQuoteStatus)
	api.POST("/quotes/:id/convert", s.ConvertQuoteToOrder)
	api.GET("/orders/:id", s.GetOrderByID)
	api.POST("/orders/:id/cancel", s.CancelOrder)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/:id/payments", s.RegisterPayment)
	api.POST("/invoices/:id/cancel", s.CancelInvoice)

	// -------- Deposits --------
	api.POST("/deposits", s.CreateDeposit)
	api.GET("/deposits/:id", s.GetDepositByID)
	api.POST("/deposits/:id/apply", s.ApplyDeposit)
	api.POST("/deposits/:id/refund", s.RefundDeposit)
	api.POST("/deposits/expire", s.AdminRequired(), s.ExpireDeposits)
}
