package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/vendepy/vendepy/internal/clock"
	"github.com/vendepy/vendepy/internal/customer/domain"
	"github.com/vendepy/vendepy/internal/fiscal"
	usagedomain "github.com/vendepy/vendepy/internal/usagelimit/domain"
	"github.com/vendepy/vendepy/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Limits usagedomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   domain.Repository
	limits usagedomain.Service
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("customer.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		limits: p.Limits,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	if err := s.limits.CheckCanCreate(ctx, req.Actor, usagedomain.ResourceCustomers); err != nil {
		return domain.Customer{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	docType := req.DocumentType
	if docType == "" {
		docType = domain.DocumentRUC
	}

	taxID := req.TaxID
	if taxID != nil {
		trimmed := strings.TrimSpace(*taxID)
		if trimmed == "" {
			taxID = nil
		} else {
			if docType == domain.DocumentRUC {
				ruc, err := fiscal.ValidateRUC(trimmed)
				if err != nil {
					return domain.Customer{}, err
				}
				trimmed = ruc.Formatted()
			}
			existing, err := s.repo.FindByTaxID(ctx, s.db, trimmed)
			if err != nil {
				return domain.Customer{}, err
			}
			if existing != nil {
				return domain.Customer{}, domain.ErrDuplicateTaxID
			}
			taxID = &trimmed
		}
	}

	creditLimit := decimal.Zero
	if req.CreditLimit != nil {
		creditLimit = *req.CreditLimit
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:           s.genID.Generate(),
		Name:         name,
		RazonSocial:  req.RazonSocial,
		DocumentType: docType,
		TaxID:        taxID,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Ciudad:       req.Ciudad,
		CreditLimit:  creditLimit,
		Notes:        req.Notes,
		IsActive:     true,
		CreatedByID:  req.Actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}

	s.log.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("created_by", req.Actor.ID.String()),
	)
	return customer, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.RazonSocial != nil {
		item.RazonSocial = req.RazonSocial
	}
	if req.Email != nil {
		item.Email = req.Email
	}
	if req.Phone != nil {
		item.Phone = req.Phone
	}
	if req.Address != nil {
		item.Address = req.Address
	}
	if req.Ciudad != nil {
		item.Ciudad = req.Ciudad
	}
	if req.CreditLimit != nil {
		item.CreditLimit = *req.CreditLimit
	}
	if req.Notes != nil {
		item.Notes = req.Notes
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	item.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Customer{}, err
	}
	return *item, nil
}

func (s *Service) SetTourismRegime(ctx context.Context, req domain.SetTourismRegimeRequest) (domain.Customer, error) {
	if !req.Actor.Unlimited() && !req.Actor.CanManageTourismRegime {
		return domain.Customer{}, domain.ErrForbidden
	}

	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	if req.Enabled {
		if req.PDFPath == nil || strings.TrimSpace(*req.PDFPath) == "" || req.Expiry == nil {
			return domain.Customer{}, domain.ErrCertificateMissing
		}
		expiry := req.Expiry.UTC()
		item.TourismRegime = true
		item.TourismRegimePDF = req.PDFPath
		item.TourismRegimeExpiry = &expiry
	} else {
		item.TourismRegime = false
		item.TourismRegimePDF = nil
		item.TourismRegimeExpiry = nil
	}
	item.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Customer{}, err
	}

	s.log.Info("tourism regime updated",
		zap.String("customer_id", item.ID.String()),
		zap.Bool("enabled", item.TourismRegime),
		zap.String("updated_by", req.Actor.ID.String()),
	)
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{
		Name:          strings.TrimSpace(req.Name),
		TaxID:         strings.TrimSpace(req.TaxID),
		TourismRegime: req.TourismRegime,
		ActiveOnly:    req.ActiveOnly,
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(customer *domain.Customer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        customer.ID.String(),
			CreatedAt: customer.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		customers = append(customers, *item)
	}

	return domain.ListCustomerResponse{
		PageInfo:  pageInfo,
		Customers: customers,
	}, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
