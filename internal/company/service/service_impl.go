package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/vendepy/vendepy/internal/clock"
	companydomain "github.com/vendepy/vendepy/internal/company/domain"
	"github.com/vendepy/vendepy/internal/fiscal"
	"github.com/vendepy/vendepy/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  companydomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  companydomain.Repository
}

func NewService(p ServiceParam) companydomain.Service {
	return &Service{
		log:   p.Log.Named("company.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Get(ctx context.Context) (*companydomain.CompanySettings, error) {
	settings, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, companydomain.ErrConfigurationMissing
	}
	return settings, nil
}

func (s *Service) Create(ctx context.Context, req companydomain.CreateRequest) (*companydomain.CompanySettings, error) {
	existing, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, companydomain.ErrConfigurationExists
	}

	ruc, err := fiscal.ValidateRUC(req.RUC)
	if err != nil {
		return nil, err
	}
	if _, err := fiscal.ValidateTimbrado(req.Timbrado, req.TimbradoExpiry, s.clock.Now()); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	settings := &companydomain.CompanySettings{
		ID:              s.genID.Generate(),
		RazonSocial:     strings.TrimSpace(req.RazonSocial),
		NombreComercial: req.NombreComercial,
		RUC:             ruc.Formatted(),
		RUCCheckDigit:   strconv.Itoa(ruc.CheckDigit),
		Timbrado:        req.Timbrado,
		TimbradoExpiry:  req.TimbradoExpiry,
		PuntoExpedicion: fiscal.NormalizePuntoExpedicion(req.PuntoExpedicion),
		Direccion:       strings.TrimSpace(req.Direccion),
		Ciudad:          defaultString(req.Ciudad, "Asunción"),
		Telefono:        req.Telefono,
		Email:           req.Email,
		DefaultCurrency: defaultString(req.DefaultCurrency, "PYG"),
		IVA10Rate:       defaultRate(req.IVA10Rate, 10),
		IVA5Rate:        defaultRate(req.IVA5Rate, 5),

		InvoiceNumberStart:   defaultStart(req.InvoiceNumberStart),
		InvoiceNumberCurrent: defaultStart(req.InvoiceNumberStart),
		QuoteNumberStart:     defaultStart(req.QuoteNumberStart),
		QuoteNumberCurrent:   defaultStart(req.QuoteNumberStart),

		RegimenTributario: "GENERAL",
		ContribuyenteIVA:  true,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, settings); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, fmt.Errorf("%w: %s", companydomain.ErrDuplicateRUC, settings.RUC)
		}
		return nil, err
	}

	s.log.Info("company settings created",
		zap.String("settings_id", settings.ID.String()),
		zap.String("ruc", settings.RUC),
	)
	return settings, nil
}

func (s *Service) Update(ctx context.Context, req companydomain.UpdateRequest) (*companydomain.CompanySettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.RUC != nil {
		ruc, err := fiscal.ValidateRUC(*req.RUC)
		if err != nil {
			return nil, err
		}
		settings.RUC = ruc.Formatted()
		settings.RUCCheckDigit = strconv.Itoa(ruc.CheckDigit)
	}
	if req.Timbrado != nil {
		settings.Timbrado = *req.Timbrado
	}
	if req.TimbradoExpiry != nil {
		settings.TimbradoExpiry = req.TimbradoExpiry
	}
	if req.Timbrado != nil || req.TimbradoExpiry != nil {
		if _, err := fiscal.ValidateTimbrado(settings.Timbrado, settings.TimbradoExpiry, s.clock.Now()); err != nil {
			return nil, err
		}
	}
	if req.PuntoExpedicion != nil {
		settings.PuntoExpedicion = fiscal.NormalizePuntoExpedicion(*req.PuntoExpedicion)
	}
	if req.RazonSocial != nil {
		settings.RazonSocial = strings.TrimSpace(*req.RazonSocial)
	}
	if req.NombreComercial != nil {
		settings.NombreComercial = req.NombreComercial
	}
	if req.Direccion != nil {
		settings.Direccion = strings.TrimSpace(*req.Direccion)
	}
	if req.Ciudad != nil {
		settings.Ciudad = *req.Ciudad
	}
	if req.Telefono != nil {
		settings.Telefono = req.Telefono
	}
	if req.Email != nil {
		settings.Email = req.Email
	}
	if req.DefaultCurrency != nil {
		settings.DefaultCurrency = *req.DefaultCurrency
	}
	if req.IVA10Rate != nil {
		settings.IVA10Rate = *req.IVA10Rate
	}
	if req.IVA5Rate != nil {
		settings.IVA5Rate = *req.IVA5Rate
	}
	settings.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, settings); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, fmt.Errorf("%w: %s", companydomain.ErrDuplicateRUC, settings.RUC)
		}
		return nil, err
	}
	return settings, nil
}

func (s *Service) MarkComplete(ctx context.Context) (*companydomain.CompanySettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	required := map[string]string{
		"razon_social": settings.RazonSocial,
		"ruc":          settings.RUC,
		"timbrado":     settings.Timbrado,
		"direccion":    settings.Direccion,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%w: missing %s", companydomain.ErrIncompleteSettings, field)
		}
	}

	settings.ConfigComplete = true
	settings.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func defaultString(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

func defaultRate(value *decimal.Decimal, def int64) decimal.Decimal {
	if value == nil {
		return decimal.NewFromInt(def)
	}
	return *value
}

func defaultStart(value int64) int64 {
	if value < 1 {
		return 1
	}
	return value
}
