package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/vendepy/vendepy/internal/clock"
	"github.com/vendepy/vendepy/internal/user/domain"
	"github.com/vendepy/vendepy/internal/user/password"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	if !req.Actor.Unlimited() {
		return domain.User{}, domain.ErrForbidden
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return domain.User{}, domain.ErrInvalidUsername
	}
	if len(req.Password) < minPasswordLength {
		return domain.User{}, domain.ErrWeakPassword
	}

	role := req.Role
	if role == "" {
		role = domain.RoleSeller
	}
	switch role {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleSeller, domain.RoleViewer, domain.RoleAccountant:
	default:
		return domain.User{}, domain.ErrInvalidRole
	}

	for _, login := range []string{email, username} {
		existing, err := s.repo.FindByLogin(ctx, s.db, login)
		if err != nil {
			return domain.User{}, err
		}
		if existing != nil {
			return domain.User{}, domain.ErrDuplicateLogin
		}
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := s.clock.Now()
	user := domain.User{
		ID:             s.genID.Generate(),
		Email:          email,
		Username:       username,
		FullName:       strings.TrimSpace(req.FullName),
		HashedPassword: hashed,
		IsActive:       true,
		Role:           role,

		MaxCustomers: 10,
		MaxQuotes:    20,
		MaxOrders:    15,
		MaxInvoices:  10,

		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		return domain.User{}, err
	}

	s.log.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.User, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || userID == 0 {
		return domain.User{}, domain.ErrInvalidID
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) Authenticate(ctx context.Context, login, pass string) (domain.User, error) {
	user, err := s.repo.FindByLogin(ctx, s.db, strings.ToLower(strings.TrimSpace(login)))
	if err != nil {
		return domain.User{}, err
	}
	if user == nil || !user.IsActive {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if !password.Verify(pass, user.HashedPassword) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return *user, nil
}

func (s *Service) UpdateLimits(ctx context.Context, req domain.UpdateLimitsRequest) (domain.User, error) {
	if !req.Actor.Unlimited() {
		return domain.User{}, domain.ErrForbidden
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || userID == 0 {
		return domain.User{}, domain.ErrInvalidID
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}

	if req.MaxCustomers != nil {
		user.MaxCustomers = *req.MaxCustomers
	}
	if req.MaxQuotes != nil {
		user.MaxQuotes = *req.MaxQuotes
	}
	if req.MaxOrders != nil {
		user.MaxOrders = *req.MaxOrders
	}
	if req.MaxInvoices != nil {
		user.MaxInvoices = *req.MaxInvoices
	}
	if req.CanManageDeposits != nil {
		user.CanManageDeposits = *req.CanManageDeposits
	}
	if req.CanManageTourismRegime != nil {
		user.CanManageTourismRegime = *req.CanManageTourismRegime
	}
	user.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return domain.User{}, err
	}

	s.log.Info("user limits updated",
		zap.String("user_id", user.ID.String()),
		zap.String("updated_by", req.Actor.ID.String()),
	)
	return *user, nil
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx, s.db)
}
