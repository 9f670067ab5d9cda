package user

import (
	"github.com/vendepy/vendepy/internal/user/repository"
	"github.com/vendepy/vendepy/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(
		repository.NewRepository,
		service.NewService,
	),
)
