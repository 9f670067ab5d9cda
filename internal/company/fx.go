package company

import (
	"github.com/vendepy/vendepy/internal/company/repository"
	"github.com/vendepy/vendepy/internal/company/service"
	"go.uber.org/fx"
)

var Module = fx.Module("company.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
