package customer

import (
	"github.com/vendepy/vendepy/internal/customer/repository"
	"github.com/vendepy/vendepy/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
