package sales

import (
	"github.com/vendepy/vendepy/internal/sales/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sales.service",
	fx.Provide(service.NewService),
)
