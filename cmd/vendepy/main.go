package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/vendepy/vendepy/internal/clock"
	"github.com/vendepy/vendepy/internal/company"
	"github.com/vendepy/vendepy/internal/config"
	"github.com/vendepy/vendepy/internal/customer"
	"github.com/vendepy/vendepy/internal/deposit"
	"github.com/vendepy/vendepy/internal/invoice"
	"github.com/vendepy/vendepy/internal/migration"
	"github.com/vendepy/vendepy/internal/numbering"
	"github.com/vendepy/vendepy/internal/sales"
	"github.com/vendepy/vendepy/internal/scheduler"
	"github.com/vendepy/vendepy/internal/server"
	"github.com/vendepy/vendepy/internal/usagelimit"
	"github.com/vendepy/vendepy/internal/user"
	"github.com/vendepy/vendepy/pkg/db"
	"github.com/vendepy/vendepy/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		user.Module,
		company.Module,
		numbering.Module,
		usagelimit.Module,
		customer.Module,
		sales.Module,
		invoice.Module,
		deposit.Module,

		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
