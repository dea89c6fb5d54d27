package di

import (
	"go.uber.org/fx"

	"github.com/printware/printdesk/internal/adapter/gateway"
	"github.com/printware/printdesk/internal/app"
	"github.com/printware/printdesk/internal/cache"
	"github.com/printware/printdesk/internal/config"
	"github.com/printware/printdesk/internal/logger"
	"github.com/printware/printdesk/internal/pkg/auth"
	"github.com/printware/printdesk/internal/server/http/handlers"
	"github.com/printware/printdesk/internal/server/http/router"
	"github.com/printware/printdesk/internal/storage/postgres"
	"github.com/printware/printdesk/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		cache.Module,
		gateway.Module,
		usecase.Module,
		fx.Provide(func(f *app.OpsFacade) handlers.OpsFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
