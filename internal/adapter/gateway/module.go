package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/printware/printdesk/internal/config"
	"github.com/printware/printdesk/internal/usecase"
)

// Module exposes the payment gateway client to the fx graph.
var Module = fx.Provide(newGateway)

type gatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newGateway(p gatewayParams) (usecase.PaymentGateway, error) {
	return NewHTTPGateway(p.Config.PaymentGatewayAddress, p.Logger)
}
