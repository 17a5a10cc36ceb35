package main

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"github.com/midvale99/ToolShare/config"
	"github.com/midvale99/ToolShare/internal/delivery"
	"github.com/midvale99/ToolShare/internal/delivery/http"
	"github.com/midvale99/ToolShare/internal/delivery/http/router/handler"
	gatewayinfra "github.com/midvale99/ToolShare/internal/infra/gateway"
	logs "github.com/midvale99/ToolShare/internal/infra/log"
	"github.com/midvale99/ToolShare/internal/usecase/impl"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectUsecase(),
		injectDelivery(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
		),
		gatewayinfra.Module,
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewBoardService,
			impl.NewRequestService,
			impl.NewChatService,
			impl.NewProfileService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewListingHandler,
			handler.NewRequestHandler,
			handler.NewMessageHandler,
			handler.NewProfileHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
