// Package gateway selects and wires the configured SyncGateway backend.
package gateway

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/midvale99/ToolShare/config"
	domaingateway "github.com/midvale99/ToolShare/internal/domain/gateway"
	localgw "github.com/midvale99/ToolShare/internal/infra/gateway/local"
	postgresgw "github.com/midvale99/ToolShare/internal/infra/gateway/postgres"
	remotegw "github.com/midvale99/ToolShare/internal/infra/gateway/remote"
	pgInfra "github.com/midvale99/ToolShare/internal/infra/persistence/postgres"
)

// Params holds dependencies for the gateway provider, injected by Fx.
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewSyncGateway creates the SyncGateway named by configuration. The
// postgres connection is only opened when that provider is selected.
func NewSyncGateway(params Params) (domaingateway.SyncGateway, error) {
	cfg := params.Config.Gateway
	logger := params.Logger

	var gw domaingateway.SyncGateway

	switch domaingateway.Provider(cfg.Provider) {
	case domaingateway.ProviderLocal:
		if cfg.StatePath == "" {
			return nil, errors.New("statePath is required for local provider")
		}
		logger.Info("Using local file gateway", slog.String("statePath", cfg.StatePath))

		g, err := localgw.New(cfg.StatePath)
		if err != nil {
			return nil, err
		}
		gw = g

	case domaingateway.ProviderPostgres:
		if params.Config.Postgres == nil {
			return nil, errors.New("postgres configuration is required for postgres provider")
		}
		logger.Info("Using postgres gateway")

		db, err := newPostgresDB(params)
		if err != nil {
			return nil, err
		}
		g, err := postgresgw.New(db, logger, cfg.PollInterval)
		if err != nil {
			return nil, err
		}
		gw = g

	case domaingateway.ProviderRemote:
		if cfg.Endpoint == "" {
			return nil, errors.New("endpoint is required for remote provider")
		}
		logger.Info("Using remote board gateway", slog.String("endpoint", cfg.Endpoint))

		g, err := remotegw.New(cfg.Endpoint, logger, remotegw.Options{
			Timeout:      cfg.Timeout,
			PollInterval: cfg.PollInterval,
		})
		if err != nil {
			return nil, err
		}
		gw = g

	default:
		return nil, errors.Errorf("unknown gateway provider: %s", cfg.Provider)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			logger.Info("Closing SyncGateway")

			return gw.Close()
		},
	})

	return gw, nil
}

func newPostgresDB(params Params) (*gorm.DB, error) {
	return pgInfra.New(pgInfra.Params{
		Lifecycle: params.Lc,
		Config:    params.Config,
		Logger:    params.Logger,
	})
}

// Module provides the gateway FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewSyncGateway),
)
