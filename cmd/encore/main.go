package main

import (
	"context"
	"log/slog"
	"os"

	"encore/config"
	"encore/internal/broadcast"
	"encore/internal/collection"
	"encore/internal/delivery"
	"encore/internal/delivery/http"
	"encore/internal/delivery/http/middleware"
	"encore/internal/delivery/http/router/handler"
	"encore/internal/domain/repository"
	"encore/internal/domain/service"
	"encore/internal/infra/auth"
	"encore/internal/infra/llm"
	logs "encore/internal/infra/log"
	"encore/internal/infra/persistence/postgres"
	"encore/internal/infra/pubsub"
	"encore/internal/infra/qrcode"
	"encore/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		broadcast.New,
		newCollectionManager,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewAuthRepository,
			postgres.NewOrderRepository,
			postgres.NewProfileRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newPasswordHasher,
			auth.NewJWTService,
			newQRCodeService,
			llm.NewGenAIClient,
			pubsub.NewEventPublisher,
		),
	)
}

// newPasswordHasher creates the bcrypt hasher, honoring a configured cost.
func newPasswordHasher(cfg *config.Config) service.PasswordHasher {
	if cfg.Auth != nil && cfg.Auth.BcryptCost > 0 {
		return auth.NewBcryptHasherWithCost(cfg.Auth.BcryptCost)
	}

	return auth.NewBcryptHasher()
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

type collectionManagerParams struct {
	fx.In
	fx.Lifecycle

	Ctx       context.Context
	Bus       *broadcast.Broadcaster
	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// newCollectionManager wires the per-user collection manager to the
// mutation broadcast and stops its consumer on shutdown.
func newCollectionManager(params collectionManagerParams) *collection.Manager {
	manager := collection.NewManager(params.Ctx, params.Bus, params.TxManager, params.Logger)

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			manager.Close()

			return nil
		},
	})

	return manager
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewUserService,
			impl.NewProfileService,
			impl.NewOrderService,
			impl.NewPromptService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewUserHandler,
			handler.NewProfileHandler,
			handler.NewOrderHandler,
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
