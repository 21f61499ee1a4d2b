// Package app wires configuration, storage, domain services, and the HTTP
// server into a running storefront API.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/nutallis/storefront/internal/client/distancematrix"
	"github.com/nutallis/storefront/internal/client/efi"
	"github.com/nutallis/storefront/internal/client/ifood"
	"github.com/nutallis/storefront/internal/client/mercadopago"
	"github.com/nutallis/storefront/internal/client/uberdirect"
	"github.com/nutallis/storefront/internal/domain/coupon"
	"github.com/nutallis/storefront/internal/domain/money"
	"github.com/nutallis/storefront/internal/domain/order"
	"github.com/nutallis/storefront/internal/domain/settlement"
	"github.com/nutallis/storefront/internal/domain/shipping"
	"github.com/nutallis/storefront/internal/handler"
	"github.com/nutallis/storefront/internal/repository"
	"github.com/nutallis/storefront/pkg/health"
	"github.com/nutallis/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := repository.NewProductRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	settlementRepo := repository.NewSettlementRepository(pool)
	apikeyRepo := repository.NewAPIKeyRepository(pool)

	// Carrier providers, in strict priority order: Uber first, then iFood,
	// with the manual formula as the resolver's built-in fallback.
	resolver := shipping.NewResolver(
		shipping.ResolverConfig{
			BaseFeeCents:  money.Cents(cfg.Shipping.BaseFeeCents),
			PerKmFeeCents: money.Cents(cfg.Shipping.PerKmFeeCents),
		},
		lg.Named("shipping"),
		uberdirect.New(uberdirect.Config{BaseURL: cfg.Shipping.UberURL, Token: cfg.Shipping.UberToken}),
		ifood.New(ifood.Config{BaseURL: cfg.Shipping.IfoodURL, Token: cfg.Shipping.IfoodToken}),
	)

	distance := distancematrix.New(distancematrix.Config{
		APIKey:    cfg.Distance.APIKey,
		OriginLat: cfg.Distance.OriginLat,
		OriginLng: cfg.Distance.OriginLng,
	})

	// Payment gateways. Unconfigured rails stay nil and checkout completes
	// without a redirect.
	var pix order.PixGateway
	if mp := mercadopago.New(mercadopago.Config{
		AccessToken: cfg.Payments.MercadoPagoToken,
		WebhookURL:  cfg.Payments.WebhookURL,
	}); mp.Enabled() {
		pix = mp
	}
	var card order.CardGateway
	if ef := efi.New(efi.Config{CheckoutURL: cfg.Payments.EfiCheckoutURL}); cfg.Payments.EfiCheckoutURL != "" {
		card = ef
	}

	// Domain services.
	couponValidator := coupon.NewRepoValidator(couponRepo)
	orderService := order.NewService(productRepo, couponValidator, orderRepo, resolver, pix, card)
	settlementService := settlement.NewService(orderRepo, couponRepo, settlementRepo, lg.Named("settlement"))

	// HTTP handlers.
	h := handler.NewHandler(
		handler.Config{WebhookSecret: cfg.WebhookSecret},
		productRepo,
		cartRepo,
		couponValidator,
		couponRepo,
		orderRepo,
		orderService,
		settlementService,
		distance,
		resolver,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes(apikeyRepo, []byte(cfg.APIKeyPepper)))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "X-API-Key", "X-Cart-Token"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
