package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/sahelmarket/marketplace-backend/internal/config"
	"github.com/sahelmarket/marketplace-backend/internal/modules/auth"
	"github.com/sahelmarket/marketplace-backend/internal/modules/catalog"
	"github.com/sahelmarket/marketplace-backend/internal/modules/checkout"
	"github.com/sahelmarket/marketplace-backend/internal/modules/currency"
	"github.com/sahelmarket/marketplace-backend/internal/modules/finance"
	"github.com/sahelmarket/marketplace-backend/internal/modules/notify"
	"github.com/sahelmarket/marketplace-backend/internal/modules/order"
	"github.com/sahelmarket/marketplace-backend/internal/modules/payment"
	"github.com/sahelmarket/marketplace-backend/internal/modules/plan"
	"github.com/sahelmarket/marketplace-backend/internal/modules/profile"
)

func main() {
	cfg := config.Load()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Successfully connected to the database!")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// ── Identity ────────────────────────────────────────────
	profileService := profile.NewService(profile.NewPostgresRepository(db))
	guard := auth.NewGuard(auth.NewService(cfg.JWTSecret), profileService)
	profile.NewHandler(profileService, guard).RegisterRoutes(router)

	planService := plan.NewService(plan.NewPostgresRepository(db))
	plan.NewHandler(planService).RegisterRoutes(router)

	// ── Catalog & rates ─────────────────────────────────────
	catalogService := catalog.NewService(catalog.NewPostgresRepository(db), planService)
	catalog.NewHandler(catalogService, guard).RegisterRoutes(router)

	currencyService := currency.NewService(currency.NewPostgresRepository(db))
	currency.NewHandler(currencyService).RegisterRoutes(router)

	// ── Orders & payments ───────────────────────────────────
	orderService := order.NewService(order.NewPostgresRepository(db))
	order.NewHandler(orderService, guard).RegisterRoutes(router)

	paypal := payment.NewPayPalGateway(cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PayPalBaseURL)
	paymentService := payment.NewService(payment.NewPostgresRepository(db), orderService, paypal)
	paymentHandler := payment.NewHandler(paymentService, guard)
	paymentHandler.RegisterRoutes(router)

	// ── Notifications ───────────────────────────────────────
	var mailer notify.Mailer
	if m := notify.NewPostmarkMailer(cfg.PostmarkServerToken, cfg.EmailSender); m != nil {
		mailer = m
	} else {
		log.Println("notify: Postmark not configured, order emails disabled")
	}
	notifyService := notify.NewService(
		notify.NewTelegram(cfg.TelegramBaseURL, cfg.TelegramBotToken, cfg.TelegramChatID), mailer)

	// ── Checkout ────────────────────────────────────────────
	checkoutService := checkout.NewService(checkout.Deps{
		Products: catalogService,
		Profiles: profileService,
		Capacity: planService,
		Rates:    currencyService,
		Orders:   orderService,
		Payments: paymentService,
		Notifier: notifyService,
	}, checkout.Options{
		ShippingFee: cfg.ShippingFee,
		FeePolicy:   checkout.ParseFeePolicy(cfg.DelivererFeePolicy),
	})
	checkout.NewHandler(checkoutService, guard).RegisterRoutes(router)

	// ── Finance ─────────────────────────────────────────────
	financeService := finance.NewService(finance.NewRepository(sqlx.NewDb(db, "postgres")))
	finance.NewHandler(financeService, guard).RegisterRoutes(router)

	// ── Public storefront hooks (rate limited) ──────────────
	router.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
		paymentHandler.RegisterPayPalRoutes(r)
		notify.NewHandler(notifyService).RegisterRoutes(r)
	})

	// ── Start Server ─────────────────────────────────────────
	fmt.Printf("Marketplace API server starting on :%s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, router))
}
