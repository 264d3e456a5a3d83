package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hostelcore/internal/config"
	"hostelcore/internal/database"
	"hostelcore/internal/middleware"
	"hostelcore/internal/modules/auth"
	"hostelcore/internal/modules/availability"
	"hostelcore/internal/modules/booking"
	"hostelcore/internal/modules/guest"
	"hostelcore/internal/modules/payment"
	"hostelcore/internal/modules/roomstatus"
	"hostelcore/internal/notify"
	jwtsvc "hostelcore/internal/pkg/jwt"
	"hostelcore/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("level=info msg=\".env not loaded\" err=%v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatalf("migrate failed: %v", err)
		}
	}

	hub := notify.NewHub()
	notifiers := notify.Multi{hub}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("kafka publisher: %v", err)
		}
		defer kp.Close()
		notifiers = append(notifiers, kp)
	}
	dispatcher := notify.NewDispatcher(notifiers, cfg.NotifyTimeout)
	dispatcher.SetLogger(log.Printf)
	defer dispatcher.Wait()

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(repository.NewGuestRepository(db), j, cfg.OperationTimeout)
	directory := guest.NewDirectory(db, cfg.PhoneRegion, cfg.OperationTimeout)
	availabilityService := availability.NewService(db, cfg.OperationTimeout)
	synchronizer := roomstatus.NewSynchronizer(db, cfg.OperationTimeout, dispatcher)
	ledger := payment.NewLedger(db, cfg.OperationTimeout, dispatcher)
	coordinator := payment.NewCoordinator(db, cfg.OperationTimeout, dispatcher)
	bookingService := booking.NewService(db, directory, dispatcher, cfg.OperationTimeout, synchronizer, ledger)

	if cfg.ResyncOnStart {
		res, err := synchronizer.ResyncAll(ctx)
		if err != nil {
			log.Printf("level=warn msg=\"startup room resync failed\" err=%v", err)
		} else {
			log.Printf("level=info msg=\"startup room resync\" checked=%d updated=%d", res.Checked, res.Updated)
		}
	}

	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorLogger(), middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "subscribers": hub.Count()})
	})

	v1 := r.Group("/api/v1")
	{
		authHandler := auth.NewHandler(authService)
		authHandler.RegisterPublicRoutes(v1)
		// websocket auth travels in the query string
		notify.NewHandler(hub, j).RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			availability.NewHandler(availabilityService).RegisterRoutes(protected)
			booking.NewHandler(bookingService, log.Printf).RegisterRoutes(protected)
			roomstatus.NewHandler(synchronizer).RegisterRoutes(protected)
			payment.NewHandler(ledger, coordinator, log.Printf).RegisterRoutes(protected)
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("level=info msg=\"api listening\" addr=%s env=%s", cfg.HTTPAddr, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("level=info msg=\"shutting down\"")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("level=warn msg=\"graceful shutdown failed\" err=%v", err)
	}
}
