package main

import (
	"flag"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"parklot-service/internal/config"
	"parklot-service/internal/db"
	"parklot-service/internal/domain/parking"
	httpapi "parklot-service/internal/http"
	"parklot-service/internal/imagestore"
	"parklot-service/internal/metrics"
	"parklot-service/internal/ocr"
	"parklot-service/internal/repository"
	"parklot-service/internal/service"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	gdb, err := db.Open(cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	eventRepo := repository.NewEventGormRepository(gdb)
	sessionRepo := repository.NewSessionGormRepository(gdb)
	images := imagestore.NewFileStore(cfg.Images.Dir)
	engine := ocr.NewHTTPClient(cfg.OCR.Endpoint, cfg.OCR.Timeout)
	m := metrics.New()

	policy := parking.BillingPolicy{
		FeePerInterval:  cfg.Billing.FeePerInterval,
		IntervalMinutes: cfg.Billing.IntervalMinutes,
	}

	ingestService := service.NewIngestService(eventRepo, images, engine, m, log)
	attendanceService := service.NewAttendanceService(sessionRepo, eventRepo, policy, m, log)
	queryService := service.NewQueryService(eventRepo, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	handler := httpapi.NewHandler(ingestService, attendanceService, queryService, log)
	handler.Register(router, httpapi.AuthMiddleware(cfg.Auth.JWTSecret))

	log.Info().Str("addr", cfg.HTTP.Addr).Msg("starting parklot service")
	if err := router.Run(cfg.HTTP.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
