package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sikaloan/internal/loan"
	"sikaloan/internal/menu"
	"sikaloan/internal/notify"
	"sikaloan/internal/platform/config"
	"sikaloan/internal/platform/httpserver"
	"sikaloan/internal/platform/logger"
	"sikaloan/internal/platform/metrics"
	"sikaloan/internal/platform/postgres"
	redisplatform "sikaloan/internal/platform/redis"
	"sikaloan/internal/repayment"
	"sikaloan/internal/session"
	"sikaloan/internal/subscriber"
	httptransport "sikaloan/internal/transport/http"
)

// main wires dependencies and owns process lifecycle. Business logic lives
// in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := redisplatform.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	m := metrics.New()

	var publisher notify.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := notify.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer kp.Close()
		publisher = kp
	} else {
		log.Info("no kafka brokers configured, notifications go to the log")
		publisher = notify.NewLog(log)
	}
	dispatcher := notify.NewDispatcher(publisher, log, m)

	loanStore := loan.NewPostgres(db)

	sessions := session.NewRedis(rdb.Client, cfg.SessionTTL)
	subscribers := subscriber.NewRegistry(subscriber.NewPostgres(db), log, m)
	loans := loan.NewLedger(loanStore, cfg.Loan, log, m)
	repayments := repayment.NewProcessor(loanStore, log, m)

	engine := menu.NewEngine(sessions, subscribers, loans, repayments, dispatcher, cfg.CountryCode, log, m)

	handler := httptransport.NewHandler(engine, log)
	router := httptransport.NewRouter(handler, httptransport.RouterConfig{
		GatewayJWTSecret: cfg.GatewayJWTSecret,
	}, log, m)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(gctx)
	})

	g.Go(func() error {
		log.Info("starting sikaloan", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
