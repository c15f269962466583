package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting fitin api ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := loadConfig(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	setupLogging(cfg)
	log.Warnf("---->> running in [%s] environment", *env)

	if cfg.OpenAIAPIKey == "" {
		log.Errorf("openai API key not set, use OPENAI_API_KEY env var to set it; meal estimates will fail")
	}
	if *env == "production" || *env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := newDBPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	log.Infoln("DB pool ready")

	promRegistry := setupPrometheus()
	promRegistry.MustRegister(pgxpoolprometheus.NewCollector(pool, map[string]string{"db_name": "fitin"}))
	h := &Handler{
		store:         newPgStore(pool),
		metrics:       newMetrics(promRegistry),
		openAIBaseURL: cfg.OpenAIBaseURL,
		openAIAPIKey:  cfg.OpenAIAPIKey,
	}

	router := newRouter(h, promRegistry, cfg.MetricsEnabled)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      router,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Infoln("shutting down ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	log.Infoln("bye")
}

// newRouter builds the gin engine with recovery, metrics and request logging
// middleware, the API routes and, when enabled, /metrics.
func newRouter(h *Handler, promRegistry *prometheus.Registry, metricsEnabled bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.metrics.middleware(), requestLogger())
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Errorf("set trusted proxies: %v", err)
	}

	h.registerRoutes(router)

	if metricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))
	}
	return router
}
