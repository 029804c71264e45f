package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "loyalty_wheel/internal/domain/campaign"
	_ "loyalty_wheel/internal/domain/wheel"
	"loyalty_wheel/internal/pkg/config"
	"loyalty_wheel/internal/pkg/middleware"
	"loyalty_wheel/internal/pkg/registry"
	"loyalty_wheel/internal/pkg/worker"
	"loyalty_wheel/pkg/cache"
	"loyalty_wheel/pkg/database"
	"loyalty_wheel/pkg/logger"
	"loyalty_wheel/pkg/metrics"
)

func main() {
	// 1. 加载配置
	config.LoadConfig()
	logger.InitLogger(config.GlobalConfig.App.Debug)
	defer logger.Sync()

	// 2. 初始化基础设施
	db := database.InitDatabase()
	rdb := database.InitRedis()
	cacheService := cache.NewRedisCache(rdb)

	// 3. 启动 CRM 异步推送池
	crmCfg := config.GlobalConfig.CRM
	crmPool := worker.NewWorkerPool(worker.NewHTTPSink(), crmCfg.Workers, crmCfg.Buffer)
	crmPool.Start()

	// 4. 初始化 Gin
	gin.SetMode(config.GlobalConfig.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.RateLimitMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 健康检查与指标端点
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 5. 按优先级初始化业务模块（campaign -> wheel）
	moduleCtx := &registry.ModuleContext{
		DB:      db,
		Redis:   rdb,
		Cache:   cacheService,
		CRMPool: crmPool,
		Router:  r,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		log.Fatalf("Failed to initialize modules: %v", err)
	}

	// 6. 连接池指标采集
	stopCollector := metrics.StartPoolCollector(db, time.Second*15)

	// 7. 启动服务并等待退出信号
	srv := &http.Server{
		Addr:    ":" + config.GlobalConfig.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	close(stopCollector)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
