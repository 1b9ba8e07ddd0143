package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"admin_backend/internal/config"
	"admin_backend/internal/database"
	"admin_backend/internal/handler"
	"admin_backend/internal/pkg/auth"
	"admin_backend/internal/pkg/cache"
	"admin_backend/internal/pkg/report"
	"admin_backend/internal/seed"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := config.LoadConfig(); err != nil {
		log.Fatal("配置加载失败: ", err)
	}
	cfg := config.AppConfig
	gin.SetMode(cfg.GinMode)
	auth.InitJWT(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// 连接数据库
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("无法连接数据库: ", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("表结构迁移失败: ", err)
	}
	if cfg.DBSeed {
		if err := seed.Run(db); err != nil {
			log.Fatal("演示数据写入失败: ", err)
		}
	}

	log.Println("正在加载权限缓存...")
	if err := cache.InitPermissionCache(db); err != nil {
		log.Fatal("缓存初始化失败: ", err)
	}
	log.Println("权限缓存加载完毕")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := report.NewGenerator(db, report.Options{
		Delay:       cfg.ReportDelay,
		FailureRate: cfg.ReportFailureRate,
		Workers:     cfg.ReportWorkers,
	})
	gen.Start(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler.NewRouter(db, gen, cfg.CORSOrigins),
	}

	go func() {
		log.Printf("服务器启动在 http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("服务器异常退出: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务器关闭出错: %v", err)
	}
	gen.Wait()
	log.Println("服务器已退出")
}
