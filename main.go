package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"asistencia-backend/docs"
	"asistencia-backend/internal/attendance"
	"asistencia-backend/internal/platform/auth"
	"asistencia-backend/internal/platform/config"
	"asistencia-backend/internal/platform/db"
	"asistencia-backend/internal/platform/evidence"
	"asistencia-backend/internal/platform/web"
)

// @title                      Asistencia API
// @version                    1.0
// @BasePath                   /api
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	// .env は無くても良い（本番は環境変数を直接渡す）
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] .env: %v", err)
	}

	cfgPath := flag.String("config", envOr("ASISTENCIA_CONFIG", config.DefaultPath), "path to config.yaml")
	flag.Parse()

	// 設定読み込み
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] config: %v", err)
	}
	mode := cfg.Mode
	log.Printf("[INFO] mode:%s version:%s", mode, cfg.Version)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("[FATAL] db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, conn, cfg.DB.Driver); err != nil {
		log.Fatalf("[FATAL] migrate: %v", err)
	}
	log.Printf("[INFO] connected to DB (%s)", cfg.DB.Driver)

	tokens := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	authSvc := auth.NewService(conn, tokens)
	if _, err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminUser, cfg.Auth.AdminPassword, cfg.Auth.AdminName); err != nil {
		log.Fatalf("[FATAL] ensure admin: %v", err)
	}

	ev, err := evidence.New(cfg.Storage)
	if err != nil {
		log.Fatalf("[FATAL] evidence storage: %v", err)
	}
	attSvc := attendance.NewService(conn, ev, attendance.Options{
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		MaxPhotoPx:     cfg.Storage.MaxPhotoPx,
	})

	if mode == config.ModeRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)
	// multipart はメモリに載せすぎない
	r.MaxMultipartMemory = cfg.Storage.MaxUploadBytes

	if mode == config.ModeDev {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))

		docs.SwaggerInfo.BasePath = "/api"
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) {
		if err := conn.PingContext(c.Request.Context()); err != nil {
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	// 証拠写真（local のときだけ自前で配信）
	skip := []string{"/api/", "/swagger/"}
	if ls, ok := ev.(*evidence.LocalStore); ok {
		r.Static(ls.PublicPrefix(), ls.Dir())
		skip = append(skip, ls.PublicPrefix()+"/")
	}

	// /api
	api := r.Group("/api")
	auth.RegisterRoutes(api, authSvc)

	authed := api.Group("", auth.RequireAuth(tokens))
	attendance.RegisterRoutes(authed, attSvc)

	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))
	auth.RegisterAdminRoutes(admin, authSvc)
	attendance.RegisterReportRoutes(admin, attSvc)

	if dir := cfg.Server.PublicDir; dir != "" {
		r.NoRoute(web.SPA(os.DirFS(dir), skip...))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if cfg.TLSEnabled() {
			log.Printf("[INFO] listening on https://%s", cfg.Server.Addr)
			err = srv.ListenAndServeTLS(cfg.Certificate.Cert, cfg.Certificate.Key)
		} else {
			log.Printf("[INFO] listening on http://%s", cfg.Server.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
