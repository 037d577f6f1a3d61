package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"shopee_erp_v1_202608/internal/controller"
	"shopee_erp_v1_202608/internal/marketplace"
	shopeeadapter "shopee_erp_v1_202608/internal/marketplace/shopee"
	"shopee_erp_v1_202608/internal/middleware"
	"shopee_erp_v1_202608/internal/model"
	"shopee_erp_v1_202608/internal/repository"
	"shopee_erp_v1_202608/internal/router"
	"shopee_erp_v1_202608/internal/service"
	"shopee_erp_v1_202608/internal/task"
	"shopee_erp_v1_202608/pkg/database"
	"shopee_erp_v1_202608/pkg/shopee"
	"shopee_erp_v1_202608/pkg/utils"
)

// @title Shopee ERP API
// @version 1.0
// @description 多市场商品导出后台
// @host localhost:8080
// @BasePath /
func main() {
	// .env 不存在不算错，容器环境直接注入环境变量
	_ = godotenv.Load()

	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 5. 启动服务
	startServer(r, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	TokenTask   *task.TokenTask
}

// Repositories 仓库集合
type Repositories struct {
	User       repository.UserRepository
	Product    repository.ProductRepository
	Connection repository.ConnectionRepository
	Link       repository.LinkRepository
}

// Services 服务集合
type Services struct {
	User        *service.UserService
	Product     *service.ProductService
	Integration *service.IntegrationService
	Export      *service.ExportService
	Storage     service.StorageProvider
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := mustEnv("DATABASE_URL")
	db := database.InitDB(dsn,
		// Manager
		&model.SysUser{},
		// Product
		&model.Product{}, &model.ProductMedia{},
		// Marketplace
		&model.ShopConnection{}, &model.MarketplaceLink{},
	)

	// 写操作自动补审计字段
	middleware.RegisterAuditCallbacks(db)
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:       repository.NewUserRepository(db),
		Product:    repository.NewProductRepository(db),
		Connection: repository.NewConnectionRepository(db),
		Link:       repository.NewLinkRepository(db),
	}

	// -------- Shopee 客户端 --------
	// partner 凭证缺失直接起不来，比运行到一半再炸强
	shopeeClient := shopee.NewClient(shopee.Config{
		PartnerID:   mustEnvInt64("SHOPEE_PARTNER_ID"),
		PartnerKey:  mustEnv("SHOPEE_PARTNER_KEY"),
		RedirectURI: mustEnv("SHOPEE_REDIRECT_URI"),
		BaseURL:     getEnv("SHOPEE_API_URL", shopee.DefaultBaseURL),
	})

	// -------- 存储服务 --------
	storage := initStorageProvider()

	// -------- 业务服务 --------
	services := &Services{Storage: storage}
	services.User = service.NewUserService(repos.User)
	services.Product = service.NewProductService(repos.Product, storage)
	services.Integration = service.NewIntegrationService(shopeeClient, repos.Connection)

	// -------- 市场适配器注册表 --------
	uploader := shopeeadapter.NewUploader(shopeeClient, utils.NewHTTPClient())
	registry, err := marketplace.NewRegistry(
		shopeeadapter.NewAdapter(shopeeClient, uploader, services.Integration, repos.Link),
	)
	if err != nil {
		log.Fatalf("市场适配器注册失败: %v", err)
	}

	services.Export = service.NewExportService(registry, repos.Product, repos.Link, middleware.GetLimiter())

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:        controller.NewAuthController(services.User),
		Product:     controller.NewProductController(services.Product),
		Integration: controller.NewIntegrationController(services.Integration,
			getEnv("DASHBOARD_URL", "/dashboard/marketplace/shopee")),
		Export:      controller.NewExportController(services.Export),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initStorageProvider 初始化存储服务
func initStorageProvider() service.StorageProvider {
	storage, err := service.NewStorageProvider(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "s3"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "shopee-erp"),
	})
	if err != nil {
		log.Fatalf("存储服务初始化失败: %v", err)
	}
	return storage
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	// Token 刷新
	tokenTask := task.NewTokenTask(deps.Repos.Connection, deps.Services.Integration)
	tokenTask.Start()
	deps.TokenTask = tokenTask

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务，带优雅退出
func startServer(r *gin.Engine, deps *Dependencies) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("服务已启动，监听端口 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("收到退出信号，正在关闭服务...")
	deps.TokenTask.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务关闭异常: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 环境变量辅助 ====================

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("缺少必要环境变量: %s", key)
	}
	return v
}

func mustEnvInt64(key string) int64 {
	v, err := strconv.ParseInt(mustEnv(key), 10, 64)
	if err != nil {
		log.Fatalf("环境变量 %s 必须是整数: %v", key, err)
	}
	return v
}
