package task

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"shopee_erp_v1_202608/internal/model"
	"shopee_erp_v1_202608/internal/repository"
	"shopee_erp_v1_202608/internal/service"
)

// Shopee access token 4 小时有效，刷新窗口要留足
const refreshWindow = time.Hour

type TokenTask struct {
	ConnRepo       repository.ConnectionRepository
	IntegrationSvc *service.IntegrationService
	Cron           *cron.Cron

	// 控制并发刷新的数量，防止把 Shopee 接口打限流
	concurrencyLimit int
	sleepTime        time.Duration
}

func NewTokenTask(connRepo repository.ConnectionRepository, integrationSvc *service.IntegrationService) *TokenTask {
	return &TokenTask{
		ConnRepo:         connRepo,
		IntegrationSvc:   integrationSvc,
		Cron:             cron.New(cron.WithSeconds()), // 支持秒级控制
		concurrencyLimit: 10,
		sleepTime:        100 * time.Millisecond, // 每个协程启动间隔，平滑波峰
	}
}

// Start 启动定时任务
func (t *TokenTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次 Token 检查...")
		t.refreshJob(ctx)
	}()

	// 每 40 分钟检查一次
	_, err := t.Cron.AddFunc("0 0/40 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		t.refreshJob(ctx)
	})

	if err != nil {
		log.Fatalf("无法启动 Token 定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("Token 保活任务已启动 (每40分钟检查一次)")
}

// Stop 停止定时任务
func (t *TokenTask) Stop() {
	if t.Cron != nil {
		t.Cron.Stop()
	}
}

// refreshJob 扫描快过期的连接并逐个刷新
func (t *TokenTask) refreshJob(ctx context.Context) {
	conns, err := t.ConnRepo.FindExpiring(ctx, refreshWindow)
	if err != nil {
		log.Printf("[Cron] 连接过期状态查询失败: %v", err)
		return
	}
	if len(conns) == 0 {
		return
	}

	// 信号量通道，容量即为并发上限
	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	log.Printf("[Cron] 开始处理 %d 个店铺的 Token 刷新，并发上限: %d", len(conns), t.concurrencyLimit)

	for _, conn := range conns {
		select {
		case <-ctx.Done():
			log.Println("[Cron] 任务超时停止")
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)

		// 平滑波峰
		time.Sleep(t.sleepTime)

		go func(c model.ShopConnection) {
			defer wg.Done()
			defer func() { <-sem }()

			// 单店刷新失败不影响其他店
			if err := t.IntegrationSvc.RefreshShop(ctx, c.ShopID); err != nil {
				log.Printf("[Cron] 店铺 [%d] 刷新失败: %v", c.ShopID, err)
			}
		}(conn)
	}

	wg.Wait()
	log.Println("[Cron] 本轮 Token 刷新任务完成")
}
