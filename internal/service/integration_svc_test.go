package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopee_erp_v1_202608/internal/middleware"
	"shopee_erp_v1_202608/internal/model"
	"shopee_erp_v1_202608/internal/repository"
	"shopee_erp_v1_202608/pkg/shopee"
)

type integrationFixture struct {
	svc          *IntegrationService
	db           *gorm.DB
	refreshCalls int32
}

func newIntegrationFixture(t *testing.T) *integrationFixture {
	t.Helper()
	f := &integrationFixture{}

	mux := http.NewServeMux()
	mux.HandleFunc(shopee.PathGetToken, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "at-initial",
			"refresh_token": "rt-initial",
			"expire_in":     14400,
		})
	})
	mux.HandleFunc(shopee.PathRefreshToken, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&f.refreshCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "at-refreshed",
			"refresh_token": "rt-refreshed",
			"expire_in":     int64(14400) + int64(n),
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.ShopConnection{}); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	f.db = db

	api := shopee.NewClient(shopee.Config{
		PartnerID:  123456,
		PartnerKey: "secretkey",
		BaseURL:    srv.URL,
	})
	f.svc = NewIntegrationService(api, repository.NewConnectionRepository(db))
	return f
}

func (f *integrationFixture) seedConnection(t *testing.T, expiresIn time.Duration) {
	t.Helper()
	conn := &model.ShopConnection{
		Marketplace:  model.MarketplaceShopee,
		ShopID:       789,
		AccessToken:  "at-seed",
		RefreshToken: "rt-seed",
		ExpireIn:     14400,
		ExpiresAt:    time.Now().Add(expiresIn),
	}
	if err := f.db.Create(conn).Error; err != nil {
		t.Fatalf("写入连接失败: %v", err)
	}
}

func TestHandleCallbackStoresConnection(t *testing.T) {
	f := newIntegrationFixture(t)

	if err := f.svc.HandleCallback(context.Background(), "authcode", 789); err != nil {
		t.Fatalf("回调处理失败: %v", err)
	}

	var conn model.ShopConnection
	if err := f.db.Where("marketplace = ? AND shop_id = ?", model.MarketplaceShopee, 789).First(&conn).Error; err != nil {
		t.Fatalf("连接未落库: %v", err)
	}
	if conn.AccessToken != "at-initial" || conn.RefreshToken != "rt-initial" {
		t.Errorf("token 不匹配: %+v", conn)
	}
	if time.Until(conn.ExpiresAt) < 3*time.Hour {
		t.Errorf("过期时间应按 expire_in 计算: %v", conn.ExpiresAt)
	}
}

func TestHandleCallbackRejectsMissingParams(t *testing.T) {
	f := newIntegrationFixture(t)

	if err := f.svc.HandleCallback(context.Background(), "", 789); err == nil {
		t.Error("缺少 code 应报错")
	}
	if err := f.svc.HandleCallback(context.Background(), "authcode", 0); err == nil {
		t.Error("缺少 shop_id 应报错")
	}
}

func TestHandleCallbackPersistFailureNotFatal(t *testing.T) {
	f := newIntegrationFixture(t)
	// 连接表没了，落库必然失败
	if err := f.db.Migrator().DropTable(&model.ShopConnection{}); err != nil {
		t.Fatal(err)
	}

	// token 已经换到手，落库失败只告警，授权流程照常成功
	if err := f.svc.HandleCallback(context.Background(), "authcode", 789); err != nil {
		t.Errorf("落库失败不应让授权流程失败: %v", err)
	}
}

func TestStatusScopedToUser(t *testing.T) {
	f := newIntegrationFixture(t)
	conn := &model.ShopConnection{
		Marketplace:  model.MarketplaceShopee,
		ShopID:       789,
		UserID:       7,
		AccessToken:  "at-seed",
		RefreshToken: "rt-seed",
		ExpiresAt:    time.Now().Add(3 * time.Hour),
	}
	if err := f.db.Create(conn).Error; err != nil {
		t.Fatal(err)
	}

	// 别人连的店铺对当前用户不可见
	other := middleware.WithAuditInfo(context.Background(), 8, "operator-b")
	if resp := f.svc.Status(other); resp.Connected {
		t.Errorf("不应看到其他用户的连接: %+v", resp)
	}

	owner := middleware.WithAuditInfo(context.Background(), 7, "operator-a")
	resp := f.svc.Status(owner)
	if !resp.Connected || resp.ShopID != 789 {
		t.Errorf("本人应能看到自己的连接: %+v", resp)
	}
}

func TestActiveConnectionSkipsRefreshWhenFresh(t *testing.T) {
	f := newIntegrationFixture(t)
	f.seedConnection(t, 3*time.Hour)

	conn, err := f.svc.ActiveConnection(context.Background(), model.MarketplaceShopee)
	if err != nil {
		t.Fatalf("ActiveConnection 失败: %v", err)
	}
	if conn.AccessToken != "at-seed" {
		t.Errorf("未过期不应刷新: %s", conn.AccessToken)
	}
	if atomic.LoadInt32(&f.refreshCalls) != 0 {
		t.Errorf("refresh 调用次数 = %d", f.refreshCalls)
	}
}

func TestActiveConnectionRefreshesExpiring(t *testing.T) {
	f := newIntegrationFixture(t)
	f.seedConnection(t, 2*time.Minute)

	conn, err := f.svc.ActiveConnection(context.Background(), model.MarketplaceShopee)
	if err != nil {
		t.Fatalf("ActiveConnection 失败: %v", err)
	}
	if conn.AccessToken != "at-refreshed" {
		t.Errorf("快过期应刷新: %s", conn.AccessToken)
	}

	// 新 token 要落库
	var stored model.ShopConnection
	if err := f.db.Where("shop_id = ?", 789).First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored.AccessToken != "at-refreshed" || stored.RefreshToken != "rt-refreshed" {
		t.Errorf("刷新结果未落库: %+v", stored)
	}
}

func TestConcurrentRefreshHappensOnce(t *testing.T) {
	f := newIntegrationFixture(t)
	f.seedConnection(t, 2*time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.ActiveConnection(context.Background(), model.MarketplaceShopee); err != nil {
				t.Errorf("ActiveConnection 失败: %v", err)
			}
		}()
	}
	wg.Wait()

	// refresh token 是一次性的，并发请求只能有一次真正刷新
	if got := atomic.LoadInt32(&f.refreshCalls); got != 1 {
		t.Errorf("refresh 调用次数 = %d, want 1", got)
	}
}

func TestActiveConnectionNotConnected(t *testing.T) {
	f := newIntegrationFixture(t)

	if _, err := f.svc.ActiveConnection(context.Background(), model.MarketplaceShopee); err != ErrNotConnected {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

func TestStatusNeverExposesTokens(t *testing.T) {
	f := newIntegrationFixture(t)
	f.seedConnection(t, 3*time.Hour)

	resp := f.svc.Status(context.Background())
	if !resp.Connected || resp.ShopID != 789 {
		t.Fatalf("状态不匹配: %+v", resp)
	}

	// 响应序列化后不能出现 token 字样的值
	raw, _ := json.Marshal(resp)
	for _, secret := range []string{"at-seed", "rt-seed"} {
		if strings.Contains(string(raw), secret) {
			t.Errorf("状态响应泄露了 token: %s", raw)
		}
	}
}

func TestDisconnectRemovesConnections(t *testing.T) {
	f := newIntegrationFixture(t)
	f.seedConnection(t, 3*time.Hour)

	resp, err := f.svc.Disconnect(context.Background())
	if err != nil {
		t.Fatalf("断开失败: %v", err)
	}
	if !resp.Disconnected || resp.Removed != 1 {
		t.Errorf("断开结果不匹配: %+v", resp)
	}

	status := f.svc.Status(context.Background())
	if status.Connected {
		t.Error("断开后状态应为未连接")
	}
}

func TestRefreshShop(t *testing.T) {
	f := newIntegrationFixture(t)
	f.seedConnection(t, 2*time.Minute)

	if err := f.svc.RefreshShop(context.Background(), 789); err != nil {
		t.Fatalf("RefreshShop 失败: %v", err)
	}
	if got := atomic.LoadInt32(&f.refreshCalls); got != 1 {
		t.Errorf("refresh 调用次数 = %d", got)
	}

	// 不存在的店铺
	if err := f.svc.RefreshShop(context.Background(), 999); err != ErrNotConnected {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

func TestRefreshManual(t *testing.T) {
	f := newIntegrationFixture(t)
	f.seedConnection(t, 2*time.Minute)

	// 不传 shop_id，刷新最近连接的店铺
	resp, err := f.svc.Refresh(context.Background(), 0)
	if err != nil {
		t.Fatalf("Refresh 失败: %v", err)
	}
	if !resp.Connected || resp.ShopID != 789 {
		t.Errorf("刷新后状态异常: %+v", resp)
	}
	if got := atomic.LoadInt32(&f.refreshCalls); got != 1 {
		t.Errorf("refresh 调用次数 = %d", got)
	}

	// token 还新鲜时不再真正刷新
	if _, err := f.svc.Refresh(context.Background(), 789); err != nil {
		t.Fatalf("Refresh 失败: %v", err)
	}
	if got := atomic.LoadInt32(&f.refreshCalls); got != 1 {
		t.Errorf("新鲜 token 不应再刷新，调用次数 = %d", got)
	}

	if _, err := f.svc.Refresh(context.Background(), 999); err != ErrNotConnected {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}
