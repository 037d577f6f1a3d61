package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopee_erp_v1_202608/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.ShopConnection{}, &model.MarketplaceLink{}); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	return db
}

func TestConnectionUpsertOverwritesSameShop(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()

	first := &model.ShopConnection{
		Marketplace:  model.MarketplaceShopee,
		ShopID:       789,
		AccessToken:  "at-old",
		RefreshToken: "rt-old",
		ExpiresAt:    time.Now().Add(4 * time.Hour),
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}

	// 同店铺重新授权，应覆盖而不是新增
	second := &model.ShopConnection{
		Marketplace:  model.MarketplaceShopee,
		ShopID:       789,
		AccessToken:  "at-new",
		RefreshToken: "rt-new",
		ExpiresAt:    time.Now().Add(4 * time.Hour),
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("二次写入失败: %v", err)
	}

	var count int64
	db.Model(&model.ShopConnection{}).Count(&count)
	if count != 1 {
		t.Errorf("同一店铺应只有一条连接记录, got %d", count)
	}

	conn, err := repo.GetByShop(ctx, model.MarketplaceShopee, 789)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if conn.AccessToken != "at-new" {
		t.Errorf("token 应被覆盖, got %s", conn.AccessToken)
	}
}

func TestConnectionFindExpiring(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()

	soon := &model.ShopConnection{
		Marketplace:  model.MarketplaceShopee,
		ShopID:       1,
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(30 * time.Minute),
	}
	later := &model.ShopConnection{
		Marketplace:  model.MarketplaceShopee,
		ShopID:       2,
		AccessToken:  "at-2",
		RefreshToken: "rt-2",
		ExpiresAt:    time.Now().Add(10 * time.Hour),
	}
	// 没有 refresh token 的不应出现在刷新名单里
	noRefresh := &model.ShopConnection{
		Marketplace: model.MarketplaceShopee,
		ShopID:      3,
		AccessToken: "at-3",
		ExpiresAt:   time.Now().Add(5 * time.Minute),
	}
	for _, c := range []*model.ShopConnection{soon, later, noRefresh} {
		if err := repo.Upsert(ctx, c); err != nil {
			t.Fatalf("写入失败: %v", err)
		}
	}

	expiring, err := repo.FindExpiring(ctx, time.Hour)
	if err != nil {
		t.Fatalf("FindExpiring 失败: %v", err)
	}
	if len(expiring) != 1 || expiring[0].ShopID != 1 {
		t.Errorf("应只命中 shop 1, got %+v", expiring)
	}
}

func TestConnectionDeleteByMarketplace(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConnectionRepository(db)
	ctx := context.Background()

	for _, shopID := range []int64{1, 2} {
		if err := repo.Upsert(ctx, &model.ShopConnection{
			Marketplace: model.MarketplaceShopee,
			ShopID:      shopID,
			AccessToken: "at",
		}); err != nil {
			t.Fatalf("写入失败: %v", err)
		}
	}

	deleted, err := repo.DeleteByMarketplace(ctx, model.MarketplaceShopee)
	if err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if deleted != 2 {
		t.Errorf("删除条数 = %d, want 2", deleted)
	}

	// 再删一次应返回 0，幂等
	deleted, err = repo.DeleteByMarketplace(ctx, model.MarketplaceShopee)
	if err != nil {
		t.Fatalf("二次删除失败: %v", err)
	}
	if deleted != 0 {
		t.Errorf("二次删除条数 = %d, want 0", deleted)
	}
}

func TestLinkUpsertKeepsOneRecordPerShop(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &model.MarketplaceLink{
		ProductID:    23,
		Marketplace:  model.MarketplaceShopee,
		ShopID:       789,
		RemoteItemID: "555",
		Status:       model.LinkStatusSynced,
	}); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	// 重复导出同一商品到同一店铺
	if err := repo.Upsert(ctx, &model.MarketplaceLink{
		ProductID:    23,
		Marketplace:  model.MarketplaceShopee,
		ShopID:       789,
		RemoteItemID: "556",
		Status:       model.LinkStatusSynced,
	}); err != nil {
		t.Fatalf("二次写入失败: %v", err)
	}

	var count int64
	db.Model(&model.MarketplaceLink{}).Count(&count)
	if count != 1 {
		t.Errorf("同一 (商品, 店铺) 应只有一条关联记录, got %d", count)
	}

	link, err := repo.GetByProductShop(ctx, 23, model.MarketplaceShopee, 789)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if link.RemoteItemID != "556" {
		t.Errorf("remote_item_id 应被更新, got %s", link.RemoteItemID)
	}
}
