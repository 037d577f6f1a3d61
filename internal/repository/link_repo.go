package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopee_erp_v1_202608/internal/model"
)

// LinkRepository 商品-市场关联仓储接口
type LinkRepository interface {
	// Upsert 按 (product_id, marketplace, shop_id) 幂等写入
	// 重复导出时更新状态和 remote_item_id，保证每个组合只有一条记录
	Upsert(ctx context.Context, link *model.MarketplaceLink) error
	GetByProductShop(ctx context.Context, productID int64, marketplace model.MarketplaceType, shopID int64) (*model.MarketplaceLink, error)
	ListByProduct(ctx context.Context, productID int64) ([]model.MarketplaceLink, error)
	ListByStatus(ctx context.Context, status string) ([]model.MarketplaceLink, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type linkRepo struct {
	db *gorm.DB
}

// NewLinkRepository 创建关联仓储
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepo{db: db}
}

func (r *linkRepo) Upsert(ctx context.Context, link *model.MarketplaceLink) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "marketplace"}, {Name: "shop_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"remote_item_id", "status", "export_payload", "updated_at",
		}),
	}).Create(link).Error
}

func (r *linkRepo) GetByProductShop(ctx context.Context, productID int64, marketplace model.MarketplaceType, shopID int64) (*model.MarketplaceLink, error) {
	var link model.MarketplaceLink
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND marketplace = ? AND shop_id = ?", productID, marketplace, shopID).
		First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *linkRepo) ListByProduct(ctx context.Context, productID int64) ([]model.MarketplaceLink, error) {
	var links []model.MarketplaceLink
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id DESC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *linkRepo) ListByStatus(ctx context.Context, status string) ([]model.MarketplaceLink, error) {
	var links []model.MarketplaceLink
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *linkRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.MarketplaceLink{}).
		Where("id = ?", id).
		Update("status", status).Error
}
