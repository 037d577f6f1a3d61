package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopee_erp_v1_202608/internal/model"
)

// ConnectionRepository 市场授权连接仓储接口
type ConnectionRepository interface {
	// Upsert 按 (marketplace, shop_id) 幂等写入
	// 重复授权同一店铺时覆盖 token 而不是新增记录
	Upsert(ctx context.Context, conn *model.ShopConnection) error
	GetByShop(ctx context.Context, marketplace model.MarketplaceType, shopID int64) (*model.ShopConnection, error)
	// GetLatest 最近连接的店铺，userID > 0 时只看该用户名下的连接
	GetLatest(ctx context.Context, marketplace model.MarketplaceType, userID int64) (*model.ShopConnection, error)
	ListByMarketplace(ctx context.Context, marketplace model.MarketplaceType) ([]model.ShopConnection, error)
	UpdateToken(ctx context.Context, id int64, accessToken, refreshToken string, expireIn int64, expiresAt time.Time) error
	// FindExpiring 找出 within 时间内即将过期的连接，刷新任务用
	FindExpiring(ctx context.Context, within time.Duration) ([]model.ShopConnection, error)
	// DeleteByMarketplace 断开连接，返回删除条数
	DeleteByMarketplace(ctx context.Context, marketplace model.MarketplaceType) (int64, error)
}

type connectionRepo struct {
	db *gorm.DB
}

// NewConnectionRepository 创建连接仓储
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepo{db: db}
}

func (r *connectionRepo) Upsert(ctx context.Context, conn *model.ShopConnection) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "marketplace"}, {Name: "shop_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"shop_name", "user_id",
			"access_token", "refresh_token", "expire_in", "expires_at",
			// 断开后重连要把软删除标记清掉
			"deleted_at", "updated_at",
		}),
	}).Create(conn).Error
}

func (r *connectionRepo) GetByShop(ctx context.Context, marketplace model.MarketplaceType, shopID int64) (*model.ShopConnection, error) {
	var conn model.ShopConnection
	if err := r.db.WithContext(ctx).
		Where("marketplace = ? AND shop_id = ?", marketplace, shopID).
		First(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepo) GetLatest(ctx context.Context, marketplace model.MarketplaceType, userID int64) (*model.ShopConnection, error) {
	query := r.db.WithContext(ctx).Where("marketplace = ?", marketplace)
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}

	var conn model.ShopConnection
	if err := query.Order("updated_at DESC").First(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepo) ListByMarketplace(ctx context.Context, marketplace model.MarketplaceType) ([]model.ShopConnection, error) {
	var conns []model.ShopConnection
	if err := r.db.WithContext(ctx).
		Where("marketplace = ?", marketplace).
		Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *connectionRepo) UpdateToken(ctx context.Context, id int64, accessToken, refreshToken string, expireIn int64, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.ShopConnection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"expire_in":     expireIn,
			"expires_at":    expiresAt,
		}).Error
}

func (r *connectionRepo) FindExpiring(ctx context.Context, within time.Duration) ([]model.ShopConnection, error) {
	var conns []model.ShopConnection
	deadline := time.Now().Add(within)
	if err := r.db.WithContext(ctx).
		Where("expires_at <= ? AND refresh_token != ''", deadline).
		Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *connectionRepo) DeleteByMarketplace(ctx context.Context, marketplace model.MarketplaceType) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("marketplace = ?", marketplace).
		Delete(&model.ShopConnection{})
	return result.RowsAffected, result.Error
}
