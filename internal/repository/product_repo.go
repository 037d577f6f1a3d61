package repository

import (
	"context"

	"gorm.io/gorm"

	"shopee_erp_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	// GetByIDWithMedia 带媒体加载，媒体按 rank 升序
	GetByIDWithMedia(ctx context.Context, id int64) (*model.Product, error)
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)

	// 媒体相关
	AddMedia(ctx context.Context, media *model.ProductMedia) error
	GetMedia(ctx context.Context, mediaID int64) (*model.ProductMedia, error)
	ListMedia(ctx context.Context, productID int64) ([]model.ProductMedia, error)
	DeleteMedia(ctx context.Context, mediaID int64) error
	// ReorderMedia 按给定 ID 顺序重写 rank
	ReorderMedia(ctx context.Context, productID int64, orderedIDs []int64) error
}

// ==================== 过滤条件 ====================

// ProductFilter 商品列表过滤条件
type ProductFilter struct {
	Keyword  string // 模糊匹配 name / sku
	Brand    string
	Category string
	Page     int
	PageSize int
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetByIDWithMedia(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("rank ASC, id ASC")
		}).
		First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var (
		products []model.Product
		total    int64
	)

	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", kw, kw)
	}
	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}
	if filter.Category != "" {
		query = query.Where("category_name = ?", filter.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Order("id DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepo) AddMedia(ctx context.Context, media *model.ProductMedia) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *productRepo) GetMedia(ctx context.Context, mediaID int64) (*model.ProductMedia, error) {
	var media model.ProductMedia
	if err := r.db.WithContext(ctx).First(&media, mediaID).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *productRepo) ListMedia(ctx context.Context, productID int64) ([]model.ProductMedia, error) {
	var media []model.ProductMedia
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("rank ASC, id ASC").
		Find(&media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

func (r *productRepo) DeleteMedia(ctx context.Context, mediaID int64) error {
	return r.db.WithContext(ctx).Delete(&model.ProductMedia{}, mediaID).Error
}

func (r *productRepo) ReorderMedia(ctx context.Context, productID int64, orderedIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			if err := tx.Model(&model.ProductMedia{}).
				Where("id = ? AND product_id = ?", id, productID).
				Update("rank", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
