package model

import (
	"time"

	"gorm.io/datatypes"
)

// MarketplaceType 市场类型 (封闭集合，新增市场需要同时注册 adapter)
type MarketplaceType string

const (
	MarketplaceShopee       MarketplaceType = "shopee"
	MarketplaceMercadoLivre MarketplaceType = "mercadolivre"
	MarketplaceAmazon       MarketplaceType = "amazon"
	MarketplaceTikTok       MarketplaceType = "tiktok"
)

// 同步状态
const (
	LinkStatusSynced  = "SYNCED"
	LinkStatusPending = "PENDING"
	LinkStatusFailed  = "FAILED"
)

// ShopConnection 市场店铺授权连接
// 每个 (marketplace, shop_id) 只允许一条有效记录，OAuth 回调时 upsert
type ShopConnection struct {
	BaseModel

	Marketplace MarketplaceType `gorm:"size:20;not null;uniqueIndex:idx_marketplace_shop"`
	ShopID      int64           `gorm:"not null;uniqueIndex:idx_marketplace_shop"` // 市场侧店铺 ID
	ShopName    string          `gorm:"size:100"`
	UserID      int64           `gorm:"index;comment:发起授权的用户ID"`

	// --- OAuth Token ---
	AccessToken  string    `gorm:"size:512"`
	RefreshToken string    `gorm:"size:512"`
	ExpireIn     int64     `gorm:"comment:Token有效期(秒)"`
	ExpiresAt    time.Time `gorm:"index;comment:Token绝对过期时间"`
}

func (ShopConnection) TableName() string {
	return "shop_connections"
}

// Connected 是否处于可用的已连接状态
// access token 为空时一律视为未连接
func (c *ShopConnection) Connected() bool {
	return c != nil && c.AccessToken != ""
}

// MarketplaceLink 本地商品与市场 listing 的关联记录
// 每个 (product, marketplace, shop) 组合一条，导出成功后写入
// 重复导出不做静默覆盖，由调用方显式更新状态
type MarketplaceLink struct {
	BaseModel

	ProductID   int64           `gorm:"not null;uniqueIndex:idx_product_shop"`
	Marketplace MarketplaceType `gorm:"size:20;not null;uniqueIndex:idx_product_shop"`
	ShopID      int64           `gorm:"not null;uniqueIndex:idx_product_shop"`

	// 市场侧 listing ID (Shopee 为 item_id)
	RemoteItemID string `gorm:"size:64;index"`
	Status       string `gorm:"size:20;default:'PENDING';index"`

	// 导出时使用的参数快照，便于排查
	ExportPayload datatypes.JSON `gorm:"type:jsonb"`
}

func (MarketplaceLink) TableName() string {
	return "marketplace_links"
}
