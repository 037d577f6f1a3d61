package model

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// 媒体类型
const (
	MediaTypeImage = "IMAGE"
	MediaTypeVideo = "VIDEO"
)

type Product struct {
	BaseModel
	AuditMixin

	// --- 基本信息 ---
	SKU         string `gorm:"size:100;uniqueIndex;not null"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Brand       string `gorm:"size:100"`
	EAN         string `gorm:"size:20;index"`

	// --- 价格与库存 ---
	// 价格用 decimal 存储，出到 API 边界时转为 JSON number
	Price decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock int             `gorm:"default:0"`

	// --- 物流参数 (导出市场时的默认值来源) ---
	Weight float64 `gorm:"default:0;comment:重量(kg)"`
	Length float64 `gorm:"default:0;comment:包装长(cm)"`
	Width  float64 `gorm:"default:0;comment:包装宽(cm)"`
	Height float64 `gorm:"default:0;comment:包装高(cm)"`

	// --- 分类与标签 ---
	CategoryName string         `gorm:"size:100"`
	Tags         pq.StringArray `gorm:"type:text[]"`

	// --- 关联关系 ---
	Media []ProductMedia    `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Links []MarketplaceLink `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string {
	return "products"
}

// ImageURLs 按 rank 顺序返回图片类媒体的 URL
// 视频不能作为市场 listing 的图片，这里直接过滤掉
func (p *Product) ImageURLs() []string {
	var urls []string
	for _, m := range p.Media {
		if m.Type == MediaTypeImage {
			urls = append(urls, m.URL)
		}
	}
	return urls
}

// ProductMedia 商品媒体 (图片/视频)
type ProductMedia struct {
	BaseModel

	ProductID int64    `gorm:"index;not null"`
	Product   *Product `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	Type         string `gorm:"size:10;default:'IMAGE'"` // IMAGE / VIDEO
	URL          string `gorm:"size:512;not null"`
	ThumbnailURL string `gorm:"size:512"`

	// --- 存储元数据 ---
	PublicID string `gorm:"size:255;index"` // 存储侧唯一标识，删除时使用
	Filename string `gorm:"size:255"`
	Size     int64  `gorm:"default:0"`
	MimeType string `gorm:"size:50"`

	// 排序权重，listing 图片顺序以此为准
	Rank int `gorm:"default:0;index"`
}

func (ProductMedia) TableName() string {
	return "product_media"
}
