package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ================== 商品 DTO ==================

// ProductListReq 商品列表请求
type ProductListReq struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
	Keyword  string `form:"keyword"`
	Brand    string `form:"brand"`
	Category string `form:"category"`
}

// ProductCreateReq 创建商品请求
type ProductCreateReq struct {
	SKU         string          `json:"sku" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	EAN         string          `json:"ean"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock"`
	Weight      float64         `json:"weight"`
	Length      float64         `json:"length"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
}

// ProductUpdateReq 更新商品请求，零值字段不更新
type ProductUpdateReq struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Brand       *string          `json:"brand"`
	EAN         *string          `json:"ean"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Weight      *float64         `json:"weight"`
	Length      *float64         `json:"length"`
	Width       *float64         `json:"width"`
	Height      *float64         `json:"height"`
	Category    *string          `json:"category"`
	Tags        []string         `json:"tags"`
}

// ProductResp 商品响应
type ProductResp struct {
	ID          int64           `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	EAN         string          `json:"ean"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Weight      float64         `json:"weight"`
	Length      float64         `json:"length"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Media       []MediaResp     `json:"media,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MediaResp 媒体响应
type MediaResp struct {
	ID           int64  `json:"id"`
	Type         string `json:"type"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mime_type"`
	Rank         int    `json:"rank"`
}

// MediaReorderReq 媒体排序请求，按目标顺序给出媒体 ID
type MediaReorderReq struct {
	MediaIDs []int64 `json:"media_ids" binding:"required,min=1"`
}
