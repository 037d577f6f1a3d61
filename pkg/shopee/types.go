package shopee

import "fmt"

// API 路径常量
const (
	PathAuthPartner  = "/api/v2/shop/auth_partner"
	PathGetToken     = "/api/v2/auth/token/get"
	PathRefreshToken = "/api/v2/auth/access_token/get"
	PathUploadImage  = "/api/v2/media_space/upload_image"
	PathAddItem      = "/api/v2/product/add_item"
)

// 默认接口域名，沙箱环境用 partner.test-stable.shopeemobile.com
const DefaultBaseURL = "https://partner.shopeemobile.com"

// APIError Shopee 返回的业务错误
type APIError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	// 请求跟踪 ID，报工单时带上
	RequestID string `json:"request_id"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("shopee api error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("shopee api error %s", e.Code)
}

// TokenResponse token/get 和 access_token/get 的公共响应体
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireIn     int64  `json:"expire_in"`
	Code         string `json:"error"`
	Message      string `json:"message"`
	RequestID    string `json:"request_id"`
}

// UploadImageResponse media_space/upload_image 响应
type UploadImageResponse struct {
	Code      string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Response  struct {
		ImageInfo struct {
			ImageID  string `json:"image_id"`
			ImageURL []struct {
				ImageURLRegion string `json:"image_url_region"`
				ImageURL       string `json:"image_url"`
			} `json:"image_url_list"`
		} `json:"image_info"`
	} `json:"response"`
}

// AddItemRequest product/add_item 请求体
// 字段名与 Shopee 线上接口一一对应，不做二次封装
type AddItemRequest struct {
	OriginalPrice float64     `json:"original_price"`
	Description   string      `json:"description"`
	ItemName      string      `json:"item_name"`
	ItemStatus    string      `json:"item_status"`
	Weight        float64     `json:"weight"`
	Dimension     Dimension   `json:"dimension"`
	LogisticInfo  []Logistic  `json:"logistic_info"`
	CategoryID    int64       `json:"category_id"`
	AttributeList []Attribute `json:"attribute_list"`
	Image         ImageInfo   `json:"image"`
	Brand         Brand       `json:"brand"`
	ItemSKU       string      `json:"item_sku,omitempty"`
	SellerStock   []Stock     `json:"seller_stock"`
}

type Dimension struct {
	PackageLength int `json:"package_length"`
	PackageWidth  int `json:"package_width"`
	PackageHeight int `json:"package_height"`
}

type Logistic struct {
	LogisticID   int64    `json:"logistic_id"`
	LogisticName string   `json:"logistic_name"`
	Enabled      bool     `json:"enabled"`
	IsFree       bool     `json:"is_free"`
	ShippingFee  *float64 `json:"shipping_fee,omitempty"`
	SizeID       *int64   `json:"size_id,omitempty"`
}

// Attribute 类目属性，值列表里自定义值和预置值二选一
type Attribute struct {
	AttributeID        int64            `json:"attribute_id"`
	AttributeValueList []AttributeValue `json:"attribute_value_list"`
}

type AttributeValue struct {
	ValueID           *int64 `json:"value_id,omitempty"`
	OriginalValueName string `json:"original_value_name,omitempty"`
	ValueUnit         string `json:"value_unit,omitempty"`
}

type ImageInfo struct {
	ImageIDList []string `json:"image_id_list"`
}

type Brand struct {
	BrandID           int64  `json:"brand_id"`
	OriginalBrandName string `json:"original_brand_name"`
}

type Stock struct {
	Stock int `json:"stock"`
}

// AddItemResponse product/add_item 响应
type AddItemResponse struct {
	Code      string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Response  struct {
		ItemID int64 `json:"item_id"`
	} `json:"response"`
}
