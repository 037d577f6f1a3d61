package dto

import "encoding/json"

// ================== 市场导出 DTO ==================

// ExportReq 导出商品到市场请求
// Options 的结构由各市场 adapter 自行定义和校验
type ExportReq struct {
	ProductID   int64           `json:"product_id" binding:"required"`
	Marketplace string          `json:"marketplace" binding:"required"`
	Options     json.RawMessage `json:"options"`
}

// ValidateReq 仅校验导出参数，不实际导出
type ValidateReq struct {
	Marketplace string          `json:"marketplace" binding:"required"`
	Options     json.RawMessage `json:"options"`
}

// ExportFormField 市场导出表单字段描述，前端据此渲染动态表单
type ExportFormField struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"` // number / text / select / list
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Hint     string   `json:"hint,omitempty"`
}

// ValidationResult 参数校验结果
// 一次返回所有缺失/非法字段，不在第一个错误处停下
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// ImageUploadResult 单张图片的上传结果
type ImageUploadResult struct {
	URL     string `json:"url"`
	ImageID string `json:"image_id,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ExportResult 导出结果
// 导出流程的所有失败都收敛到这里，不向上抛 panic/error
// 成功时填 Message，失败时填 Errors，两者不会同时出现
type ExportResult struct {
	Success      bool                `json:"success"`
	Marketplace  string              `json:"marketplace"`
	ProductID    int64               `json:"product_id"`
	RemoteItemID string              `json:"remote_item_id,omitempty"`
	Images       []ImageUploadResult `json:"images,omitempty"`
	Message      string              `json:"message,omitempty"`
	Errors       []string            `json:"errors,omitempty"`
}

// LinkResp 商品的市场关联记录响应
type LinkResp struct {
	ID           int64  `json:"id"`
	Marketplace  string `json:"marketplace"`
	ShopID       int64  `json:"shop_id"`
	RemoteItemID string `json:"remote_item_id"`
	Status       string `json:"status"`
	UpdatedAt    string `json:"updated_at"`
}

// MarketplaceInfo 可用市场描述
type MarketplaceInfo struct {
	Type      string            `json:"type"`
	Name      string            `json:"name"`
	Connected bool              `json:"connected"`
	Fields    []ExportFormField `json:"fields"`
}
