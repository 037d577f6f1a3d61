package dto

import "time"

// ================== 市场集成 DTO ==================

// IntegrationStatusResp 连接状态响应
// 只暴露状态和元信息，token 永远不出现在响应里
type IntegrationStatusResp struct {
	Marketplace string     `json:"marketplace"`
	Connected   bool       `json:"connected"`
	ShopID      int64      `json:"shop_id,omitempty"`
	ShopName    string     `json:"shop_name,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}

// AuthURLResp 授权地址响应
type AuthURLResp struct {
	URL string `json:"url"`
}

// DisconnectResp 断开连接响应
type DisconnectResp struct {
	Disconnected bool  `json:"disconnected"`
	Removed      int64 `json:"removed"`
}
