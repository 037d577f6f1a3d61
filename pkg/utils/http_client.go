package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewHTTPClient 创建配置好超时和 UA 的 Resty 客户端
// 下载商品图片等对外请求统一走这里
func NewHTTPClient() *resty.Client {
	return resty.New().
		SetTimeout(20*time.Second).                 // 图片源站可能比较慢，给 20s
		SetHeader("User-Agent", "Shopee-ERP/1.0").
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second)
}
