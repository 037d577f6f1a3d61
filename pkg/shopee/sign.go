package shopee

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Sign 计算 Shopee OpenAPI v2 请求签名
//
// 基础串拼接规则:
//  1. partner_id + api path + timestamp
//  2. 店铺级接口追加 access_token + shop_id
//
// 再用 partner key 做 HMAC-SHA256，输出小写十六进制
func Sign(partnerID int64, partnerKey string, path string, timestamp int64, accessToken string, shopID int64) string {
	base := strconv.FormatInt(partnerID, 10) + path + strconv.FormatInt(timestamp, 10)
	if accessToken != "" {
		base += accessToken
	}
	if shopID != 0 {
		base += strconv.FormatInt(shopID, 10)
	}

	mac := hmac.New(sha256.New, []byte(partnerKey))
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignPublic 公共接口签名 (不带店铺上下文，如授权页和换取 token)
func SignPublic(partnerID int64, partnerKey string, path string, timestamp int64) string {
	return Sign(partnerID, partnerKey, path, timestamp, "", 0)
}
