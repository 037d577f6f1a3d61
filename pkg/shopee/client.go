package shopee

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config 合作方级配置，从环境变量读入，缺一不可
type Config struct {
	PartnerID   int64
	PartnerKey  string
	RedirectURI string
	BaseURL     string
}

// Client Shopee OpenAPI v2 客户端
// 只负责签名和收发，不落库，token 由上层传入
type Client struct {
	cfg  Config
	http *resty.Client

	// 测试时替换，生产走 time.Now
	now func() time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		cfg: cfg,
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(30 * time.Second).
			SetHeader("Content-Type", "application/json"),
		now: time.Now,
	}
}

// AuthURL 生成商家授权页地址
// 只含 partner 级签名参数，绝不携带任何 token
func (c *Client) AuthURL() string {
	ts := c.now().Unix()
	sign := SignPublic(c.cfg.PartnerID, c.cfg.PartnerKey, PathAuthPartner, ts)

	q := url.Values{}
	q.Set("partner_id", strconv.FormatInt(c.cfg.PartnerID, 10))
	q.Set("timestamp", strconv.FormatInt(ts, 10))
	q.Set("sign", sign)
	q.Set("redirect", c.cfg.RedirectURI)
	return c.cfg.BaseURL + PathAuthPartner + "?" + q.Encode()
}

// publicQuery 公共接口签名参数
func (c *Client) publicQuery(path string) map[string]string {
	ts := c.now().Unix()
	return map[string]string{
		"partner_id": strconv.FormatInt(c.cfg.PartnerID, 10),
		"timestamp":  strconv.FormatInt(ts, 10),
		"sign":       SignPublic(c.cfg.PartnerID, c.cfg.PartnerKey, path, ts),
	}
}

// shopQuery 店铺级接口签名参数 (带 access_token 和 shop_id)
func (c *Client) shopQuery(path, accessToken string, shopID int64) map[string]string {
	ts := c.now().Unix()
	return map[string]string{
		"partner_id":   strconv.FormatInt(c.cfg.PartnerID, 10),
		"timestamp":    strconv.FormatInt(ts, 10),
		"access_token": accessToken,
		"shop_id":      strconv.FormatInt(shopID, 10),
		"sign":         Sign(c.cfg.PartnerID, c.cfg.PartnerKey, path, ts, accessToken, shopID),
	}
}

// GetAccessToken 授权码换取 token (授权回调后调用一次)
func (c *Client) GetAccessToken(ctx context.Context, code string, shopID int64) (*TokenResponse, error) {
	var result TokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(c.publicQuery(PathGetToken)).
		SetBody(map[string]interface{}{
			"code":       code,
			"shop_id":    shopID,
			"partner_id": c.cfg.PartnerID,
		}).
		SetResult(&result).
		Post(PathGetToken)
	if err != nil {
		return nil, fmt.Errorf("获取token请求失败: %w", err)
	}
	if resp.IsError() || result.Code != "" {
		return nil, &APIError{Code: result.Code, Message: result.Message, RequestID: result.RequestID}
	}
	return &result, nil
}

// RefreshAccessToken 用 refresh token 换取新 token
// 注意 Shopee 的 refresh token 是一次性的，调用方必须持久化返回的新值
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string, shopID int64) (*TokenResponse, error) {
	var result TokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(c.publicQuery(PathRefreshToken)).
		SetBody(map[string]interface{}{
			"refresh_token": refreshToken,
			"shop_id":       shopID,
			"partner_id":    c.cfg.PartnerID,
		}).
		SetResult(&result).
		Post(PathRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("刷新token请求失败: %w", err)
	}
	if resp.IsError() || result.Code != "" {
		return nil, &APIError{Code: result.Code, Message: result.Message, RequestID: result.RequestID}
	}
	return &result, nil
}

// UploadImage 上传图片到 Shopee 媒体空间，返回 image_id
// multipart 字段名固定为 image
func (c *Client) UploadImage(ctx context.Context, accessToken string, shopID int64, filename string, data []byte) (string, error) {
	var result UploadImageResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(c.shopQuery(PathUploadImage, accessToken, shopID)).
		SetFileReader("image", filename, bytes.NewReader(data)).
		SetResult(&result).
		Post(PathUploadImage)
	if err != nil {
		return "", fmt.Errorf("上传图片请求失败: %w", err)
	}
	if resp.IsError() || result.Code != "" {
		return "", &APIError{Code: result.Code, Message: result.Message, RequestID: result.RequestID}
	}
	if result.Response.ImageInfo.ImageID == "" {
		return "", fmt.Errorf("上传图片响应缺少 image_id")
	}
	return result.Response.ImageInfo.ImageID, nil
}

// AddItem 创建商品 listing，返回 item_id
func (c *Client) AddItem(ctx context.Context, accessToken string, shopID int64, req *AddItemRequest) (int64, error) {
	var result AddItemResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(c.shopQuery(PathAddItem, accessToken, shopID)).
		SetBody(req).
		SetResult(&result).
		Post(PathAddItem)
	if err != nil {
		return 0, fmt.Errorf("创建商品请求失败: %w", err)
	}
	if resp.IsError() || result.Code != "" {
		return 0, &APIError{Code: result.Code, Message: result.Message, RequestID: result.RequestID}
	}
	if result.Response.ItemID == 0 {
		return 0, fmt.Errorf("创建商品响应缺少 item_id")
	}
	return result.Response.ItemID, nil
}
