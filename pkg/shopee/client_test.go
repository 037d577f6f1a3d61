package shopee

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		PartnerID:   123456,
		PartnerKey:  "secretkey",
		RedirectURI: "https://erp.example.com/api/integrations/shopee/callback",
		BaseURL:     srv.URL,
	})
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func TestAuthURL(t *testing.T) {
	c := NewClient(Config{
		PartnerID:   123456,
		PartnerKey:  "secretkey",
		RedirectURI: "https://erp.example.com/cb",
	})
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	u, err := url.Parse(c.AuthURL())
	if err != nil {
		t.Fatalf("授权地址解析失败: %v", err)
	}
	if u.Path != PathAuthPartner {
		t.Errorf("path = %s", u.Path)
	}
	q := u.Query()
	if q.Get("partner_id") != "123456" {
		t.Errorf("partner_id = %s", q.Get("partner_id"))
	}
	if q.Get("sign") != "8b0489ef8f1ad58a7a39ed348480c25cc362bddac70fb15f3d168bd2ce71f98c" {
		t.Errorf("sign = %s", q.Get("sign"))
	}
	if q.Get("redirect") != "https://erp.example.com/cb" {
		t.Errorf("redirect = %s", q.Get("redirect"))
	}
	// 授权地址里绝不能出现 token
	for k := range q {
		if strings.Contains(k, "token") {
			t.Errorf("授权地址不应包含 token 参数: %s", k)
		}
	}
}

func TestGetAccessToken(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathGetToken {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("sign") == "" || q.Get("timestamp") != "1700000000" {
			t.Errorf("缺少签名参数: %v", q)
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["code"] != "authcode123" {
			t.Errorf("code = %v", body["code"])
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "at-new",
			"refresh_token": "rt-new",
			"expire_in":     14400,
		})
	})

	tok, err := c.GetAccessToken(context.Background(), "authcode123", 789)
	if err != nil {
		t.Fatalf("GetAccessToken 失败: %v", err)
	}
	if tok.AccessToken != "at-new" || tok.RefreshToken != "rt-new" || tok.ExpireIn != 14400 {
		t.Errorf("token 响应不匹配: %+v", tok)
	}
}

func TestRefreshAccessTokenError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   "error_auth",
			"message": "Invalid refresh_token",
		})
	})

	_, err := c.RefreshAccessToken(context.Background(), "rt-stale", 789)
	if err == nil {
		t.Fatal("过期 refresh token 应返回错误")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("应返回 *APIError, got %T", err)
	}
	if apiErr.Code != "error_auth" {
		t.Errorf("错误码 = %s", apiErr.Code)
	}
}

func TestUploadImage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathUploadImage {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("access_token") != "at-1" || q.Get("shop_id") != "789" {
			t.Errorf("店铺级参数缺失: %v", q)
		}
		f, hdr, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("multipart 缺少 image 字段: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != "fake-jpeg-bytes" || hdr.Filename != "main.jpg" {
			t.Errorf("文件内容/文件名不匹配: %s %s", hdr.Filename, data)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"response": map[string]interface{}{
				"image_info": map[string]interface{}{"image_id": "IMG-abc"},
			},
		})
	})

	id, err := c.UploadImage(context.Background(), "at-1", 789, "main.jpg", []byte("fake-jpeg-bytes"))
	if err != nil {
		t.Fatalf("UploadImage 失败: %v", err)
	}
	if id != "IMG-abc" {
		t.Errorf("image_id = %s", id)
	}
}

func TestAddItem(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req AddItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("请求体解析失败: %v", err)
		}
		if req.ItemName != "Wireless Mouse" || req.OriginalPrice != 89.90 {
			t.Errorf("商品字段不匹配: %+v", req)
		}
		if req.ItemStatus != "NORMAL" {
			t.Errorf("item_status = %s", req.ItemStatus)
		}
		if len(req.Image.ImageIDList) != 2 {
			t.Errorf("image_id_list = %v", req.Image.ImageIDList)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"response": map[string]interface{}{"item_id": 555},
		})
	})

	itemID, err := c.AddItem(context.Background(), "at-1", 789, &AddItemRequest{
		ItemName:      "Wireless Mouse",
		OriginalPrice: 89.90,
		ItemStatus:    "NORMAL",
		Image:         ImageInfo{ImageIDList: []string{"IMG1", "IMG2"}},
	})
	if err != nil {
		t.Fatalf("AddItem 失败: %v", err)
	}
	if itemID != 555 {
		t.Errorf("item_id = %d", itemID)
	}
}

func TestAddItemBusinessError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   "product.error_param",
			"message": "Invalid category_id",
		})
	})

	_, err := c.AddItem(context.Background(), "at-1", 789, &AddItemRequest{ItemName: "x"})
	if err == nil {
		t.Fatal("业务错误应返回 error")
	}
	if !strings.Contains(err.Error(), "Invalid category_id") {
		t.Errorf("错误信息应包含接口 message: %v", err)
	}
}
