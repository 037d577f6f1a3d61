package shopee

import (
	"context"
	"fmt"
	"log"
	"path"

	"github.com/go-resty/resty/v2"

	"shopee_erp_v1_202608/internal/api/dto"
	"shopee_erp_v1_202608/internal/model"
	shopeeapi "shopee_erp_v1_202608/pkg/shopee"
)

// Uploader 把商品媒体搬运到 Shopee 媒体空间
// 先从存储侧拉原图，再走 media_space/upload_image
type Uploader struct {
	api  *shopeeapi.Client
	http *resty.Client
}

func NewUploader(api *shopeeapi.Client, http *resty.Client) *Uploader {
	return &Uploader{api: api, http: http}
}

// UploadAll 按顺序上传商品的图片类媒体
//
// 规则:
//  1. 只处理 IMAGE 类型，视频直接跳过 (不算失败)
//  2. 逐张串行上传，单张失败只记录结果，继续下一张
//  3. 返回结果与输入图片顺序一致，listing 主图顺序靠这个保证
func (u *Uploader) UploadAll(ctx context.Context, accessToken string, shopID int64, media []model.ProductMedia) []dto.ImageUploadResult {
	var results []dto.ImageUploadResult

	for _, m := range media {
		if m.Type != model.MediaTypeImage {
			continue
		}

		imageID, err := u.uploadOne(ctx, accessToken, shopID, m)
		if err != nil {
			log.Printf("[ShopeeUploader] 图片上传失败 url=%s: %v", m.URL, err)
			results = append(results, dto.ImageUploadResult{
				URL:     m.URL,
				Success: false,
				Error:   err.Error(),
			})
			continue
		}

		results = append(results, dto.ImageUploadResult{
			URL:     m.URL,
			ImageID: imageID,
			Success: true,
		})
	}

	return results
}

func (u *Uploader) uploadOne(ctx context.Context, accessToken string, shopID int64, m model.ProductMedia) (string, error) {
	// 1. 拉取原图
	resp, err := u.http.R().SetContext(ctx).Get(m.URL)
	if err != nil {
		return "", fmt.Errorf("下载图片失败: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("下载图片失败: HTTP %d", resp.StatusCode())
	}

	filename := m.Filename
	if filename == "" {
		filename = path.Base(m.URL)
	}

	// 2. 推到 Shopee 媒体空间
	return u.api.UploadImage(ctx, accessToken, shopID, filename, resp.Body())
}

// SuccessIDs 抽取上传成功的 image_id，保持顺序
func SuccessIDs(results []dto.ImageUploadResult) []string {
	var ids []string
	for _, r := range results {
		if r.Success && r.ImageID != "" {
			ids = append(ids, r.ImageID)
		}
	}
	return ids
}
