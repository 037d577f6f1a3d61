package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/lib/pq"

	"shopee_erp_v1_202608/internal/api/dto"
	"shopee_erp_v1_202608/internal/model"
	"shopee_erp_v1_202608/internal/repository"
)

// 单个媒体文件大小上限
const maxMediaSize = 20 << 20 // 20MB

// ==================== ProductService 商品服务 ====================

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
	storage     StorageProvider
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, storage StorageProvider) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		storage:     storage,
	}
}

// ==================== 商品 CRUD ====================

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, req *dto.ProductCreateReq) (*dto.ProductResp, error) {
	if _, err := s.productRepo.GetBySKU(ctx, req.SKU); err == nil {
		return nil, ErrSKUTaken
	}

	product := &model.Product{
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		Brand:        req.Brand,
		EAN:          req.EAN,
		Price:        req.Price,
		Stock:        req.Stock,
		Weight:       req.Weight,
		Length:       req.Length,
		Width:        req.Width,
		Height:       req.Height,
		CategoryName: req.Category,
		Tags:         pq.StringArray(req.Tags),
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	resp := s.toProductResp(product)
	return &resp, nil
}

// Get 获取商品详情 (带媒体)
func (s *ProductService) Get(ctx context.Context, id int64) (*dto.ProductResp, error) {
	product, err := s.productRepo.GetByIDWithMedia(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	resp := s.toProductResp(product)
	return &resp, nil
}

// List 商品列表
func (s *ProductService) List(ctx context.Context, req *dto.ProductListReq) ([]dto.ProductResp, int64, error) {
	products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
		Keyword:  req.Keyword,
		Brand:    req.Brand,
		Category: req.Category,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	resps := make([]dto.ProductResp, 0, len(products))
	for i := range products {
		resps = append(resps, s.toProductResp(&products[i]))
	}
	return resps, total, nil
}

// Update 更新商品，只更新给到的字段
func (s *ProductService) Update(ctx context.Context, id int64, req *dto.ProductUpdateReq) (*dto.ProductResp, error) {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		return nil, ErrProductNotFound
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Brand != nil {
		fields["brand"] = *req.Brand
	}
	if req.EAN != nil {
		fields["ean"] = *req.EAN
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Stock != nil {
		fields["stock"] = *req.Stock
	}
	if req.Weight != nil {
		fields["weight"] = *req.Weight
	}
	if req.Length != nil {
		fields["length"] = *req.Length
	}
	if req.Width != nil {
		fields["width"] = *req.Width
	}
	if req.Height != nil {
		fields["height"] = *req.Height
	}
	if req.Category != nil {
		fields["category_name"] = *req.Category
	}
	if req.Tags != nil {
		fields["tags"] = pq.StringArray(req.Tags)
	}

	if len(fields) > 0 {
		if err := s.productRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, id)
}

// Delete 删除商品
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		return ErrProductNotFound
	}
	return s.productRepo.Delete(ctx, id)
}

// ==================== 媒体管理 ====================

// UploadMedia 上传商品媒体文件，落存储后写记录
func (s *ProductService) UploadMedia(ctx context.Context, productID int64, file *multipart.FileHeader, data []byte) (*dto.MediaResp, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, ErrProductNotFound
	}
	if file.Size > maxMediaSize {
		return nil, ErrMediaTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	mediaType := model.MediaTypeImage
	if strings.HasPrefix(contentType, "video/") {
		mediaType = model.MediaTypeVideo
	} else if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedMediaType
	}

	url, err := s.storage.Upload(ctx, data, file.Filename, contentType)
	if err != nil {
		return nil, fmt.Errorf("媒体上传存储失败: %w", err)
	}

	// 新媒体排在末尾
	existing, err := s.productRepo.ListMedia(ctx, productID)
	if err != nil {
		return nil, err
	}

	media := &model.ProductMedia{
		ProductID: productID,
		Type:      mediaType,
		URL:       url,
		PublicID:  url,
		Filename:  file.Filename,
		Size:      file.Size,
		MimeType:  contentType,
		Rank:      len(existing),
	}
	if err := s.productRepo.AddMedia(ctx, media); err != nil {
		return nil, err
	}

	resp := s.toMediaResp(media)
	return &resp, nil
}

// DeleteMedia 删除媒体，存储侧删除失败不阻塞记录删除
func (s *ProductService) DeleteMedia(ctx context.Context, productID, mediaID int64) error {
	media, err := s.productRepo.GetMedia(ctx, mediaID)
	if err != nil || media.ProductID != productID {
		return ErrMediaNotFound
	}

	_ = s.storage.Delete(ctx, media.URL)
	return s.productRepo.DeleteMedia(ctx, mediaID)
}

// ReorderMedia 调整媒体顺序
func (s *ProductService) ReorderMedia(ctx context.Context, productID int64, req *dto.MediaReorderReq) error {
	existing, err := s.productRepo.ListMedia(ctx, productID)
	if err != nil {
		return err
	}
	if len(req.MediaIDs) != len(existing) {
		return ErrMediaOrderMismatch
	}
	known := make(map[int64]bool, len(existing))
	for _, m := range existing {
		known[m.ID] = true
	}
	for _, id := range req.MediaIDs {
		if !known[id] {
			return ErrMediaOrderMismatch
		}
	}
	return s.productRepo.ReorderMedia(ctx, productID, req.MediaIDs)
}

// ==================== 转换 ====================

func (s *ProductService) toProductResp(product *model.Product) dto.ProductResp {
	resp := dto.ProductResp{
		ID:          product.ID,
		SKU:         product.SKU,
		Name:        product.Name,
		Description: product.Description,
		Brand:       product.Brand,
		EAN:         product.EAN,
		Price:       product.Price,
		Stock:       product.Stock,
		Weight:      product.Weight,
		Length:      product.Length,
		Width:       product.Width,
		Height:      product.Height,
		Category:    product.CategoryName,
		Tags:        product.Tags,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	for i := range product.Media {
		resp.Media = append(resp.Media, s.toMediaResp(&product.Media[i]))
	}
	return resp
}

func (s *ProductService) toMediaResp(media *model.ProductMedia) dto.MediaResp {
	return dto.MediaResp{
		ID:           media.ID,
		Type:         media.Type,
		URL:          media.URL,
		ThumbnailURL: media.ThumbnailURL,
		Filename:     media.Filename,
		Size:         media.Size,
		MimeType:     media.MimeType,
		Rank:         media.Rank,
	}
}

// ==================== 错误定义 ====================

var (
	ErrProductNotFound      = errors.New("商品不存在")
	ErrSKUTaken             = errors.New("SKU 已存在")
	ErrMediaNotFound        = errors.New("媒体不存在")
	ErrMediaTooLarge        = errors.New("媒体文件超过大小限制")
	ErrUnsupportedMediaType = errors.New("不支持的媒体类型")
	ErrMediaOrderMismatch   = errors.New("媒体排序列表与现有媒体不一致")
)
