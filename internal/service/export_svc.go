package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"shopee_erp_v1_202608/internal/api/dto"
	"shopee_erp_v1_202608/internal/marketplace"
	"shopee_erp_v1_202608/internal/middleware"
	"shopee_erp_v1_202608/internal/model"
	"shopee_erp_v1_202608/internal/repository"
)

// ==================== ExportService 导出编排服务 ====================

// ExportService 商品导出编排
// 找 adapter、做限流、取商品，剩下的交给各市场 adapter
type ExportService struct {
	registry    *marketplace.Registry
	productRepo repository.ProductRepository
	linkRepo    repository.LinkRepository
	limiter     *middleware.ExportRateLimiter
}

// NewExportService 创建导出服务
func NewExportService(
	registry *marketplace.Registry,
	productRepo repository.ProductRepository,
	linkRepo repository.LinkRepository,
	limiter *middleware.ExportRateLimiter,
) *ExportService {
	return &ExportService{
		registry:    registry,
		productRepo: productRepo,
		linkRepo:    linkRepo,
		limiter:     limiter,
	}
}

// Marketplaces 列出全部可用市场及其表单描述
func (s *ExportService) Marketplaces(ctx context.Context) []dto.MarketplaceInfo {
	adapters := s.registry.List()
	infos := make([]dto.MarketplaceInfo, 0, len(adapters))
	for _, a := range adapters {
		infos = append(infos, dto.MarketplaceInfo{
			Type:      string(a.Type()),
			Name:      a.DisplayName(),
			Connected: a.Connected(ctx),
			Fields:    a.FormFields(),
		})
	}
	return infos
}

// Validate 只校验导出参数，不触发导出
func (s *ExportService) Validate(ctx context.Context, req *dto.ValidateReq) (*dto.ValidationResult, error) {
	adapter, ok := s.registry.Get(model.MarketplaceType(req.Marketplace))
	if !ok {
		return nil, ErrUnknownMarketplace
	}
	result := adapter.ValidateOptions(req.Options)
	return &result, nil
}

// Export 导出商品到指定市场
// 永远返回 ExportResult，编排层的失败也收敛进去
func (s *ExportService) Export(ctx context.Context, req *dto.ExportReq) *dto.ExportResult {
	result := &dto.ExportResult{
		Marketplace: req.Marketplace,
		ProductID:   req.ProductID,
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Export] 导出 panic product=%d marketplace=%s: %v", req.ProductID, req.Marketplace, r)
			result.Success = false
			result.Errors = append(result.Errors, fmt.Sprintf("导出异常中断: %v", r))
		}
	}()

	adapter, ok := s.registry.Get(model.MarketplaceType(req.Marketplace))
	if !ok {
		result.Errors = append(result.Errors, fmt.Sprintf("未知市场: %s", req.Marketplace))
		return result
	}

	// 同一商品同一市场的导出有冷却时间
	key := middleware.ExportKey(req.Marketplace, req.ProductID)
	if check := s.limiter.Check(key, middleware.DefaultExportInterval); !check.Allowed {
		result.Errors = append(result.Errors, fmt.Sprintf("导出过于频繁，请 %d 秒后重试", int(check.RetryAfter.Seconds())+1))
		return result
	}

	product, err := s.productRepo.GetByIDWithMedia(ctx, req.ProductID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("商品不存在: %d", req.ProductID))
		return result
	}

	exported := adapter.Export(ctx, product, req.Options)
	if exported == nil {
		result.Errors = append(result.Errors, "导出返回为空")
		return result
	}

	// 导出失败时放开冷却，允许用户修正参数后立刻重试
	if !exported.Success {
		s.limiter.Reset(key)
	}
	return exported
}

// Links 商品的市场关联记录
func (s *ExportService) Links(ctx context.Context, productID int64) ([]dto.LinkResp, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, ErrProductNotFound
	}

	links, err := s.linkRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	resps := make([]dto.LinkResp, 0, len(links))
	for _, l := range links {
		resps = append(resps, dto.LinkResp{
			ID:           l.ID,
			Marketplace:  string(l.Marketplace),
			ShopID:       l.ShopID,
			RemoteItemID: l.RemoteItemID,
			Status:       l.Status,
			UpdatedAt:    l.UpdatedAt.Format(time.RFC3339),
		})
	}
	return resps, nil
}

// ==================== 错误定义 ====================

var ErrUnknownMarketplace = errors.New("未知的市场类型")
