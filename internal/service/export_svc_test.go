package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"shopee_erp_v1_202608/internal/api/dto"
	"shopee_erp_v1_202608/internal/marketplace"
	"shopee_erp_v1_202608/internal/middleware"
	"shopee_erp_v1_202608/internal/model"
	"shopee_erp_v1_202608/internal/repository"
)

// ==================== 测试桩 ====================

type stubAdapter struct {
	exportCalls int
	result      *dto.ExportResult
	validation  dto.ValidationResult
}

func (a *stubAdapter) Type() model.MarketplaceType { return model.MarketplaceShopee }
func (a *stubAdapter) DisplayName() string         { return "Shopee" }
func (a *stubAdapter) Connected(context.Context) bool {
	return true
}
func (a *stubAdapter) FormFields() []dto.ExportFormField {
	return []dto.ExportFormField{{Name: "category_id", Required: true}}
}
func (a *stubAdapter) ValidateOptions(json.RawMessage) dto.ValidationResult {
	return a.validation
}
func (a *stubAdapter) Export(ctx context.Context, p *model.Product, raw json.RawMessage) *dto.ExportResult {
	a.exportCalls++
	return a.result
}

type stubProductRepo struct {
	repository.ProductRepository
	products map[int64]*model.Product
}

func (r *stubProductRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, errors.New("record not found")
}

func (r *stubProductRepo) GetByIDWithMedia(ctx context.Context, id int64) (*model.Product, error) {
	return r.GetByID(ctx, id)
}

type stubLinkRepo struct {
	repository.LinkRepository
	links []model.MarketplaceLink
}

func (r *stubLinkRepo) ListByProduct(ctx context.Context, productID int64) ([]model.MarketplaceLink, error) {
	return r.links, nil
}

func newExportService(t *testing.T, adapter marketplace.Adapter, products map[int64]*model.Product) *ExportService {
	t.Helper()
	registry, err := marketplace.NewRegistry(adapter)
	if err != nil {
		t.Fatalf("构建注册表失败: %v", err)
	}
	return NewExportService(
		registry,
		&stubProductRepo{products: products},
		&stubLinkRepo{},
		&middleware.ExportRateLimiter{},
	)
}

// ==================== 测试 ====================

func TestExportUnknownMarketplace(t *testing.T) {
	svc := newExportService(t, &stubAdapter{}, nil)

	result := svc.Export(context.Background(), &dto.ExportReq{
		ProductID:   1,
		Marketplace: "ebay",
	})
	if result.Success {
		t.Fatal("未知市场应导出失败")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "未知市场") {
		t.Errorf("错误信息 = %v", result.Errors)
	}
}

func TestExportProductNotFound(t *testing.T) {
	adapter := &stubAdapter{}
	svc := newExportService(t, adapter, map[int64]*model.Product{})

	result := svc.Export(context.Background(), &dto.ExportReq{
		ProductID:   42,
		Marketplace: "shopee",
	})
	if result.Success {
		t.Fatal("商品不存在应导出失败")
	}
	if adapter.exportCalls != 0 {
		t.Error("商品不存在时不应调用 adapter")
	}
}

func TestExportDelegatesToAdapter(t *testing.T) {
	adapter := &stubAdapter{
		result: &dto.ExportResult{
			Success:      true,
			Marketplace:  "shopee",
			ProductID:    23,
			RemoteItemID: "555",
		},
	}
	svc := newExportService(t, adapter, map[int64]*model.Product{
		23: {BaseModel: model.BaseModel{ID: 23}, Name: "Wireless Mouse"},
	})

	result := svc.Export(context.Background(), &dto.ExportReq{
		ProductID:   23,
		Marketplace: "shopee",
	})
	if !result.Success || result.RemoteItemID != "555" {
		t.Errorf("应透传 adapter 结果: %+v", result)
	}
	if adapter.exportCalls != 1 {
		t.Errorf("adapter 调用次数 = %d", adapter.exportCalls)
	}
}

func TestExportRateLimited(t *testing.T) {
	adapter := &stubAdapter{
		result: &dto.ExportResult{Success: true, Marketplace: "shopee", ProductID: 23},
	}
	svc := newExportService(t, adapter, map[int64]*model.Product{
		23: {BaseModel: model.BaseModel{ID: 23}},
	})
	req := &dto.ExportReq{ProductID: 23, Marketplace: "shopee"}

	if result := svc.Export(context.Background(), req); !result.Success {
		t.Fatalf("首次导出应成功: %v", result.Errors)
	}

	// 冷却时间内再导同一商品应被拦截
	result := svc.Export(context.Background(), req)
	if result.Success {
		t.Fatal("冷却期内应被限流")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "频繁") {
		t.Errorf("错误信息 = %v", result.Errors)
	}
	if adapter.exportCalls != 1 {
		t.Errorf("限流时不应再调用 adapter, calls = %d", adapter.exportCalls)
	}
}

func TestExportFailureReleasesRateLimit(t *testing.T) {
	adapter := &stubAdapter{
		result: &dto.ExportResult{Success: false, Errors: []string{"上游挂了"}},
	}
	svc := newExportService(t, adapter, map[int64]*model.Product{
		23: {BaseModel: model.BaseModel{ID: 23}},
	})
	req := &dto.ExportReq{ProductID: 23, Marketplace: "shopee"}

	if result := svc.Export(context.Background(), req); result.Success {
		t.Fatal("应导出失败")
	}

	// 失败后立即重试不应被限流
	adapter.result = &dto.ExportResult{Success: true}
	if result := svc.Export(context.Background(), req); !result.Success {
		t.Fatalf("失败后重试应放行: %v", result.Errors)
	}
	if adapter.exportCalls != 2 {
		t.Errorf("adapter 调用次数 = %d", adapter.exportCalls)
	}
}

func TestValidateUnknownMarketplace(t *testing.T) {
	svc := newExportService(t, &stubAdapter{}, nil)

	_, err := svc.Validate(context.Background(), &dto.ValidateReq{Marketplace: "ebay"})
	if !errors.Is(err, ErrUnknownMarketplace) {
		t.Errorf("err = %v", err)
	}
}

func TestValidateDelegates(t *testing.T) {
	adapter := &stubAdapter{
		validation: dto.ValidationResult{
			Valid:  false,
			Errors: map[string]string{"category_id": "必填"},
		},
	}
	svc := newExportService(t, adapter, nil)

	result, err := svc.Validate(context.Background(), &dto.ValidateReq{Marketplace: "shopee"})
	if err != nil {
		t.Fatalf("Validate 失败: %v", err)
	}
	if result.Valid || result.Errors["category_id"] == "" {
		t.Errorf("应透传 adapter 校验结果: %+v", result)
	}
}

func TestMarketplacesListing(t *testing.T) {
	svc := newExportService(t, &stubAdapter{}, nil)

	infos := svc.Marketplaces(context.Background())
	if len(infos) != 1 {
		t.Fatalf("len = %d", len(infos))
	}
	if infos[0].Type != "shopee" || !infos[0].Connected || len(infos[0].Fields) != 1 {
		t.Errorf("市场信息不匹配: %+v", infos[0])
	}
}
