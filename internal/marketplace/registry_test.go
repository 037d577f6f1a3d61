package marketplace

import (
	"context"
	"encoding/json"
	"testing"

	"shopee_erp_v1_202608/internal/api/dto"
	"shopee_erp_v1_202608/internal/model"
)

type fakeAdapter struct {
	t model.MarketplaceType
}

func (f *fakeAdapter) Type() model.MarketplaceType     { return f.t }
func (f *fakeAdapter) DisplayName() string             { return string(f.t) }
func (f *fakeAdapter) Connected(context.Context) bool  { return false }
func (f *fakeAdapter) FormFields() []dto.ExportFormField { return nil }
func (f *fakeAdapter) ValidateOptions(json.RawMessage) dto.ValidationResult {
	return dto.ValidationResult{Valid: true}
}
func (f *fakeAdapter) Export(context.Context, *model.Product, json.RawMessage) *dto.ExportResult {
	return &dto.ExportResult{Success: true, Marketplace: string(f.t)}
}

func TestRegistryLookup(t *testing.T) {
	r, err := NewRegistry(
		&fakeAdapter{t: model.MarketplaceShopee},
		&fakeAdapter{t: model.MarketplaceMercadoLivre},
	)
	if err != nil {
		t.Fatalf("构建注册表失败: %v", err)
	}

	a, ok := r.Get(model.MarketplaceShopee)
	if !ok || a.Type() != model.MarketplaceShopee {
		t.Errorf("应能查到 shopee adapter")
	}

	if _, ok := r.Get(model.MarketplaceAmazon); ok {
		t.Error("未注册的市场不应命中")
	}
}

func TestRegistryListKeepsOrder(t *testing.T) {
	r, err := NewRegistry(
		&fakeAdapter{t: model.MarketplaceMercadoLivre},
		&fakeAdapter{t: model.MarketplaceShopee},
	)
	if err != nil {
		t.Fatalf("构建注册表失败: %v", err)
	}

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].Type() != model.MarketplaceMercadoLivre || list[1].Type() != model.MarketplaceShopee {
		t.Errorf("应保持注册顺序: %v, %v", list[0].Type(), list[1].Type())
	}
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	_, err := NewRegistry(
		&fakeAdapter{t: model.MarketplaceShopee},
		&fakeAdapter{t: model.MarketplaceShopee},
	)
	if err == nil {
		t.Fatal("重复注册应返回错误")
	}
}
