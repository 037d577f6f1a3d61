package marketplace

import (
	"context"
	"encoding/json"
	"fmt"

	"shopee_erp_v1_202608/internal/api/dto"
	"shopee_erp_v1_202608/internal/model"
)

// Adapter 市场适配器接口
// 每个市场 (Shopee / Mercado Livre / ...) 实现一个
// Options 为各市场私有的导出参数，adapter 自己解析和校验
type Adapter interface {
	// Type 市场类型标识，注册表的 key
	Type() model.MarketplaceType
	// DisplayName 给前端展示的名称
	DisplayName() string
	// Connected 当前是否有可用的店铺授权
	Connected(ctx context.Context) bool
	// FormFields 导出表单字段描述，前端据此渲染
	FormFields() []dto.ExportFormField
	// ValidateOptions 校验导出参数，一次性返回所有字段错误
	ValidateOptions(raw json.RawMessage) dto.ValidationResult
	// Export 执行导出，所有失败都收敛到 ExportResult 里返回
	Export(ctx context.Context, product *model.Product, raw json.RawMessage) *dto.ExportResult
}

// Registry 适配器注册表
// 构造时一次性注入全部 adapter，之后只读，没有全局状态
type Registry struct {
	adapters map[model.MarketplaceType]Adapter
	order    []model.MarketplaceType
}

// NewRegistry 创建注册表
// 重复注册同一市场类型直接报错，属于接线错误
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{
		adapters: make(map[model.MarketplaceType]Adapter, len(adapters)),
	}
	for _, a := range adapters {
		t := a.Type()
		if _, exists := r.adapters[t]; exists {
			return nil, fmt.Errorf("市场适配器重复注册: %s", t)
		}
		r.adapters[t] = a
		r.order = append(r.order, t)
	}
	return r, nil
}

// Get 按市场类型查找 adapter
func (r *Registry) Get(t model.MarketplaceType) (Adapter, bool) {
	a, ok := r.adapters[t]
	return a, ok
}

// List 按注册顺序返回全部 adapter
func (r *Registry) List() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.adapters[t])
	}
	return out
}
