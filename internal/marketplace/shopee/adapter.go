package shopee

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"

	"gorm.io/datatypes"

	"shopee_erp_v1_202608/internal/api/dto"
	"shopee_erp_v1_202608/internal/model"
	"shopee_erp_v1_202608/internal/repository"
	shopeeapi "shopee_erp_v1_202608/pkg/shopee"
)

// 导出参数没给时的兜底值
const (
	defaultWeight    = 0.1 // kg
	defaultDimension = 10  // cm
	itemStatusNormal = "NORMAL"
)

// TokenSource 提供一个可用的店铺连接
// 由集成服务实现，token 过期时在内部完成刷新
type TokenSource interface {
	ActiveConnection(ctx context.Context, marketplace model.MarketplaceType) (*model.ShopConnection, error)
}

// ExportOptions Shopee 导出参数
// category_id 和 logistics 没有合理默认值，必填
type ExportOptions struct {
	CategoryID int64                 `json:"category_id"`
	Attributes []shopeeapi.Attribute `json:"attributes"`
	Logistics  []LogisticChannel     `json:"logistics"`
	Weight     *float64              `json:"weight"`
	Length     *float64              `json:"package_length"`
	Width      *float64              `json:"package_width"`
	Height     *float64              `json:"package_height"`
	ItemStatus string                `json:"item_status"`
}

// LogisticChannel 导出时勾选的物流渠道，只有 enabled 的会进 add_item
type LogisticChannel struct {
	LogisticID   int64    `json:"logistic_id"`
	LogisticName string   `json:"logistic_name"`
	Enabled      bool     `json:"enabled"`
	IsFree       bool     `json:"is_free"`
	ShippingFee  *float64 `json:"shipping_fee"`
	SizeID       *int64   `json:"size_id"`
}

// enabledChannels 过滤出启用的物流渠道
func enabledChannels(channels []LogisticChannel) []LogisticChannel {
	out := make([]LogisticChannel, 0, len(channels))
	for _, ch := range channels {
		if ch.Enabled {
			out = append(out, ch)
		}
	}
	return out
}

// Adapter Shopee 市场适配器
type Adapter struct {
	api      *shopeeapi.Client
	uploader *Uploader
	tokens   TokenSource
	links    repository.LinkRepository
}

func NewAdapter(api *shopeeapi.Client, uploader *Uploader, tokens TokenSource, links repository.LinkRepository) *Adapter {
	return &Adapter{
		api:      api,
		uploader: uploader,
		tokens:   tokens,
		links:    links,
	}
}

func (a *Adapter) Type() model.MarketplaceType {
	return model.MarketplaceShopee
}

func (a *Adapter) DisplayName() string {
	return "Shopee"
}

func (a *Adapter) Connected(ctx context.Context) bool {
	conn, err := a.tokens.ActiveConnection(ctx, model.MarketplaceShopee)
	return err == nil && conn.Connected()
}

func (a *Adapter) FormFields() []dto.ExportFormField {
	return []dto.ExportFormField{
		{Name: "category_id", Label: "Shopee 类目ID", Type: "number", Required: true},
		{Name: "logistics", Label: "物流渠道", Type: "list", Required: true, Hint: "至少启用一个渠道"},
		{Name: "attributes", Label: "类目属性", Type: "list", Hint: "按 Shopee 类目要求填写"},
		{Name: "weight", Label: "重量(kg)", Type: "number", Hint: "不填时取商品档案重量"},
		{Name: "package_length", Label: "包装长(cm)", Type: "number"},
		{Name: "package_width", Label: "包装宽(cm)", Type: "number"},
		{Name: "package_height", Label: "包装高(cm)", Type: "number"},
		{Name: "item_status", Label: "上架状态", Type: "select", Options: []string{"NORMAL", "UNLIST"}},
	}
}

// ValidateOptions 校验导出参数
// 所有字段错误一次性返回，方便前端整体标红
func (a *Adapter) ValidateOptions(raw json.RawMessage) dto.ValidationResult {
	errs := map[string]string{}

	var opts ExportOptions
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &opts); err != nil {
			return dto.ValidationResult{
				Valid:  false,
				Errors: map[string]string{"options": "参数格式不是合法 JSON 对象"},
			}
		}
	}

	if opts.CategoryID <= 0 {
		errs["category_id"] = "必须指定 Shopee 类目ID"
	}
	if len(opts.Logistics) == 0 {
		errs["logistics"] = "至少配置一个物流渠道"
	} else if len(enabledChannels(opts.Logistics)) == 0 {
		errs["logistics"] = "至少启用一个物流渠道"
	}
	if opts.Weight != nil && *opts.Weight <= 0 {
		errs["weight"] = "重量必须大于 0"
	}
	if opts.ItemStatus != "" && opts.ItemStatus != "NORMAL" && opts.ItemStatus != "UNLIST" {
		errs["item_status"] = "上架状态只能是 NORMAL 或 UNLIST"
	}

	if len(errs) > 0 {
		return dto.ValidationResult{Valid: false, Errors: errs}
	}
	return dto.ValidationResult{Valid: true}
}

// Export 把商品导出成 Shopee listing
//
// 流程:
//  1. 校验参数、取可用店铺连接
//  2. 逐张上传图片 (单张失败跳过)
//  3. 一张都没成功则硬停，不调用 add_item
//  4. add_item 成功后写 SYNCED 关联记录
//
// 任何环节失败都收敛到 ExportResult，不向上抛错
func (a *Adapter) Export(ctx context.Context, product *model.Product, raw json.RawMessage) (result *dto.ExportResult) {
	result = &dto.ExportResult{
		Marketplace: string(model.MarketplaceShopee),
		ProductID:   product.ID,
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ShopeeAdapter] 导出 panic product=%d: %v", product.ID, r)
			result.Success = false
			result.Errors = append(result.Errors, fmt.Sprintf("导出异常中断: %v", r))
		}
	}()

	// 1. 参数校验，字段错误展开成消息列表
	validation := a.ValidateOptions(raw)
	if !validation.Valid {
		result.Errors = flattenFieldErrors(validation.Errors)
		return result
	}
	var opts ExportOptions
	_ = json.Unmarshal(raw, &opts)

	// 2. 店铺连接
	conn, err := a.tokens.ActiveConnection(ctx, model.MarketplaceShopee)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Shopee 店铺未连接: %v", err))
		return result
	}

	// 3. 上传图片
	result.Images = a.uploader.UploadAll(ctx, conn.AccessToken, conn.ShopID, product.Media)
	imageIDs := SuccessIDs(result.Images)
	if len(imageIDs) == 0 {
		// listing 不允许无图，硬停
		result.Errors = append(result.Errors, "没有可用的商品图片，已中止导出")
		return result
	}

	// 4. 创建 listing
	req := a.buildAddItemRequest(product, &opts, imageIDs)
	itemID, err := a.api.AddItem(ctx, conn.AccessToken, conn.ShopID, req)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("创建 Shopee 商品失败: %v", err))
		a.saveLink(ctx, product.ID, conn.ShopID, "", model.LinkStatusFailed, req)
		return result
	}

	result.Success = true
	result.RemoteItemID = fmt.Sprintf("%d", itemID)
	result.Message = "商品已成功导出到 Shopee"

	// 5. 关联记录
	a.saveLink(ctx, product.ID, conn.ShopID, result.RemoteItemID, model.LinkStatusSynced, req)

	log.Printf("[ShopeeAdapter] 导出成功 product=%d item_id=%d images=%d/%d",
		product.ID, itemID, len(imageIDs), len(result.Images))
	return result
}

// buildAddItemRequest 组装 add_item 请求
// 兜底顺序: 导出参数 > 商品档案 > 固定默认值
func (a *Adapter) buildAddItemRequest(product *model.Product, opts *ExportOptions, imageIDs []string) *shopeeapi.AddItemRequest {
	description := product.Description
	if description == "" {
		description = product.Name
	}

	weight := defaultWeight
	if opts.Weight != nil {
		weight = *opts.Weight
	} else if product.Weight > 0 {
		weight = product.Weight
	}

	itemStatus := opts.ItemStatus
	if itemStatus == "" {
		itemStatus = itemStatusNormal
	}

	price, _ := product.Price.Float64()

	// 只发启用的渠道，名称/运费/尺码原样透传
	channels := enabledChannels(opts.Logistics)
	logisticInfo := make([]shopeeapi.Logistic, 0, len(channels))
	for _, ch := range channels {
		logisticInfo = append(logisticInfo, shopeeapi.Logistic{
			LogisticID:   ch.LogisticID,
			LogisticName: ch.LogisticName,
			Enabled:      true,
			IsFree:       ch.IsFree,
			ShippingFee:  ch.ShippingFee,
			SizeID:       ch.SizeID,
		})
	}

	// attribute_list 允许为空但必须存在
	attributes := opts.Attributes
	if attributes == nil {
		attributes = []shopeeapi.Attribute{}
	}

	return &shopeeapi.AddItemRequest{
		OriginalPrice: price,
		Description:   description,
		ItemName:      product.Name,
		ItemStatus:    itemStatus,
		Weight:        weight,
		Dimension: shopeeapi.Dimension{
			PackageLength: pickDimension(opts.Length, product.Length),
			PackageWidth:  pickDimension(opts.Width, product.Width),
			PackageHeight: pickDimension(opts.Height, product.Height),
		},
		LogisticInfo:  logisticInfo,
		CategoryID:    opts.CategoryID,
		AttributeList: attributes,
		Image:         shopeeapi.ImageInfo{ImageIDList: imageIDs},
		// 没有品牌映射时 Shopee 要求显式传 No Brand
		Brand: shopeeapi.Brand{
			BrandID:           0,
			OriginalBrandName: "No Brand",
		},
		ItemSKU: product.SKU,
		SellerStock: []shopeeapi.Stock{
			{Stock: product.Stock},
		},
	}
}

// flattenFieldErrors 字段错误按字段名排序展开成消息列表
func flattenFieldErrors(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", k, fields[k]))
	}
	return msgs
}

// pickDimension 尺寸兜底: 导出参数 > 商品档案 > 10cm，四舍五入取整
func pickDimension(fromOpts *float64, fromProduct float64) int {
	v := float64(defaultDimension)
	if fromOpts != nil && *fromOpts > 0 {
		v = *fromOpts
	} else if fromProduct > 0 {
		v = fromProduct
	}
	return int(math.Round(v))
}

func (a *Adapter) saveLink(ctx context.Context, productID, shopID int64, remoteItemID, status string, req *shopeeapi.AddItemRequest) {
	payload, _ := json.Marshal(req)
	link := &model.MarketplaceLink{
		ProductID:     productID,
		Marketplace:   model.MarketplaceShopee,
		ShopID:        shopID,
		RemoteItemID:  remoteItemID,
		Status:        status,
		ExportPayload: datatypes.JSON(payload),
	}
	if err := a.links.Upsert(ctx, link); err != nil {
		// 关联记录写失败不影响导出结果，listing 已经在市场侧创建
		log.Printf("[ShopeeAdapter] 写关联记录失败 product=%d: %v", productID, err)
	}
}
