package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"shopee_erp_v1_202608/internal/api/dto"
	"shopee_erp_v1_202608/internal/middleware"
	"shopee_erp_v1_202608/internal/model"
	"shopee_erp_v1_202608/internal/repository"
	"shopee_erp_v1_202608/pkg/shopee"
	"shopee_erp_v1_202608/pkg/utils"
)

// 过期判定提前量，离过期还有这么久就开始刷新
const tokenRefreshSkew = 10 * time.Minute

// 授权回调没有 state 参数，发起授权的用户先存缓存
const pendingUserCacheKey = "shopee:pending_connect_user"

// ==================== IntegrationService 市场集成服务 ====================

// IntegrationService Shopee 授权生命周期管理
// 负责授权地址、回调换 token、状态查询、断开和 token 刷新
type IntegrationService struct {
	api      *shopee.Client
	connRepo repository.ConnectionRepository

	// 按 shop_id 串行化刷新，避免并发刷新把一次性 refresh token 用废
	refreshMu sync.Map // shopID -> *sync.Mutex
}

// NewIntegrationService 创建集成服务
func NewIntegrationService(api *shopee.Client, connRepo repository.ConnectionRepository) *IntegrationService {
	return &IntegrationService{
		api:      api,
		connRepo: connRepo,
	}
}

// ==================== 授权流程 ====================

// AuthURL 生成授权地址
// 发起人先记到缓存，回调时补上归属
func (s *IntegrationService) AuthURL(ctx context.Context, userID int64) string {
	utils.SetCache(pendingUserCacheKey, strconv.FormatInt(userID, 10))
	return s.api.AuthURL()
}

// HandleCallback 处理授权回调，用 code 换 token 并落库
func (s *IntegrationService) HandleCallback(ctx context.Context, code string, shopID int64) error {
	if code == "" || shopID == 0 {
		return ErrInvalidCallback
	}

	tok, err := s.api.GetAccessToken(ctx, code, shopID)
	if err != nil {
		return fmt.Errorf("授权码换取 token 失败: %w", err)
	}

	var userID int64
	if v, ok := utils.GetCache(pendingUserCacheKey); ok {
		userID, _ = strconv.ParseInt(v, 10, 64)
		utils.DeleteCache(pendingUserCacheKey)
	}

	conn := &model.ShopConnection{
		Marketplace:  model.MarketplaceShopee,
		ShopID:       shopID,
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpireIn:     tok.ExpireIn,
		ExpiresAt:    time.Now().Add(time.Duration(tok.ExpireIn) * time.Second),
	}
	if err := s.connRepo.Upsert(ctx, conn); err != nil {
		// token 已经换到手，落库失败只告警，授权流程照常算成功
		log.Printf("[Integration] 店铺连接落库失败 shop_id=%d: %v", shopID, err)
	}

	log.Printf("[Integration] Shopee 店铺连接成功 shop_id=%d", shopID)
	return nil
}

// Status 查询当前用户的连接状态，响应里永远不带 token
func (s *IntegrationService) Status(ctx context.Context) *dto.IntegrationStatusResp {
	resp := &dto.IntegrationStatusResp{
		Marketplace: string(model.MarketplaceShopee),
	}

	conn, err := s.connRepo.GetLatest(ctx, model.MarketplaceShopee, middleware.GetAuditUserID(ctx))
	if err != nil || !conn.Connected() {
		return resp
	}

	resp.Connected = true
	resp.ShopID = conn.ShopID
	resp.ShopName = conn.ShopName
	expiresAt := conn.ExpiresAt
	resp.ExpiresAt = &expiresAt
	connectedAt := conn.CreatedAt
	resp.ConnectedAt = &connectedAt
	return resp
}

// Disconnect 断开连接，删除全部 Shopee 店铺授权
func (s *IntegrationService) Disconnect(ctx context.Context) (*dto.DisconnectResp, error) {
	removed, err := s.connRepo.DeleteByMarketplace(ctx, model.MarketplaceShopee)
	if err != nil {
		return nil, err
	}
	return &dto.DisconnectResp{
		Disconnected: true,
		Removed:      removed,
	}, nil
}

// ==================== Token 管理 ====================

// ActiveConnection 返回一个 token 可用的店铺连接
// 快过期时就地刷新，实现 shopee adapter 的 TokenSource
func (s *IntegrationService) ActiveConnection(ctx context.Context, marketplace model.MarketplaceType) (*model.ShopConnection, error) {
	if marketplace != model.MarketplaceShopee {
		return nil, fmt.Errorf("不支持的市场: %s", marketplace)
	}

	// 只用发起操作的用户自己连的店铺
	conn, err := s.connRepo.GetLatest(ctx, model.MarketplaceShopee, middleware.GetAuditUserID(ctx))
	if err != nil {
		return nil, ErrNotConnected
	}
	if !conn.Connected() {
		return nil, ErrNotConnected
	}

	if time.Until(conn.ExpiresAt) > tokenRefreshSkew {
		return conn, nil
	}
	return s.refreshConnection(ctx, conn)
}

// refreshConnection 刷新单个连接的 token
// 同一店铺的刷新串行执行，Shopee 的 refresh token 是一次性的
func (s *IntegrationService) refreshConnection(ctx context.Context, conn *model.ShopConnection) (*model.ShopConnection, error) {
	muVal, _ := s.refreshMu.LoadOrStore(conn.ShopID, &sync.Mutex{})
	mu := muVal.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	// 拿到锁后重读，可能别的请求已经刷新过了
	fresh, err := s.connRepo.GetByShop(ctx, conn.Marketplace, conn.ShopID)
	if err == nil && time.Until(fresh.ExpiresAt) > tokenRefreshSkew {
		return fresh, nil
	}
	if err == nil {
		conn = fresh
	}

	if conn.RefreshToken == "" {
		return nil, ErrNotConnected
	}

	tok, err := s.api.RefreshAccessToken(ctx, conn.RefreshToken, conn.ShopID)
	if err != nil {
		return nil, fmt.Errorf("刷新 token 失败: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(tok.ExpireIn) * time.Second)
	if err := s.connRepo.UpdateToken(ctx, conn.ID, tok.AccessToken, tok.RefreshToken, tok.ExpireIn, expiresAt); err != nil {
		// 新 token 已经生效，落库失败只告警，本次调用继续用新 token
		log.Printf("[Integration] token 落库失败 shop_id=%d: %v", conn.ShopID, err)
	}

	conn.AccessToken = tok.AccessToken
	conn.RefreshToken = tok.RefreshToken
	conn.ExpireIn = tok.ExpireIn
	conn.ExpiresAt = expiresAt
	return conn, nil
}

// Refresh 手动刷新，shopID 为 0 时刷新最近连接的店铺
// token 还很新鲜时不真正调 Shopee，refresh token 一次性，省着用
func (s *IntegrationService) Refresh(ctx context.Context, shopID int64) (*dto.IntegrationStatusResp, error) {
	var (
		conn *model.ShopConnection
		err  error
	)
	if shopID == 0 {
		conn, err = s.connRepo.GetLatest(ctx, model.MarketplaceShopee, middleware.GetAuditUserID(ctx))
	} else {
		conn, err = s.connRepo.GetByShop(ctx, model.MarketplaceShopee, shopID)
	}
	if err != nil {
		return nil, ErrNotConnected
	}
	if _, err := s.refreshConnection(ctx, conn); err != nil {
		return nil, err
	}
	return s.Status(ctx), nil
}

// RefreshShop 刷新指定店铺的 token，定时任务按店调用
func (s *IntegrationService) RefreshShop(ctx context.Context, shopID int64) error {
	conn, err := s.connRepo.GetByShop(ctx, model.MarketplaceShopee, shopID)
	if err != nil {
		return ErrNotConnected
	}
	_, err = s.refreshConnection(ctx, conn)
	return err
}

// ==================== 错误定义 ====================

var (
	ErrNotConnected    = errors.New("Shopee 店铺未连接")
	ErrInvalidCallback = errors.New("授权回调参数缺失")
)
