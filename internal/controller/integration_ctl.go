package controller

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopee_erp_v1_202608/internal/api/dto"
	"shopee_erp_v1_202608/internal/middleware"
	"shopee_erp_v1_202608/internal/service"
)

type IntegrationController struct {
	integrationSvc *service.IntegrationService
	// 授权回调完成后回跳的前端集成页地址
	dashboardURL string
}

func NewIntegrationController(integrationSvc *service.IntegrationService, dashboardURL string) *IntegrationController {
	return &IntegrationController{
		integrationSvc: integrationSvc,
		dashboardURL:   dashboardURL,
	}
}

// AuthURL 生成 Shopee 授权地址
// @Summary 生成 Shopee 授权地址
// @Description 返回带签名的商家授权页地址，前端跳转过去完成授权
// @Tags Integration (市场集成)
// @Produce json
// @Success 200 {object} dto.AuthURLResp "授权地址"
// @Router /api/v1/integrations/shopee/auth [get]
func (c *IntegrationController) AuthURL(ctx *gin.Context) {
	userID := middleware.GetUserID(ctx)
	url := c.integrationSvc.AuthURL(ctx.Request.Context(), userID)
	ctx.JSON(http.StatusOK, dto.AuthURLResp{URL: url})
}

// Callback Shopee 授权回调
// 回调方是浏览器跳转，处理结果通过重定向的 query 参数带回前端
// @Summary Shopee 授权回调
// @Description Shopee 授权完成后跳回这里，携带 code 和 shop_id，处理完重定向回集成页
// @Tags Integration (市场集成)
// @Param code query string true "授权码"
// @Param shop_id query int true "店铺ID"
// @Param error query string false "商家取消授权时的错误标识"
// @Success 302 {string} string "重定向到集成页，成功带 success=true&shop_id=，失败带 error=&message="
// @Router /api/v1/integrations/shopee/callback [get]
func (c *IntegrationController) Callback(ctx *gin.Context) {
	// 商家在授权页取消或授权失败时 Shopee 带 error 参数跳回
	if errParam := ctx.Query("error"); errParam != "" {
		c.redirectDashboard(ctx, url.Values{
			"error":   {"callback_failed"},
			"message": {"授权失败: " + errParam},
		})
		return
	}

	code := ctx.Query("code")
	shopID, _ := strconv.ParseInt(ctx.Query("shop_id"), 10, 64)

	if err := c.integrationSvc.HandleCallback(ctx.Request.Context(), code, shopID); err != nil {
		c.redirectDashboard(ctx, url.Values{
			"error":   {"callback_failed"},
			"message": {err.Error()},
		})
		return
	}

	c.redirectDashboard(ctx, url.Values{
		"success": {"true"},
		"shop_id": {strconv.FormatInt(shopID, 10)},
	})
}

// redirectDashboard 回跳前端集成页，处理结果放在 query 里
func (c *IntegrationController) redirectDashboard(ctx *gin.Context, params url.Values) {
	target, err := url.Parse(c.dashboardURL)
	if err != nil {
		target = &url.URL{Path: "/"}
	}
	q := target.Query()
	for k, vs := range params {
		q.Set(k, vs[0])
	}
	target.RawQuery = q.Encode()
	ctx.Redirect(http.StatusFound, target.String())
}

// Status 连接状态
// @Summary Shopee 连接状态
// @Description 查询当前连接状态，响应不含任何 token
// @Tags Integration (市场集成)
// @Produce json
// @Success 200 {object} dto.IntegrationStatusResp "连接状态"
// @Router /api/v1/integrations/shopee/status [get]
func (c *IntegrationController) Status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.integrationSvc.Status(ctx.Request.Context()))
}

// Refresh 手动刷新 token
// @Summary 手动刷新 Shopee token
// @Description 立即刷新店铺 token，不传 shop_id 时刷新最近连接的店铺
// @Tags Integration (市场集成)
// @Produce json
// @Param shop_id query int false "店铺ID"
// @Success 200 {object} dto.IntegrationStatusResp "刷新后的连接状态"
// @Failure 400 {object} map[string]string "刷新失败"
// @Router /api/v1/integrations/shopee/refresh [post]
func (c *IntegrationController) Refresh(ctx *gin.Context) {
	shopID, _ := strconv.ParseInt(ctx.Query("shop_id"), 10, 64)
	resp, err := c.integrationSvc.Refresh(ctx.Request.Context(), shopID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Disconnect 断开连接
// @Summary 断开 Shopee 连接
// @Description 删除全部 Shopee 店铺授权
// @Tags Integration (市场集成)
// @Produce json
// @Success 200 {object} dto.DisconnectResp "断开结果"
// @Router /api/v1/integrations/shopee/disconnect [post]
func (c *IntegrationController) Disconnect(ctx *gin.Context) {
	resp, err := c.integrationSvc.Disconnect(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
