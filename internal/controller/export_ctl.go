package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopee_erp_v1_202608/internal/api/dto"
	"shopee_erp_v1_202608/internal/service"
)

type ExportController struct {
	exportSvc *service.ExportService
}

func NewExportController(exportSvc *service.ExportService) *ExportController {
	return &ExportController{exportSvc: exportSvc}
}

// Marketplaces 可用市场列表
// @Summary 可用市场列表
// @Description 返回全部已注册市场及其导出表单字段描述
// @Tags Export (市场导出)
// @Produce json
// @Success 200 {array} dto.MarketplaceInfo "市场列表"
// @Router /api/v1/export/marketplaces [get]
func (c *ExportController) Marketplaces(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.exportSvc.Marketplaces(ctx.Request.Context()))
}

// Validate 校验导出参数
// @Summary 校验导出参数
// @Description 只校验参数不触发导出，所有字段错误一次性返回
// @Tags Export (市场导出)
// @Accept json
// @Produce json
// @Param request body dto.ValidateReq true "校验参数"
// @Success 200 {object} dto.ValidationResult "校验结果"
// @Failure 400 {object} map[string]string "市场不存在"
// @Router /api/v1/export/validate [post]
func (c *ExportController) Validate(ctx *gin.Context) {
	var req dto.ValidateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	result, err := c.exportSvc.Validate(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// Export 导出商品到市场
// @Summary 导出商品到市场
// @Description 上传图片并创建 listing，逐张图片的结果在响应里
// @Tags Export (市场导出)
// @Accept json
// @Produce json
// @Param request body dto.ExportReq true "导出参数"
// @Success 200 {object} dto.ExportResult "导出结果"
// @Failure 400 {object} map[string]string "参数错误"
// @Router /api/v1/export [post]
func (c *ExportController) Export(ctx *gin.Context) {
	var req dto.ExportReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	result := c.exportSvc.Export(ctx.Request.Context(), &req)

	// 导出失败也是 200，结果里带错误，前端统一展示
	ctx.JSON(http.StatusOK, result)
}

// Links 商品的市场关联记录
// @Summary 商品的市场关联记录
// @Tags Export (市场导出)
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {array} dto.LinkResp "关联记录"
// @Failure 404 {object} map[string]string "商品不存在"
// @Router /api/v1/products/{id}/links [get]
func (c *ExportController) Links(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的商品ID"})
		return
	}

	links, err := c.exportSvc.Links(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, links)
}
