package controller

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopee_erp_v1_202608/internal/api/dto"
	"shopee_erp_v1_202608/internal/service"
)

type ProductController struct {
	productSvc *service.ProductService
}

func NewProductController(productSvc *service.ProductService) *ProductController {
	return &ProductController{productSvc: productSvc}
}

// List 商品列表
// @Summary 商品列表
// @Description 分页查询商品，支持关键词、品牌、类目筛选
// @Tags Product (商品管理)
// @Produce json
// @Param keyword query string false "名称/SKU关键词"
// @Param brand query string false "品牌"
// @Param category query string false "类目"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} map[string]interface{} "商品列表"
// @Router /api/v1/products [get]
func (c *ProductController) List(ctx *gin.Context) {
	var req dto.ProductListReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	list, total, err := c.productSvc.List(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data":      list,
		"total":     total,
		"page":      req.Page,
		"page_size": req.PageSize,
	})
}

// Get 商品详情
// @Summary 商品详情
// @Tags Product (商品管理)
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductResp "商品详情"
// @Failure 404 {object} map[string]string "商品不存在"
// @Router /api/v1/products/{id} [get]
func (c *ProductController) Get(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的商品ID"})
		return
	}

	resp, err := c.productSvc.Get(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Create 创建商品
// @Summary 创建商品
// @Tags Product (商品管理)
// @Accept json
// @Produce json
// @Param request body dto.ProductCreateReq true "商品参数"
// @Success 200 {object} dto.ProductResp "创建成功"
// @Failure 400 {object} map[string]string "参数错误"
// @Router /api/v1/products [post]
func (c *ProductController) Create(ctx *gin.Context) {
	var req dto.ProductCreateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.productSvc.Create(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Update 更新商品
// @Summary 更新商品
// @Description 只更新请求里出现的字段
// @Tags Product (商品管理)
// @Accept json
// @Produce json
// @Param id path int true "商品ID"
// @Param request body dto.ProductUpdateReq true "更新参数"
// @Success 200 {object} dto.ProductResp "更新成功"
// @Failure 404 {object} map[string]string "商品不存在"
// @Router /api/v1/products/{id} [put]
func (c *ProductController) Update(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的商品ID"})
		return
	}

	var req dto.ProductUpdateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.productSvc.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		if err == service.ErrProductNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// Delete 删除商品
// @Summary 删除商品
// @Tags Product (商品管理)
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {object} map[string]string "{"message": "删除成功"}"
// @Failure 404 {object} map[string]string "商品不存在"
// @Router /api/v1/products/{id} [delete]
func (c *ProductController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的商品ID"})
		return
	}

	if err := c.productSvc.Delete(ctx.Request.Context(), id); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// UploadMedia 上传商品媒体
// @Summary 上传商品媒体
// @Description multipart 上传图片/视频，字段名 file
// @Tags Product (商品管理)
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "商品ID"
// @Param file formData file true "媒体文件"
// @Success 200 {object} dto.MediaResp "上传成功"
// @Failure 400 {object} map[string]string "参数错误"
// @Router /api/v1/products/{id}/media [post]
func (c *ProductController) UploadMedia(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的商品ID"})
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少 file 字段"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "读取文件失败"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "读取文件失败"})
		return
	}

	resp, err := c.productSvc.UploadMedia(ctx.Request.Context(), id, fileHeader, data)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// DeleteMedia 删除商品媒体
// @Summary 删除商品媒体
// @Tags Product (商品管理)
// @Produce json
// @Param id path int true "商品ID"
// @Param media_id path int true "媒体ID"
// @Success 200 {object} map[string]string "{"message": "删除成功"}"
// @Router /api/v1/products/{id}/media/{media_id} [delete]
func (c *ProductController) DeleteMedia(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的商品ID"})
		return
	}
	mediaID, err := strconv.ParseInt(ctx.Param("media_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的媒体ID"})
		return
	}

	if err := c.productSvc.DeleteMedia(ctx.Request.Context(), id, mediaID); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// ReorderMedia 调整媒体顺序
// @Summary 调整媒体顺序
// @Description 按给定 ID 顺序重排媒体，导出 listing 时按此顺序取图
// @Tags Product (商品管理)
// @Accept json
// @Produce json
// @Param id path int true "商品ID"
// @Param request body dto.MediaReorderReq true "排序参数"
// @Success 200 {object} map[string]string "{"message": "排序成功"}"
// @Router /api/v1/products/{id}/media/reorder [put]
func (c *ProductController) ReorderMedia(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的商品ID"})
		return
	}

	var req dto.MediaReorderReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	if err := c.productSvc.ReorderMedia(ctx.Request.Context(), id, &req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "排序成功"})
}
