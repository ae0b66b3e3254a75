package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/insurancerating/internal/productconfig/application"
	"github.com/wyfcoding/insurancerating/internal/productconfig/domain"
	rating "github.com/wyfcoding/insurancerating/internal/rating/domain"
	"github.com/wyfcoding/insurancerating/pkg/logger"
	"github.com/wyfcoding/insurancerating/pkg/response"
)

// ConfigHandler 产品配置 HTTP 处理器
type ConfigHandler struct {
	svc *application.ConfigApplicationService
}

// NewConfigHandler 创建 HTTP 处理器实例
func NewConfigHandler(svc *application.ConfigApplicationService) *ConfigHandler {
	return &ConfigHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *ConfigHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/products/:insurer_id/:product_code")
	{
		api.PUT("/rate-tables", h.PutRateTable)
		api.PUT("/clauses", h.PutClauses)
		api.PUT("/fees", h.PutFees)
		api.PUT("/limits", h.PutLimits)
		api.PUT("/dimension-order", h.PutDimensionOrder)
		api.PUT("/base-rate", h.PutBaseRate)
		api.GET("/config", h.GetConfig)
		api.GET("/snapshot", h.GetSnapshot)
		api.GET("/versions", h.ListVersions)
		api.GET("/versions/:version", h.GetVersion)
	}
}

// PutRateTableRequest 费率表写入请求
type PutRateTableRequest struct {
	Table rating.RateTable `json:"table" binding:"required"`
}

// PutRateTable 写入或替换单一维度的费率表
func (h *ConfigHandler) PutRateTable(c *gin.Context) {
	var req PutRateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	config, err := h.svc.PutRateTable(c.Request.Context(), &application.PutRateTableCommand{
		InsurerID:   c.Param("insurer_id"),
		ProductCode: c.Param("product_code"),
		Table:       req.Table,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, versionBody(config))
}

// PutClausesRequest 条款清单写入请求
type PutClausesRequest struct {
	Clauses []rating.ClausePricing `json:"clauses" binding:"required"`
}

// PutClauses 整体替换条款定价清单
func (h *ConfigHandler) PutClauses(c *gin.Context) {
	var req PutClausesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	config, err := h.svc.PutClauses(c.Request.Context(), &application.PutClausesCommand{
		InsurerID:   c.Param("insurer_id"),
		ProductCode: c.Param("product_code"),
		Clauses:     req.Clauses,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, versionBody(config))
}

// PutFeesRequest 税费清单写入请求；数组顺序即级联计算顺序
type PutFeesRequest struct {
	Fees []rating.FeeType `json:"fees" binding:"required"`
}

// PutFees 整体替换税费清单
func (h *ConfigHandler) PutFees(c *gin.Context) {
	var req PutFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	config, err := h.svc.PutFees(c.Request.Context(), &application.PutFeesCommand{
		InsurerID:   c.Param("insurer_id"),
		ProductCode: c.Param("product_code"),
		Fees:        req.Fees,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, versionBody(config))
}

// PutLimitsRequest 限额写入请求
type PutLimitsRequest struct {
	Limits rating.PolicyLimits `json:"limits" binding:"required"`
}

// PutLimits 替换保费与保额边界
func (h *ConfigHandler) PutLimits(c *gin.Context) {
	var req PutLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	config, err := h.svc.PutLimits(c.Request.Context(), &application.PutLimitsCommand{
		InsurerID:   c.Param("insurer_id"),
		ProductCode: c.Param("product_code"),
		Limits:      req.Limits,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, versionBody(config))
}

// PutDimensionOrderRequest 维度顺序写入请求
type PutDimensionOrderRequest struct {
	Order []rating.Dimension `json:"order" binding:"required"`
}

// PutDimensionOrder 替换维度评估顺序
func (h *ConfigHandler) PutDimensionOrder(c *gin.Context) {
	var req PutDimensionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	config, err := h.svc.PutDimensionOrder(c.Request.Context(), &application.PutDimensionOrderCommand{
		InsurerID:   c.Param("insurer_id"),
		ProductCode: c.Param("product_code"),
		Order:       req.Order,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, versionBody(config))
}

// PutBaseRateRequest 基础保费规则写入请求
type PutBaseRateRequest struct {
	Base rating.BaseRate `json:"base" binding:"required"`
}

// PutBaseRate 替换基础保费规则
func (h *ConfigHandler) PutBaseRate(c *gin.Context) {
	var req PutBaseRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	config, err := h.svc.PutBaseRate(c.Request.Context(), &application.PutBaseRateCommand{
		InsurerID:   c.Param("insurer_id"),
		ProductCode: c.Param("product_code"),
		Base:        req.Base,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, versionBody(config))
}

// GetConfig 查询当前生效配置
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	config, err := h.svc.GetConfig(c.Request.Context(), c.Param("insurer_id"), c.Param("product_code"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, config)
}

// GetSnapshot 导出当前版本的评估快照
func (h *ConfigHandler) GetSnapshot(c *gin.Context) {
	snap, err := h.svc.GetSnapshot(c.Request.Context(), c.Param("insurer_id"), c.Param("product_code"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, snap)
}

// ListVersions 查询版本历史
func (h *ConfigHandler) ListVersions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	versions, err := h.svc.ListVersions(c.Request.Context(), c.Param("insurer_id"), c.Param("product_code"), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, versions)
}

// GetVersion 查询指定历史版本
func (h *ConfigHandler) GetVersion(c *gin.Context) {
	version, err := strconv.ParseUint(c.Param("version"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid version")
		return
	}

	config, err := h.svc.GetConfigVersion(c.Request.Context(), c.Param("insurer_id"), c.Param("product_code"), version)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, config)
}

func (h *ConfigHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrConfigNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidConfiguration):
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrVersionConflict):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error())
	default:
		logger.Error(c.Request.Context(), "configuration request failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error())
	}
}

func versionBody(config *domain.ProductConfig) gin.H {
	return gin.H{
		"insurer_id":   config.InsurerID,
		"product_code": config.ProductCode,
		"version":      config.Version,
	}
}
