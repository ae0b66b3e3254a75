package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	pcdomain "github.com/wyfcoding/insurancerating/internal/productconfig/domain"
	"github.com/wyfcoding/insurancerating/internal/rating/application"
	"github.com/wyfcoding/insurancerating/internal/rating/domain"
	"github.com/wyfcoding/insurancerating/pkg/logger"
	"github.com/wyfcoding/insurancerating/pkg/response"
)

// RatingHandler 报价 HTTP 处理器
type RatingHandler struct {
	svc *application.RatingApplicationService
}

// NewRatingHandler 创建 HTTP 处理器实例
func NewRatingHandler(svc *application.RatingApplicationService) *RatingHandler {
	return &RatingHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *RatingHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/rating")
	{
		api.POST("/quotes", h.EvaluateQuote)
		api.POST("/quotes/preview", h.PreviewQuote)
		api.GET("/quotes/:quote_id", h.GetQuote)
		api.GET("/quotes", h.ListQuotes)
		api.POST("/policies/redisplay", h.RedisplayPolicy)
	}
}

// QuoteRequest 报价请求
type QuoteRequest struct {
	InsurerID   string             `json:"insurer_id" binding:"required"`
	ProductCode string             `json:"product_code" binding:"required"`
	Profile     domain.RiskProfile `json:"profile" binding:"required"`
}

// EvaluateQuote 评估并保存一次报价
func (h *RatingHandler) EvaluateQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.EvaluateQuote(c.Request.Context(), &application.EvaluateQuoteCommand{
		InsurerID:   req.InsurerID,
		ProductCode: req.ProductCode,
		Profile:     req.Profile,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, result)
}

// PreviewQuote 试算报价，不落库不发事件
func (h *RatingHandler) PreviewQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.PreviewQuote(c.Request.Context(), &application.EvaluateQuoteCommand{
		InsurerID:   req.InsurerID,
		ProductCode: req.ProductCode,
		Profile:     req.Profile,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, result)
}

// GetQuote 查询历史报价
func (h *RatingHandler) GetQuote(c *gin.Context) {
	result, err := h.svc.GetQuote(c.Request.Context(), c.Param("quote_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, result)
}

// ListQuotes 查询某产品最近的报价
func (h *RatingHandler) ListQuotes(c *gin.Context) {
	insurerID := c.Query("insurer_id")
	productCode := c.Query("product_code")
	if insurerID == "" || productCode == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "insurer_id and product_code are required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	quotes, err := h.svc.ListQuotes(c.Request.Context(), insurerID, productCode, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, quotes)
}

// RedisplayRequest 历史保单重新展示请求
type RedisplayRequest struct {
	InsurerID     string                   `json:"insurer_id" binding:"required"`
	ProductCode   string                   `json:"product_code" binding:"required"`
	StoredClauses []domain.ClauseSelection `json:"stored_clauses" binding:"required"`
}

// RedisplayPolicy 按当前配置重新展示已出单保单的条款
func (h *RatingHandler) RedisplayPolicy(c *gin.Context) {
	var req RedisplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}

	lines, err := h.svc.RedisplayPolicy(c.Request.Context(), &application.RedisplayPolicyCommand{
		InsurerID:     req.InsurerID,
		ProductCode:   req.ProductCode,
		StoredClauses: req.StoredClauses,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, gin.H{"clause_lines": lines})
}

func (h *RatingHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrQuoteNotFound),
		errors.Is(err, pcdomain.ErrConfigNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNoMatchingTier),
		errors.Is(err, domain.ErrCoverageExceedsMaximum),
		errors.Is(err, domain.ErrClauseNotFound),
		errors.Is(err, domain.ErrClauseDisabled),
		errors.Is(err, domain.ErrSnapshotIncomplete):
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error(c.Request.Context(), "rating request failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error())
	}
}
