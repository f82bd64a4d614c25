package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionspricing/internal/pricing/application"
	"github.com/wyfcoding/optionspricing/internal/pricing/domain"
	"github.com/wyfcoding/optionspricing/pkg/logger"
	"github.com/wyfcoding/optionspricing/pkg/response"
)

// HTTP 处理器
// 负责处理与期权定价相关的 HTTP 请求
type PricingHandler struct {
	cmd   *application.PricingCommandService
	query *application.PricingQueryService
}

// 创建 HTTP 处理器实例
func NewPricingHandler(cmd *application.PricingCommandService, query *application.PricingQueryService) *PricingHandler {
	return &PricingHandler{cmd: cmd, query: query}
}

// 注册路由
// 将处理器方法绑定到 Gin 路由引擎
func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/options")
	{
		api.POST("/price", h.PriceOption)
		api.POST("/price/:model", h.PriceOptionWithModel)
		api.POST("/price/batch", h.BatchPriceOptions)
		api.POST("/greeks", h.GetGreeks)
		api.GET("/models", h.ListModels)
		api.GET("/results/:symbol/latest", h.GetLatestResult)
		api.GET("/results/:symbol", h.GetHistory)
		api.GET("/health", h.APIHealth)
	}
}

// RegisterRootRoutes 注册根路径和健康检查路由
func (h *PricingHandler) RegisterRootRoutes(router *gin.Engine) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
}

// PricingRequest 定价请求
type PricingRequest struct {
	Symbol        string  `json:"symbol" binding:"required"`
	OptionType    string  `json:"option_type" binding:"required"`
	SpotPrice     float64 `json:"spot_price"`
	StrikePrice   float64 `json:"strike_price" binding:"required"`
	TimeToExpiry  float64 `json:"time_to_expiry" binding:"required"`
	RiskFreeRate  float64 `json:"risk_free_rate"`
	DividendYield float64 `json:"dividend_yield"`
	Volatility    float64 `json:"volatility" binding:"required"`
	PricingModel  string  `json:"pricing_model"`
}

// BatchPricingRequest 批量定价请求
type BatchPricingRequest struct {
	Contracts []PricingRequest `json:"contracts" binding:"required,min=1"`
}

func toCommand(req PricingRequest) application.PriceOptionCommand {
	return application.PriceOptionCommand{
		Symbol:        req.Symbol,
		OptionType:    req.OptionType,
		SpotPrice:     req.SpotPrice,
		StrikePrice:   req.StrikePrice,
		TimeToExpiry:  req.TimeToExpiry,
		RiskFreeRate:  req.RiskFreeRate,
		DividendYield: req.DividendYield,
		Volatility:    req.Volatility,
		PricingModel:  req.PricingModel,
	}
}

// writeError 根据错误类型映射 HTTP 状态码
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidParameters):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "INVALID_PARAMETERS")
	case errors.Is(err, domain.ErrUnknownModel):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "UNKNOWN_MODEL")
	default:
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
	}
}

// PriceOption 使用全部模型定价并对比
func (h *PricingHandler) PriceOption(c *gin.Context) {
	var req PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	outcome, err := h.cmd.PriceOption(c.Request.Context(), toCommand(req))
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to calculate option price", "error", err)
		writeError(c, err)
		return
	}
	response.Success(c, outcome)
}

// PriceOptionWithModel 使用指定模型定价
func (h *PricingHandler) PriceOptionWithModel(c *gin.Context) {
	var req PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	cmd := toCommand(req)
	cmd.PricingModel = c.Param("model")

	outcome, err := h.cmd.PriceOption(c.Request.Context(), cmd)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to calculate option price", "error", err, "model", cmd.PricingModel)
		writeError(c, err)
		return
	}
	response.Success(c, outcome)
}

// BatchPriceOptions 批量定价
func (h *PricingHandler) BatchPriceOptions(c *gin.Context) {
	var req BatchPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	cmd := application.BatchPriceOptionsCommand{
		Contracts: make([]application.PriceOptionCommand, len(req.Contracts)),
	}
	for i, contract := range req.Contracts {
		cmd.Contracts[i] = toCommand(contract)
	}

	result, err := h.cmd.BatchPriceOptions(c.Request.Context(), cmd)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to run batch pricing", "error", err)
		writeError(c, err)
		return
	}
	response.Success(c, result)
}

// GetGreeks 计算希腊字母
func (h *PricingHandler) GetGreeks(c *gin.Context) {
	var req PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	greeks, err := h.query.GetGreeks(c.Request.Context(), toCommand(req))
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to calculate Greeks", "error", err)
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"symbol": req.Symbol,
		"greeks": greeks,
	})
}

// ListModels 已注册模型列表
func (h *PricingHandler) ListModels(c *gin.Context) {
	response.Success(c, gin.H{"models": h.query.ListModels()})
}

// GetLatestResult 获取最新定价结果
func (h *PricingHandler) GetLatestResult(c *gin.Context) {
	symbol := c.Param("symbol")
	result, err := h.query.GetLatestResult(c.Request.Context(), symbol)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to fetch latest pricing result", "error", err, "symbol", symbol)
		writeError(c, err)
		return
	}
	if result == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "no pricing result for "+symbol, "NOT_FOUND")
		return
	}
	response.Success(c, result)
}

// GetHistory 获取定价历史记录
func (h *PricingHandler) GetHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	results, err := h.query.GetHistory(c.Request.Context(), symbol, limit)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to fetch pricing history", "error", err, "symbol", symbol)
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"symbol":  symbol,
		"count":   len(results),
		"results": results,
	})
}

// Root 根路径
func (h *PricingHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Options Pricing API is running"})
}

// Health 服务健康检查，附带可用模型列表
func (h *PricingHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"models_available": h.query.ListModels(),
	})
}

// APIHealth 定价 API 健康检查
func (h *PricingHandler) APIHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "Options API is healthy"})
}
