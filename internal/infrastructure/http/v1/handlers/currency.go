package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/domain/catalogs/currency"
	"stockpro/internal/infrastructure/cache"
	"stockpro/internal/infrastructure/http/v1/dto"
	"stockpro/pkg/logger"
)

// CurrencyHTTPHandler is a type alias to shorten signatures.
type CurrencyHTTPHandler = CatalogHandler[
	*currency.Currency,
	dto.CreateCurrencyRequest,
	dto.UpdateCurrencyRequest,
]

// NewCurrencyHandler builds the configured generic catalog handler.
func NewCurrencyHandler(
	base *BaseHandler,
	service *currency.Service,
) *CurrencyHTTPHandler {

	config := CatalogHandlerConfig[
		*currency.Currency,
		dto.CreateCurrencyRequest,
		dto.UpdateCurrencyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "currency",

		MapCreateDTO: func(req dto.CreateCurrencyRequest) *currency.Currency {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateCurrencyRequest, existing *currency.Currency) *currency.Currency {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *currency.Currency) any {
			return dto.FromCurrency(entity)
		},
	}

	return NewCatalogHandler(base, config)
}

// CurrencyRateHandler serves the PTAX rate endpoints that fall outside
// the generic catalog CRUD.
type CurrencyRateHandler struct {
	*BaseHandler
	service *currency.Service
	// rateCache is optional; when nil the endpoints go straight to the
	// database.
	rateCache *cache.RateCache
}

// NewCurrencyRateHandler creates the rate handler.
func NewCurrencyRateHandler(base *BaseHandler, service *currency.Service, rateCache *cache.RateCache) *CurrencyRateHandler {
	return &CurrencyRateHandler{
		BaseHandler: base,
		service:     service,
		rateCache:   rateCache,
	}
}

// UpdateRate handles PUT /currencies/rates/:isoCode.
func (h *CurrencyRateHandler) UpdateRate(c *gin.Context) {
	ctx := c.Request.Context()
	isoCode := strings.ToUpper(c.Param("isoCode"))

	var req dto.UpdateExchangeRateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.UpdateRate(ctx, isoCode, req.Rate, req.Date); err != nil {
		h.Error(c, err)
		return
	}

	if h.rateCache != nil {
		if err := h.rateCache.Invalidate(ctx, isoCode); err != nil {
			// A stale cache entry expires on its own TTL.
			logger.Warn(ctx, "failed to invalidate cached rate", "currency", isoCode, "error", err)
		}
	}

	curr, err := h.service.FindByISOCode(ctx, isoCode)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromCurrency(curr)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}

// GetRate handles GET /currencies/rates/:isoCode.
func (h *CurrencyRateHandler) GetRate(c *gin.Context) {
	ctx := c.Request.Context()
	isoCode := strings.ToUpper(c.Param("isoCode"))

	if h.rateCache != nil {
		cached, err := h.rateCache.Get(ctx, isoCode)
		if err != nil {
			logger.Warn(ctx, "rate cache lookup failed", "currency", isoCode, "error", err)
		}
		if cached != nil {
			c.JSON(http.StatusOK, gin.H{
				"isoCode":  isoCode,
				"rate":     cached.Rate,
				"rateDate": cached.QuoteDate,
			})
			return
		}
	}

	curr, err := h.service.FindByISOCode(ctx, isoCode)
	if err != nil {
		h.Error(c, err)
		return
	}
	if curr.Rate.IsZero() {
		h.Error(c, apperror.NewNotFound("exchange rate", isoCode))
		return
	}

	if h.rateCache != nil && curr.RateDate != nil {
		if err := h.rateCache.Set(ctx, isoCode, curr.Rate, *curr.RateDate); err != nil {
			logger.Warn(ctx, "failed to cache rate", "currency", isoCode, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"isoCode":  isoCode,
		"rate":     curr.Rate,
		"rateDate": curr.RateDate,
	})
}
