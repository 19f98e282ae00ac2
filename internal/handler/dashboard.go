package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"crypto-macro-dashboard/internal/domain"
	"crypto-macro-dashboard/internal/provider"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// upstreamError maps fetch failures to 502 so callers can tell a broken
// upstream apart from a bug on our side.
func upstreamError(c *gin.Context, err error) {
	var fetchErr *provider.FetchError
	if errors.As(err, &fetchErr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  fetchErr.Reason,
			"source": fetchErr.URL,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// GetGlobalM2 godoc
// @Summary      Global M2 money supply
// @Description  Returns the annual world broad-money series from the World Bank
// @Tags         macro
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Router       /api/m2 [get]
func (h *Handler) GetGlobalM2(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-m2")
	defer span.End()

	points, err := h.dashboard.GetGlobalM2(ctx)
	if err != nil {
		upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

// GetMarketCaps godoc
// @Summary      BTC vs gold market caps
// @Description  Returns spot BTC and gold prices with derived market caps and ratios
// @Tags         macro
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Router       /api/market-caps [get]
func (h *Handler) GetMarketCaps(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market-caps")
	defer span.End()

	snap, err := h.dashboard.GetMarketCaps(ctx)
	if err != nil {
		upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot":         snap,
		"btc_vs_gold":      domain.NullableFloat(snap.BTCVsGoldRatio()),
		"gold_upside_mult": domain.NullableFloat(snap.GoldVsBTCUpside()),
	})
}

// GetMVRV godoc
// @Summary      Bitcoin MVRV series
// @Description  Returns daily market cap, realized cap, and MVRV ratio from CoinMetrics
// @Tags         onchain
// @Produce      json
// @Param        start  query  string  false  "Series start date (YYYY-MM-DD)"  default(2013-01-01)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/mvrv [get]
func (h *Handler) GetMVRV(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-mvrv")
	defer span.End()

	var start time.Time
	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, expected YYYY-MM-DD: " + s})
			return
		}
		start = parsed
	}

	points, err := h.dashboard.GetMVRV(ctx, start)
	if err != nil {
		upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

// GetAHR999 godoc
// @Summary      AHR999 accumulation index
// @Description  Returns the scraped AHR999 daily index series
// @Tags         onchain
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Router       /api/ahr999 [get]
func (h *Handler) GetAHR999(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-ahr999")
	defer span.End()

	points, err := h.dashboard.GetAHR999(ctx)
	if err != nil {
		upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

// GetETFFlows godoc
// @Summary      Daily spot ETF net flows
// @Description  Returns daily total ETF flow in millions USD for BTC or ETH
// @Tags         flows
// @Produce      json
// @Param        asset  path  string  true  "Asset (btc or eth)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/etf-flows/{asset} [get]
func (h *Handler) GetETFFlows(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-etf-flows")
	defer span.End()

	asset := domain.FlowAsset(strings.ToLower(c.Param("asset")))
	span.SetAttributes(attribute.String("asset", string(asset)))

	if asset != domain.FlowAssetBTC && asset != domain.FlowAssetETH {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            "unsupported asset: " + string(asset),
			"supported_assets": []string{string(domain.FlowAssetBTC), string(domain.FlowAssetETH)},
		})
		return
	}

	points, err := h.dashboard.GetETFFlows(ctx, asset)
	if err != nil {
		upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asset":  asset,
		"points": points,
	})
}

// GetTreasuries godoc
// @Summary      Corporate treasury holdings
// @Description  Returns the top corporate treasury holders for BTC, ETH, or SOL
// @Tags         treasuries
// @Produce      json
// @Param        asset  path   string  true   "Asset (btc, eth, or sol)"
// @Param        top    query  int     false  "Number of rows to return"  default(15)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/treasuries/{asset} [get]
func (h *Handler) GetTreasuries(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-treasuries")
	defer span.End()

	asset := strings.ToLower(c.Param("asset"))
	span.SetAttributes(attribute.String("asset", asset))

	topN := 0
	if v := c.Query("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "top must be a positive integer: " + v})
			return
		}
		topN = n
	}

	var (
		rows any
		err  error
	)
	switch asset {
	case "btc":
		rows, err = h.dashboard.GetBTCTreasuries(ctx, topN)
	case "eth":
		rows, err = h.dashboard.GetETHTreasuries(ctx, topN)
	case "sol":
		rows, err = h.dashboard.GetSOLTreasuries(ctx, topN)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            "unsupported asset: " + asset,
			"supported_assets": []string{"btc", "eth", "sol"},
		})
		return
	}
	if err != nil {
		upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asset": asset,
		"rows":  rows,
	})
}

// GetDashboard godoc
// @Summary      Full dashboard snapshot
// @Description  Fetches every section concurrently; failed sections are reported in the errors map
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  domain.Dashboard
// @Router       /api/dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-dashboard")
	defer span.End()

	dash := h.dashboard.BuildDashboard(ctx)
	c.JSON(http.StatusOK, dash)
}
