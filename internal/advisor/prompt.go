package advisor

import (
	"fmt"
	"math"
	"strings"
	"time"

	"crypto-macro-dashboard/internal/domain"
)

const macroPhilosophy = `You are a bitcoin macro analyst bot. Your role is to interpret cycle indicators and flow data, NOT to call tops or bottoms.

Indicator guide:
- MVRV: market cap over realized cap. Historically below 1 near cycle lows, above 3.5 near cycle tops.
- AHR999: accumulation index. Below 0.45 is the classic bottom-fishing zone, 0.45 to 1.2 favors DCA, above 1.2 the market is running hot.
- ETF flows: daily net flow in millions USD across all spot ETFs. Sustained outflows mark distribution, sustained inflows mark institutional demand.
- BTC vs gold: bitcoin market cap as a fraction of gold's. The gap is the hard-money repricing case.

Rules:
- Always reference the specific numbers provided when making observations.
- Never fabricate data. If a section is unavailable, say so.
- Express uncertainty when indicators conflict.
- Keep responses concise and readable. You are talking via Telegram.
- Do not provide financial advice disclaimers on every message. The user understands this is informational.
- When asked where we are in the cycle, summarize MVRV, AHR999, and recent flows together rather than leaning on one number.`

func BuildSystemPrompt(marketContext string) string {
	var sb strings.Builder
	sb.WriteString(macroPhilosophy)
	sb.WriteString("\n\n--- LIVE MARKET DATA (as of ")
	sb.WriteString(time.Now().UTC().Format(time.RFC822))
	sb.WriteString(") ---\n")
	sb.WriteString(marketContext)
	return sb.String()
}

// MarketContext is the freshest value from each advisor-relevant section.
type MarketContext struct {
	Caps    *domain.MarketCapSnapshot
	MVRV    *domain.MVRVPoint
	AHR     *domain.AHRPoint
	BTCFlow *domain.ETFFlowPoint
	ETHFlow *domain.ETFFlowPoint
}

func (m MarketContext) Empty() bool {
	return m.Caps == nil && m.MVRV == nil && m.AHR == nil && m.BTCFlow == nil && m.ETHFlow == nil
}

func FormatMarketContext(m MarketContext) string {
	var sb strings.Builder

	if m.Caps != nil {
		sb.WriteString(fmt.Sprintf("BTC: $%.0f (market cap $%.2fT)\n", m.Caps.BTCPrice, m.Caps.BTCMarketCap/1e12))
		sb.WriteString(fmt.Sprintf("Gold: $%.0f/oz (market cap $%.2fT)\n", m.Caps.GoldPrice, m.Caps.GoldMarketCap/1e12))
		if ratio := m.Caps.BTCVsGoldRatio(); !math.IsNaN(ratio) {
			sb.WriteString(fmt.Sprintf("BTC is %.1f%% of gold's market cap\n", ratio*100))
		}
	}

	if m.MVRV != nil {
		sb.WriteString(fmt.Sprintf("MVRV (%s): %.2f\n", m.MVRV.Date.Format("2006-01-02"), m.MVRV.MVRV))
	}
	if m.AHR != nil {
		sb.WriteString(fmt.Sprintf("AHR999 (%s): %.3f\n", m.AHR.Date.Format("2006-01-02"), m.AHR.Value))
	}

	if m.BTCFlow != nil && !m.BTCFlow.TotalFlow.IsNaN() {
		sb.WriteString(fmt.Sprintf("BTC ETF net flow (%s): %+.1fM USD\n", m.BTCFlow.Date.Format("2006-01-02"), float64(m.BTCFlow.TotalFlow)))
	}
	if m.ETHFlow != nil && !m.ETHFlow.TotalFlow.IsNaN() {
		sb.WriteString(fmt.Sprintf("ETH ETF net flow (%s): %+.1fM USD\n", m.ETHFlow.Date.Format("2006-01-02"), float64(m.ETHFlow.TotalFlow)))
	}

	if sb.Len() == 0 {
		return "No market data currently available."
	}
	return sb.String()
}
