package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"crypto-macro-dashboard/internal/advisor"
	"crypto-macro-dashboard/internal/domain"
	"crypto-macro-dashboard/internal/service"

	tele "gopkg.in/telebot.v3"
)

func StartTelegramBot(token string, dashboard *service.DashboardService, macroAdvisor *advisor.AdvisorService) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/caps", func(c tele.Context) error {
		snap, err := dashboard.GetMarketCaps(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching market caps: %v", err))
		}
		msg := fmt.Sprintf(
			"BTC: $%s (cap %s)\nGold: $%s/oz (cap %s)\nBTC/Gold cap ratio: %.1f%%",
			domain.FormatCompact(snap.BTCPrice), domain.FormatCompact(snap.BTCMarketCap),
			domain.FormatCompact(snap.GoldPrice), domain.FormatCompact(snap.GoldMarketCap),
			snap.BTCVsGoldRatio()*100,
		)
		return c.Send(msg)
	})

	b.Handle("/flows", func(c tele.Context) error {
		asset := domain.FlowAssetBTC
		if args := c.Args(); len(args) > 0 {
			asset = domain.FlowAsset(strings.ToLower(args[0]))
		}
		if asset != domain.FlowAssetBTC && asset != domain.FlowAssetETH {
			return c.Send("Usage: /flows [btc|eth]")
		}
		points, err := dashboard.GetETFFlows(context.Background(), asset)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching %s flows: %v", asset, err))
		}
		if len(points) == 0 {
			return c.Send(fmt.Sprintf("No %s flow data available", asset))
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%s ETF net flows (M USD):\n", strings.ToUpper(string(asset))))
		start := len(points) - 7
		if start < 0 {
			start = 0
		}
		for _, p := range points[start:] {
			if p.TotalFlow.IsNaN() {
				sb.WriteString(fmt.Sprintf("%s: -\n", p.Date.Format("02 Jan")))
				continue
			}
			sb.WriteString(fmt.Sprintf("%s: %+.1f\n", p.Date.Format("02 Jan"), float64(p.TotalFlow)))
		}
		return c.Send(sb.String())
	})

	b.Handle("/treasury", func(c tele.Context) error {
		asset := "btc"
		if args := c.Args(); len(args) > 0 {
			asset = strings.ToLower(args[0])
		}
		ctx := context.Background()
		var sb strings.Builder
		switch asset {
		case "btc":
			rows, err := dashboard.GetBTCTreasuries(ctx, 5)
			if err != nil {
				return c.Send(fmt.Sprintf("Error fetching btc treasuries: %v", err))
			}
			sb.WriteString("Top BTC treasuries:\n")
			for _, r := range rows {
				sb.WriteString(fmt.Sprintf("%s (%s): %s BTC\n", r.Name, r.Ticker, domain.FormatCompact(float64(r.Holdings))))
			}
		case "eth":
			rows, err := dashboard.GetETHTreasuries(ctx, 5)
			if err != nil {
				return c.Send(fmt.Sprintf("Error fetching eth treasuries: %v", err))
			}
			sb.WriteString("Top ETH treasuries:\n")
			for _, r := range rows {
				sb.WriteString(fmt.Sprintf("%s: %s ETH\n", r.Company, domain.FormatCompact(float64(r.Held))))
			}
		case "sol":
			rows, err := dashboard.GetSOLTreasuries(ctx, 5)
			if err != nil {
				return c.Send(fmt.Sprintf("Error fetching sol treasuries: %v", err))
			}
			sb.WriteString("Top SOL treasuries:\n")
			for _, r := range rows {
				sb.WriteString(fmt.Sprintf("%s: %s SOL\n", r.Company, domain.FormatCompact(float64(r.Held))))
			}
		default:
			return c.Send("Usage: /treasury [btc|eth|sol]")
		}
		return c.Send(sb.String())
	})

	b.Handle("/ask", func(c tele.Context) error {
		if macroAdvisor == nil {
			return c.Send("Advisor is not configured")
		}
		question := strings.TrimSpace(strings.TrimPrefix(c.Text(), "/ask"))
		if question == "" {
			return c.Send("Usage: /ask where are we in the cycle?")
		}
		reply, err := macroAdvisor.Ask(context.Background(), c.Chat().ID, question)
		if err != nil {
			return c.Send(fmt.Sprintf("Advisor error: %v", err))
		}
		return c.Send(reply)
	})

	log.Println("Telegram bot started")
	go b.Start()
}
