package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crypto-macro-dashboard/internal/domain"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DashboardQuerier is the slice of the dashboard service the TUI renders.
type DashboardQuerier interface {
	GetMarketCaps(ctx context.Context) (*domain.MarketCapSnapshot, error)
	GetMVRV(ctx context.Context, start time.Time) ([]domain.MVRVPoint, error)
	GetAHR999(ctx context.Context) ([]domain.AHRPoint, error)
	GetETFFlows(ctx context.Context, asset domain.FlowAsset) ([]domain.ETFFlowPoint, error)
	GetBTCTreasuries(ctx context.Context, topN int) ([]domain.BTCTreasuryRow, error)
	GetETHTreasuries(ctx context.Context, topN int) ([]domain.ETHTreasuryRow, error)
	GetSOLTreasuries(ctx context.Context, topN int) ([]domain.SOLTreasuryRow, error)
}

// AdvisorQuerier is implemented by the advisor service when configured.
type AdvisorQuerier interface {
	Ask(ctx context.Context, chatID int64, userMessage string) (string, error)
}

// Services bundles everything a TUI session needs.
type Services struct {
	Dashboard DashboardQuerier
	Advisor   AdvisorQuerier
	Username  string
	SessionID int64
}

type tab int

const (
	tabOverview tab = iota
	tabFlows
	tabTreasuries
	tabAdvisor
)

var tabNames = []string{"Overview", "ETF Flows", "Treasuries", "Advisor"}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Underline(true)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle     = lipgloss.NewStyle().Bold(true)
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type capsMsg struct {
	snap *domain.MarketCapSnapshot
	err  error
}

type indicatorsMsg struct {
	mvrv []domain.MVRVPoint
	ahr  []domain.AHRPoint
	err  error
}

type flowsMsg struct {
	asset  domain.FlowAsset
	points []domain.ETFFlowPoint
	err    error
}

type treasuriesMsg struct {
	btc []domain.BTCTreasuryRow
	eth []domain.ETHTreasuryRow
	sol []domain.SOLTreasuryRow
	err error
}

type advisorReplyMsg struct {
	reply string
	err   error
}

// AppModel is the root bubbletea model for an SSH dashboard session.
type AppModel struct {
	services Services

	activeTab tab
	width     int
	height    int

	caps    *domain.MarketCapSnapshot
	mvrv    []domain.MVRVPoint
	ahr     []domain.AHRPoint
	capsErr error
	indErr  error

	flowAsset  domain.FlowAsset
	flowTables map[domain.FlowAsset]table.Model
	flowErr    error

	treasuryAsset string
	btcTable      table.Model
	ethTable      table.Model
	solTable      table.Model
	treasuryErr   error

	advisorInput   textinput.Model
	advisorReply   string
	advisorErr     error
	advisorWaiting bool
}

func NewAppModel(services Services) *AppModel {
	input := textinput.New()
	input.Placeholder = "where are we in the cycle?"
	input.CharLimit = 280
	input.Width = 60

	return &AppModel{
		services:      services,
		flowAsset:     domain.FlowAssetBTC,
		flowTables:    make(map[domain.FlowAsset]table.Model),
		treasuryAsset: "btc",
		advisorInput:  input,
	}
}

func (m *AppModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.loadCaps(),
		m.loadIndicators(),
		m.loadFlows(domain.FlowAssetBTC),
		m.loadFlows(domain.FlowAssetETH),
		m.loadTreasuries(),
	)
}

func (m *AppModel) loadCaps() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.services.Dashboard.GetMarketCaps(context.Background())
		return capsMsg{snap: snap, err: err}
	}
}

func (m *AppModel) loadIndicators() tea.Cmd {
	return func() tea.Msg {
		mvrv, err := m.services.Dashboard.GetMVRV(context.Background(), time.Time{})
		if err != nil {
			return indicatorsMsg{err: err}
		}
		ahr, err := m.services.Dashboard.GetAHR999(context.Background())
		return indicatorsMsg{mvrv: mvrv, ahr: ahr, err: err}
	}
}

func (m *AppModel) loadFlows(asset domain.FlowAsset) tea.Cmd {
	return func() tea.Msg {
		points, err := m.services.Dashboard.GetETFFlows(context.Background(), asset)
		return flowsMsg{asset: asset, points: points, err: err}
	}
}

func (m *AppModel) loadTreasuries() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		btc, err := m.services.Dashboard.GetBTCTreasuries(ctx, 0)
		if err != nil {
			return treasuriesMsg{err: err}
		}
		eth, err := m.services.Dashboard.GetETHTreasuries(ctx, 0)
		if err != nil {
			return treasuriesMsg{btc: btc, err: err}
		}
		sol, err := m.services.Dashboard.GetSOLTreasuries(ctx, 0)
		return treasuriesMsg{btc: btc, eth: eth, sol: sol, err: err}
	}
}

func (m *AppModel) askAdvisor(question string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.services.Advisor.Ask(context.Background(), m.services.SessionID, question)
		return advisorReplyMsg{reply: reply, err: err}
	}
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case capsMsg:
		m.caps, m.capsErr = msg.snap, msg.err
		return m, nil

	case indicatorsMsg:
		m.mvrv, m.ahr, m.indErr = msg.mvrv, msg.ahr, msg.err
		return m, nil

	case flowsMsg:
		if msg.err != nil {
			m.flowErr = msg.err
			return m, nil
		}
		m.flowTables[msg.asset] = newFlowTable(msg.points)
		return m, nil

	case treasuriesMsg:
		m.treasuryErr = msg.err
		m.btcTable = newBTCTreasuryTable(msg.btc)
		m.ethTable = newETHTreasuryTable(msg.eth)
		m.solTable = newSOLTreasuryTable(msg.sol)
		return m, nil

	case advisorReplyMsg:
		m.advisorWaiting = false
		m.advisorReply, m.advisorErr = msg.reply, msg.err
		return m, nil
	}

	return m, nil
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	typing := m.activeTab == tabAdvisor && m.advisorInput.Focused()

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if !typing {
			return m, tea.Quit
		}
	case "tab", "right":
		if !typing {
			m.activeTab = (m.activeTab + 1) % tab(len(tabNames))
			return m, m.focusTab()
		}
	case "shift+tab", "left":
		if !typing {
			m.activeTab = (m.activeTab + tab(len(tabNames)) - 1) % tab(len(tabNames))
			return m, m.focusTab()
		}
	}

	switch m.activeTab {
	case tabFlows:
		switch msg.String() {
		case "b":
			m.flowAsset = domain.FlowAssetBTC
		case "e":
			m.flowAsset = domain.FlowAssetETH
		default:
			if t, ok := m.flowTables[m.flowAsset]; ok {
				var cmd tea.Cmd
				t, cmd = t.Update(msg)
				m.flowTables[m.flowAsset] = t
				return m, cmd
			}
		}
		return m, nil

	case tabTreasuries:
		switch msg.String() {
		case "b":
			m.treasuryAsset = "btc"
		case "e":
			m.treasuryAsset = "eth"
		case "s":
			m.treasuryAsset = "sol"
		default:
			var cmd tea.Cmd
			switch m.treasuryAsset {
			case "btc":
				m.btcTable, cmd = m.btcTable.Update(msg)
			case "eth":
				m.ethTable, cmd = m.ethTable.Update(msg)
			case "sol":
				m.solTable, cmd = m.solTable.Update(msg)
			}
			return m, cmd
		}
		return m, nil

	case tabAdvisor:
		if msg.String() == "enter" {
			question := strings.TrimSpace(m.advisorInput.Value())
			if question == "" || m.services.Advisor == nil || m.advisorWaiting {
				return m, nil
			}
			m.advisorWaiting = true
			m.advisorInput.Reset()
			return m, m.askAdvisor(question)
		}
		var cmd tea.Cmd
		m.advisorInput, cmd = m.advisorInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *AppModel) focusTab() tea.Cmd {
	if m.activeTab == tabAdvisor {
		return m.advisorInput.Focus()
	}
	m.advisorInput.Blur()
	return nil
}

func (m *AppModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("crypto macro dashboard"))
	if m.services.Username != "" {
		sb.WriteString(labelStyle.Render("  ~ " + m.services.Username))
	}
	sb.WriteString("\n\n")

	var tabs []string
	for i, name := range tabNames {
		if tab(i) == m.activeTab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	sb.WriteString(strings.Join(tabs, "  |  "))
	sb.WriteString("\n\n")

	switch m.activeTab {
	case tabOverview:
		sb.WriteString(m.viewOverview())
	case tabFlows:
		sb.WriteString(m.viewFlows())
	case tabTreasuries:
		sb.WriteString(m.viewTreasuries())
	case tabAdvisor:
		sb.WriteString(m.viewAdvisor())
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("tab/shift+tab switch views ~ q quit"))
	return sb.String()
}

func (m *AppModel) viewOverview() string {
	var sb strings.Builder

	if m.capsErr != nil {
		sb.WriteString(errStyle.Render("market caps unavailable: "+m.capsErr.Error()) + "\n")
	} else if m.caps == nil {
		sb.WriteString(labelStyle.Render("loading market caps...") + "\n")
	} else {
		sb.WriteString(renderMetric("BTC price", "$"+domain.FormatCompact(m.caps.BTCPrice)))
		sb.WriteString(renderMetric("BTC market cap", "$"+domain.FormatCompact(m.caps.BTCMarketCap)))
		sb.WriteString(renderMetric("Gold price", "$"+domain.FormatCompact(m.caps.GoldPrice)+"/oz"))
		sb.WriteString(renderMetric("Gold market cap", "$"+domain.FormatCompact(m.caps.GoldMarketCap)))
		sb.WriteString(renderMetric("BTC vs gold", fmt.Sprintf("%.1f%%", m.caps.BTCVsGoldRatio()*100)))
		sb.WriteString(renderMetric("Upside to gold", fmt.Sprintf("%.1fx", m.caps.GoldVsBTCUpside())))
	}

	sb.WriteString("\n")
	if m.indErr != nil {
		sb.WriteString(errStyle.Render("indicators unavailable: "+m.indErr.Error()) + "\n")
	} else {
		if len(m.mvrv) > 0 {
			last := m.mvrv[len(m.mvrv)-1]
			sb.WriteString(renderMetric("MVRV "+last.Date.Format("2006-01-02"), fmt.Sprintf("%.2f", last.MVRV)))
		}
		if len(m.ahr) > 0 {
			last := m.ahr[len(m.ahr)-1]
			sb.WriteString(renderMetric("AHR999 "+last.Date.Format("2006-01-02"), fmt.Sprintf("%.3f", last.Value)))
		}
	}

	return sb.String()
}

func (m *AppModel) viewFlows() string {
	var sb strings.Builder
	sb.WriteString(labelStyle.Render("asset: ") + valueStyle.Render(strings.ToUpper(string(m.flowAsset))))
	sb.WriteString(helpStyle.Render("   (b: btc, e: eth)"))
	sb.WriteString("\n\n")

	if m.flowErr != nil {
		sb.WriteString(errStyle.Render("flows unavailable: " + m.flowErr.Error()))
		return sb.String()
	}
	t, ok := m.flowTables[m.flowAsset]
	if !ok {
		sb.WriteString(labelStyle.Render("loading flows..."))
		return sb.String()
	}
	sb.WriteString(t.View())
	return sb.String()
}

func (m *AppModel) viewTreasuries() string {
	var sb strings.Builder
	sb.WriteString(labelStyle.Render("asset: ") + valueStyle.Render(strings.ToUpper(m.treasuryAsset)))
	sb.WriteString(helpStyle.Render("   (b: btc, e: eth, s: sol)"))
	sb.WriteString("\n\n")

	if m.treasuryErr != nil {
		sb.WriteString(errStyle.Render("treasuries unavailable: " + m.treasuryErr.Error()))
		return sb.String()
	}
	switch m.treasuryAsset {
	case "btc":
		sb.WriteString(m.btcTable.View())
	case "eth":
		sb.WriteString(m.ethTable.View())
	case "sol":
		sb.WriteString(m.solTable.View())
	}
	return sb.String()
}

func (m *AppModel) viewAdvisor() string {
	var sb strings.Builder

	if m.services.Advisor == nil {
		sb.WriteString(labelStyle.Render("advisor is not configured"))
		return sb.String()
	}

	sb.WriteString(m.advisorInput.View())
	sb.WriteString("\n\n")
	if m.advisorWaiting {
		sb.WriteString(labelStyle.Render("thinking..."))
	} else if m.advisorErr != nil {
		sb.WriteString(errStyle.Render(m.advisorErr.Error()))
	} else if m.advisorReply != "" {
		sb.WriteString(m.advisorReply)
	}
	return sb.String()
}

func renderMetric(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-18s", label)) + valueStyle.Render(value) + "\n"
}
