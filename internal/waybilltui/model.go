// Package waybilltui hosts the waybill list page in a bubbletea program.
package waybilltui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tOgg1/waybill/internal/events"
	"github.com/tOgg1/waybill/internal/logging"
	"github.com/tOgg1/waybill/internal/lookup"
	"github.com/tOgg1/waybill/internal/models"
	"github.com/tOgg1/waybill/internal/store"
	"github.com/tOgg1/waybill/internal/waybill"
)

const defaultCardWidth = 72

// Store is the list store the TUI drives.
type Store interface {
	waybill.ListStore
	Subscribe(fn store.Listener) func()
}

// Config configures the TUI.
type Config struct {
	Route   waybill.RouteParams
	Catalog models.Catalog
	Store   Store
	Storage waybill.Storage
	Bus     events.Bus
	// Finder backs the query screen. Optional.
	Finder *lookup.Finder

	Theme           string
	CardWidth       int
	PageID          string
	GuideStorageKey string
	ToastDuration   time.Duration

	// OnChange observes every state transition.
	OnChange func(prev, next waybill.ViewState)
}

func (c Config) normalize() (Config, error) {
	c.Theme = strings.TrimSpace(c.Theme)
	if c.Theme == "" {
		c.Theme = ThemeDefault
	}
	if c.CardWidth <= 0 {
		c.CardWidth = defaultCardWidth
	}
	if c.ToastDuration <= 0 {
		c.ToastDuration = waybill.DefaultToastDuration
	}
	if c.Store == nil {
		return Config{}, fmt.Errorf("tui requires a store")
	}
	return c, nil
}

type snapshotMsg struct {
	snap models.StoreSnapshot
}

type cancelResultMsg struct {
	orderNo string
	err     error
}

type lookupResultMsg struct {
	query   string
	matches []lookup.Match
	err     error
}

// Model is the bubbletea model of the waybill page.
type Model struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	page   *waybill.Page
	shell  *shell
	styles styles

	spinner spinner.Model
	query   textinput.Model
	matches []lookup.Match
	lookErr error

	width      int
	height     int
	cursor     int
	showHelp   bool
	cancelling bool
	mountErr   error
}

// NewModel builds the model and its page. The page is mounted by Init.
func NewModel(ctx context.Context, cfg Config) (*Model, error) {
	normalized, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	st, err := newStyles(normalized.Theme)
	if err != nil {
		return nil, err
	}

	sh := newShell()
	page, err := waybill.NewPage(normalized.Route, waybill.Options{
		Catalog:         normalized.Catalog,
		Store:           normalized.Store,
		Host:            sh,
		Storage:         normalized.Storage,
		Bus:             normalized.Bus,
		PageID:          normalized.PageID,
		GuideStorageKey: normalized.GuideStorageKey,
		ToastDuration:   normalized.ToastDuration,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	m := &Model{
		cfg:     normalized,
		ctx:     ctx,
		cancel:  cancel,
		page:    page,
		shell:   sh,
		styles:  st,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		query:   textinput.New(),
	}
	m.spinner.Style = st.loadingMask
	m.query.Placeholder = "输入运单号"
	m.query.CharLimit = 32

	sh.onNavigate = page.NotifyHidden
	page.OnChange(m.onStateChange)
	if normalized.OnChange != nil {
		page.OnChange(normalized.OnChange)
	}
	return m, nil
}

// Run starts the TUI and blocks until it exits.
func Run(ctx context.Context, cfg Config) error {
	model, err := NewModel(ctx, cfg)
	if err != nil {
		return err
	}
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	pump := newSnapshotPump(func(snap models.StoreSnapshot) {
		program.Send(snapshotMsg{snap: snap})
	})
	unsubscribe := model.cfg.Store.Subscribe(pump.Push)
	defer func() {
		unsubscribe()
		pump.Stop()
	}()

	_, err = program.Run()
	if err == nil {
		err = model.mountErr
	}
	return err
}

// Page exposes the hosted page.
func (m *Model) Page() *waybill.Page { return m.page }

// Observe feeds a store snapshot directly, bypassing the message loop.
func (m *Model) Observe(snap models.StoreSnapshot) {
	m.page.ObserveStore(snap)
}

// Close unmounts the page.
func (m *Model) Close() {
	m.page.Unmount()
	m.cancel()
}

func (m *Model) Init() tea.Cmd {
	if err := m.page.Mount(m.ctx); err != nil {
		m.mountErr = err
		log := logging.Component("tui")
		log.Error().Err(err).Msg("failed to mount waybill page")
		return tea.Quit
	}
	return tea.Batch(m.spinner.Tick, m.shell.drain())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
	case snapshotMsg:
		m.page.ObserveStore(typed.snap)
		m.clampCursor()
	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(typed)
	case toastExpiredMsg:
		m.shell.expireToast(typed.seq)
	case cancelResultMsg:
		m.cancelling = false
		m.page.CompleteCancel(typed.orderNo, typed.err)
	case lookupResultMsg:
		if typed.query == strings.TrimSpace(m.query.Value()) {
			m.matches, m.lookErr = typed.matches, typed.err
		}
	case tea.KeyMsg:
		cmd = m.handleKey(typed)
	}
	return m, tea.Batch(cmd, m.shell.drain())
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.shell.route() != "" {
		return m.handleRouteKey(msg)
	}
	if m.page.State().Popup != waybill.PopupNone {
		return m.handlePopupKey(msg)
	}

	state := m.page.State()
	categories := len(m.page.Catalog().Categories)
	filters := len(m.page.Catalog().Filters(state.CurrentWaybillType))

	switch key := msg.String(); key {
	case "q":
		return tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "tab", "right", "l":
		m.page.SelectCategory((state.CurrentWaybillType + 1) % categories)
	case "shift+tab", "left", "h":
		m.page.SelectCategory((state.CurrentWaybillType + categories - 1) % categories)
	case "]":
		m.page.SelectFilter((state.CurrentOrderType + 1) % filters)
	case "[":
		m.page.SelectFilter((state.CurrentOrderType + filters - 1) % filters)
	case "down", "j":
		m.moveCursor(1)
	case "up", "k":
		m.moveCursor(-1)
	case "r":
		m.page.Refresh()
	case "c":
		if card, ok := m.selected(); ok && card.Cancel && !m.cancelling {
			m.page.RequestCancel(card.OrderNo)
		}
	case "enter":
		if card, ok := m.selected(); ok {
			m.report(m.page.OpenDetail(m.ctx, card))
		}
	case "/":
		m.report(m.page.OpenQuery(m.ctx))
		m.query.SetValue("")
		m.matches, m.lookErr = nil, nil
		return m.query.Focus()
	default:
		// Digits activate a category through the bus, as another page would.
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= categories {
			m.activate(n - 1)
		}
	}
	return nil
}

func (m *Model) handlePopupKey(msg tea.KeyMsg) tea.Cmd {
	confirm := msg.String() == "y" || msg.String() == "enter"
	dismiss := msg.String() == "n" || msg.String() == "esc"
	if !confirm && !dismiss {
		return nil
	}

	switch m.page.State().Popup {
	case waybill.PopupCancelConfirm:
		if dismiss {
			m.page.DismissCancel()
			return nil
		}
		orderNo := m.page.BeginCancel()
		m.cancelling = true
		ctx, st := m.ctx, m.cfg.Store
		return func() tea.Msg {
			return cancelResultMsg{orderNo: orderNo, err: st.CancelOrder(ctx, orderNo)}
		}
	case waybill.PopupFavCompany:
		if confirm {
			m.report(m.page.ConfirmFavCompany(m.ctx))
		} else {
			m.report(m.page.DismissFavCompany(m.ctx))
		}
	case waybill.PopupRecommend:
		if confirm {
			m.report(m.page.ConfirmRecommend(m.ctx))
		} else {
			m.page.DismissRecommend()
		}
	case waybill.PopupRecommendAftermath:
		m.page.AcknowledgeAftermath()
	}
	return nil
}

func (m *Model) handleRouteKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" || (msg.String() == "q" && m.shell.route() != waybill.QueryURL) {
		m.query.Blur()
		if m.shell.back() {
			m.page.NotifyShown(m.ctx)
		}
		return nil
	}
	if m.shell.route() != waybill.QueryURL {
		return nil
	}
	if msg.String() == "enter" {
		return m.lookup(strings.TrimSpace(m.query.Value()))
	}
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return cmd
}

func (m *Model) lookup(q string) tea.Cmd {
	if q == "" || m.cfg.Finder == nil {
		return nil
	}
	ctx, finder := m.ctx, m.cfg.Finder
	return func() tea.Msg {
		matches, err := finder.Find(ctx, q)
		return lookupResultMsg{query: q, matches: matches, err: err}
	}
}

func (m *Model) activate(index int) {
	if m.cfg.Bus == nil {
		m.page.SelectCategory(index)
		return
	}
	m.cfg.Bus.Publish(m.ctx, &models.Event{
		Type:        models.EventTypeWaybillActivated,
		WaybillType: index,
		Metadata:    map[string]string{"source": "shortcut"},
	})
}

// toastActionFailed is shown when a navigation or popup request fails.
const toastActionFailed = "操作失败，请稍后重试"

func (m *Model) report(err error) {
	if err == nil {
		return
	}
	log := logging.Component("tui")
	log.Warn().Err(err).Msg("page request failed")
	m.shell.ShowToast(waybill.Toast{Title: toastActionFailed, Icon: waybill.ToastIconNone, Duration: m.cfg.ToastDuration})
}

func (m *Model) onStateChange(prev, next waybill.ViewState) {
	if prev.CurrentWaybillType != next.CurrentWaybillType || prev.CurrentOrderType != next.CurrentOrderType {
		m.cursor = 0
	}
	if next.Popup == waybill.PopupRecommend && prev.Popup != waybill.PopupRecommend {
		m.shell.tabBar = false
	}
}

func (m *Model) moveCursor(delta int) {
	cards := m.page.CardList()
	if len(cards) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(cards)-1)
	if delta > 0 && m.cursor == len(cards)-1 {
		m.page.LoadMore()
	}
}

func (m *Model) clampCursor() {
	n := len(m.page.CardList())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) selected() (waybill.Card, bool) {
	cards := m.page.CardList()
	if m.cursor < 0 || m.cursor >= len(cards) {
		return waybill.Card{}, false
	}
	return cards[m.cursor], true
}
