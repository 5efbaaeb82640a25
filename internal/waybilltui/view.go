package waybilltui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/tOgg1/waybill/internal/waybill"
)

var routeTitles = map[string]string{
	waybill.FavCompanyURL: "常用快递公司",
	waybill.RecommendURL:  "选择快递公司",
}

func (m *Model) View() string {
	if r := m.shell.route(); r != "" {
		return m.renderRoute(r)
	}

	sections := []string{m.renderTabs(), m.renderFilters()}
	if popup := m.renderPopup(); popup != "" {
		sections = append(sections, popup)
	} else {
		sections = append(sections, m.renderCards())
	}
	sections = append(sections, m.renderFooter())
	if t := m.shell.toast; t != nil {
		sections = append(sections, m.styles.toast.Render(t.Title))
	}
	if m.showHelp {
		sections = append(sections, m.styles.muted.Render(helpText))
	}
	if m.shell.tabBar {
		sections = append(sections, m.styles.tabBar.Render("首页    运单    我的"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

const helpText = "tab/←→ 切换收发件  [/] 切换状态  j/k 选择  r 刷新  c 取消发货  enter 详情  / 查询  q 退出"

func (m *Model) renderTabs() string {
	state := m.page.State()
	var tabs []string
	for i, cat := range m.page.Catalog().Categories {
		style := m.styles.tab
		if i == state.CurrentWaybillType {
			style = m.styles.activeTab
		}
		tabs = append(tabs, style.Render(cat.Label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderFilters() string {
	state := m.page.State()
	var filters []string
	for j, f := range m.page.Catalog().Filters(state.CurrentWaybillType) {
		style := m.styles.filter
		if j == state.CurrentOrderType {
			style = m.styles.activeFilter
		}
		filters = append(filters, style.Render(f.Label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, filters...)
}

// Empty list copy.
const (
	EmptyTitle    = "暂无该状态的运单记录哦~"
	EmptySubtitle = "根据您所关注的物流公司自动查询运单"
)

func (m *Model) renderCards() string {
	cards := m.page.CardList()
	if len(cards) == 0 {
		if m.page.State().IsLoading {
			return ""
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			m.styles.cardTitle.Render(EmptyTitle),
			m.styles.muted.Render(EmptySubtitle),
		)
	}

	start, end := m.visibleRange(len(cards))
	rendered := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rendered = append(rendered, m.renderCard(cards[i], i == m.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

// visibleRange keeps the cursor on screen. Each card takes four lines.
func (m *Model) visibleRange(n int) (int, int) {
	const cardHeight = 4
	rows := n
	if m.height > 0 {
		rows = max((m.height-8)/cardHeight, 1)
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	return start, min(start+rows, n)
}

func (m *Model) renderCard(c waybill.Card, active bool) string {
	inner := m.cfg.CardWidth - 4
	status := m.styles.status.Render(c.StatusText)
	titleWidth := max(inner-runewidth.StringWidth(c.StatusText)-1, 1)
	title := runewidth.Truncate(c.Title, titleWidth, "…")
	gap := strings.Repeat(" ", max(inner-runewidth.StringWidth(title)-runewidth.StringWidth(c.StatusText), 1))

	lines := []string{m.styles.cardTitle.Render(title) + gap + status}
	meta := c.Time
	if c.Subtitle != "" {
		meta = strings.TrimSpace(runewidth.Truncate(c.Subtitle, inner-runewidth.StringWidth(c.Time)-2, "…") + "  " + c.Time)
	}
	meta = m.styles.muted.Render(meta)
	if c.Cancel {
		meta += "  " + m.styles.cancel.Render("[c] 取消发货")
	}
	lines = append(lines, meta)

	style := m.styles.card
	if active {
		style = m.styles.activeCard
	}
	return style.Width(m.cfg.CardWidth).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFooter() string {
	state := m.page.State()
	switch {
	case m.shell.loading != nil:
		return m.spinner.View() + " " + m.styles.loadingMask.Render(m.shell.loading.Title)
	case state.IsRefreshing:
		return m.spinner.View() + " " + m.styles.muted.Render("刷新中")
	case state.IsLoading:
		return m.spinner.View() + " " + m.styles.muted.Render("加载更多")
	case m.cancelling:
		return m.spinner.View() + " " + m.styles.muted.Render("取消中")
	case state.HasMore:
		return m.styles.muted.Render("↓ 加载更多")
	case len(m.page.CardList()) > 0:
		return m.styles.muted.Render("没有更多了")
	default:
		return ""
	}
}

func (m *Model) renderPopup() string {
	state := m.page.State()
	var title, body, keys string
	switch state.Popup {
	case waybill.PopupCancelConfirm:
		title = "取消发货"
		body = fmt.Sprintf("确定要取消运单 %s 吗？取消后不可恢复。", state.CancelOrderNo)
		keys = "[y] 确定  [n] 再想想"
	case waybill.PopupFavCompany:
		title = "常用快递公司"
		var names []string
		for _, p := range m.page.Snapshot().HomePopups {
			names = append(names, strings.TrimSpace(p.Company+" "+p.Title))
		}
		body = "以下快递公司已为您开通：" + strings.Join(names, "、")
		keys = "[y] 去看看  [n] 关闭"
	case waybill.PopupRecommend:
		title = "设置常用快递公司"
		body = "设置常用快递公司后，寄件时将优先为您推荐，下单更快捷。"
		keys = "[y] 去设置  [n] 暂不设置"
	case waybill.PopupRecommendAftermath:
		title = "温馨提示"
		body = "您可以在「我的 > 常用快递公司」中随时设置。"
		keys = "[enter] 知道了"
	default:
		return ""
	}

	width := min(m.cfg.CardWidth, 48)
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.popupTitle.Render(title),
		"",
		wordwrap.String(body, width-6),
		"",
		m.styles.muted.Render(keys),
	)
	return m.styles.popup.Width(width).Render(content)
}

func (m *Model) renderRoute(route string) string {
	back := m.styles.muted.Render("esc 返回")
	switch {
	case route == waybill.QueryURL:
		return m.renderQuery(back)
	case strings.HasPrefix(route, waybill.DetailURL):
		return m.renderDetail(route, back)
	}
	title, ok := routeTitles[route]
	if !ok {
		title = route
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.styles.popupTitle.Render(title), "", back)
}

func (m *Model) renderDetail(route, back string) string {
	orderNo := ""
	if u, err := url.Parse(route); err == nil {
		orderNo = u.Query().Get("orderNo")
	}
	for _, c := range m.page.CardList() {
		if c.OrderNo != orderNo {
			continue
		}
		lines := []string{
			m.styles.popupTitle.Render(c.Title),
			"状态  " + m.styles.status.Render(c.StatusText),
		}
		if c.Subtitle != "" {
			lines = append(lines, wordwrap.String(c.Subtitle, m.cfg.CardWidth))
		}
		if c.Time != "" {
			lines = append(lines, m.styles.muted.Render(c.Time))
		}
		lines = append(lines, "", back)
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.styles.muted.Render("运单 "+orderNo+" 不存在"), "", back)
}

func (m *Model) renderQuery(back string) string {
	lines := []string{m.styles.popupTitle.Render("查询运单"), m.query.View(), ""}
	switch {
	case m.lookErr != nil:
		lines = append(lines, m.styles.cancel.Render(m.lookErr.Error()))
	case m.matches != nil && len(m.matches) == 0:
		lines = append(lines, m.styles.muted.Render("未找到相关运单"))
	default:
		for _, match := range m.matches {
			line := match.OrderNo
			if match.Exact() {
				line = m.styles.status.Render(line + "  ✓")
			}
			lines = append(lines, line)
		}
	}
	lines = append(lines, "", back)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
