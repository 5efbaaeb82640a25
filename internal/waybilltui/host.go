package waybilltui

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/tOgg1/waybill/internal/waybill"
)

var errEmptyURL = errors.New("navigate: empty url")

type toastExpiredMsg struct {
	seq int
}

// shell implements waybill.Host on top of the bubbletea model. Every call
// arrives on the Update goroutine; commands it needs are collected and
// returned from Update.
type shell struct {
	loading  *waybill.Loading
	toast    *waybill.Toast
	toastSeq int
	tabBar   bool
	routes   []string
	cmds     []tea.Cmd

	onNavigate func(ctx context.Context)
	sysInfo    func(ctx context.Context) (waybill.SystemInfo, error)
}

func newShell() *shell {
	return &shell{tabBar: true, sysInfo: terminalInfo}
}

func (s *shell) NavigateTo(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errEmptyURL
	}
	s.routes = append(s.routes, url)
	if len(s.routes) == 1 && s.onNavigate != nil {
		s.onNavigate(ctx)
	}
	return nil
}

func (s *shell) ShowTabBar() { s.tabBar = true }

func (s *shell) ShowLoading(l waybill.Loading) { s.loading = &l }

func (s *shell) HideLoading() { s.loading = nil }

func (s *shell) ShowToast(t waybill.Toast) {
	s.toastSeq++
	seq := s.toastSeq
	s.toast = &t
	s.cmds = append(s.cmds, tea.Tick(t.Duration, func(_ time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	}))
}

func (s *shell) SystemInfo(ctx context.Context) (waybill.SystemInfo, error) {
	return s.sysInfo(ctx)
}

func (s *shell) expireToast(seq int) {
	if seq == s.toastSeq {
		s.toast = nil
	}
}

// route returns the screen on top of the list page, or "".
func (s *shell) route() string {
	if len(s.routes) == 0 {
		return ""
	}
	return s.routes[len(s.routes)-1]
}

// back pops a route and reports whether the list page is visible again.
func (s *shell) back() bool {
	if len(s.routes) == 0 {
		return false
	}
	s.routes = s.routes[:len(s.routes)-1]
	return len(s.routes) == 0
}

func (s *shell) drain() tea.Cmd {
	if len(s.cmds) == 0 {
		return nil
	}
	cmds := s.cmds
	s.cmds = nil
	return tea.Batch(cmds...)
}

func terminalInfo(context.Context) (waybill.SystemInfo, error) {
	fd := int(os.Stdout.Fd())
	info := waybill.SystemInfo{Platform: runtime.GOOS, Terminal: term.IsTerminal(fd)}
	if !info.Terminal {
		return info, errors.New("stdout is not a terminal")
	}
	w, h, err := term.GetSize(fd)
	if err != nil {
		return info, err
	}
	info.Width, info.Height = w, h
	return info, nil
}
