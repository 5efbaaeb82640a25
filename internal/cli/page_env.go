package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tOgg1/waybill/internal/config"
	"github.com/tOgg1/waybill/internal/db"
	"github.com/tOgg1/waybill/internal/events"
	"github.com/tOgg1/waybill/internal/logging"
	"github.com/tOgg1/waybill/internal/models"
	"github.com/tOgg1/waybill/internal/store"
	"github.com/tOgg1/waybill/internal/waybill"
)

var (
	routeType      string
	routeOrderType string
)

func addRouteFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&routeType, "type", "", "category index or code (receipt, ship)")
	cmd.Flags().StringVar(&routeOrderType, "order-type", "", "status filter index within the category")
}

// pageEnv wires the storage, bus and list store a page runs on.
type pageEnv struct {
	db       *db.DB
	waybills *db.WaybillRepository
	popups   *db.PopupRepository
	kv       *db.KVRepository
	bus      *events.InMemoryPublisher
	store    *store.WaybillStore
}

func openPageEnv(ctx context.Context, synchronous bool) (*pageEnv, error) {
	database, err := openDatabase(ctx)
	if err != nil {
		return nil, err
	}
	cfg := GetConfig()

	env := &pageEnv{
		db:       database,
		waybills: db.NewWaybillRepository(database),
		popups:   db.NewPopupRepository(database),
		kv:       db.NewKVRepository(database),
		bus:      events.NewInMemoryPublisher(events.WithRepository(db.NewEventRepository(database))),
	}
	opts := []store.Option{
		store.WithPageSize(cfg.List.PageSize),
		store.WithQueryDelay(cfg.List.QueryDelay),
	}
	if synchronous {
		opts = append(opts, store.WithSynchronous())
	}
	env.store = store.New(env.waybills, env.popups, opts...)
	return env, nil
}

func (e *pageEnv) Close() error {
	e.store.Close()
	e.bus.Close()
	return e.db.Close()
}

func (e *pageEnv) pageOptions(host waybill.Host) waybill.Options {
	cfg := GetConfig()
	return waybill.Options{
		Catalog:         cfg.Catalog,
		Store:           e.store,
		Host:            host,
		Storage:         e.kv,
		Bus:             e.bus,
		PageID:          cfg.Page.ID,
		GuideStorageKey: cfg.Page.GuideStorageKey,
		ToastDuration:   cfg.Page.ToastDuration,
	}
}

// resolveRoute builds route params from flags, falling back to the saved
// context when no flag was given.
func resolveRoute(cmd *cobra.Command, contexts *config.ContextStore) (waybill.RouteParams, error) {
	cfg := GetConfig()
	if !cmd.Flags().Changed("type") && !cmd.Flags().Changed("order-type") {
		if !cfg.Page.RestoreContext || contexts == nil {
			return waybill.RouteParams{}, nil
		}
		saved, err := contexts.Load()
		if err != nil {
			log := logging.Component("cli")
			log.Warn().Err(err).Msg("ignoring unreadable page context")
			return waybill.RouteParams{}, nil
		}
		if saved.IsEmpty() {
			return waybill.RouteParams{}, nil
		}
		return waybill.RouteParams{
			Type:      strconv.Itoa(saved.WaybillType),
			OrderType: strconv.Itoa(saved.OrderType),
		}, nil
	}

	route := waybill.RouteParams{Type: routeType, OrderType: routeOrderType}
	if routeType != "" {
		if _, err := strconv.Atoi(routeType); err != nil {
			idx := cfg.Catalog.IndexOf(models.WaybillType(strings.ToLower(routeType)))
			if idx < 0 {
				return route, fmt.Errorf("unknown waybill type %q", routeType)
			}
			route.Type = strconv.Itoa(idx)
		}
	}
	return route, nil
}

// saveContextOnChange persists tab selections as the page changes them.
func saveContextOnChange(contexts *config.ContextStore) func(prev, next waybill.ViewState) {
	return func(prev, next waybill.ViewState) {
		if prev.CurrentWaybillType == next.CurrentWaybillType && prev.CurrentOrderType == next.CurrentOrderType {
			return
		}
		saved := &config.Context{}
		saved.SetWaybillType(next.CurrentWaybillType)
		saved.SetOrderType(next.CurrentOrderType)
		if err := contexts.Save(saved); err != nil {
			log := logging.Component("cli")
			log.Warn().Err(err).Msg("failed to save page context")
		}
	}
}

// headlessHost runs the page without a screen. Toasts go to out.
type headlessHost struct {
	out io.Writer
}

func (h *headlessHost) NavigateTo(_ context.Context, url string) error {
	log := logging.Component("cli")
	log.Info().Str("url", url).Msg("navigate")
	return nil
}

func (h *headlessHost) ShowTabBar() {}

func (h *headlessHost) ShowLoading(l waybill.Loading) {
	log := logging.Component("cli")
	log.Debug().Str("title", l.Title).Msg("loading")
}

func (h *headlessHost) HideLoading() {}

func (h *headlessHost) ShowToast(t waybill.Toast) {
	fmt.Fprintln(h.out, t.Title)
}

func (h *headlessHost) SystemInfo(context.Context) (waybill.SystemInfo, error) {
	fd := int(os.Stdout.Fd())
	info := waybill.SystemInfo{Platform: runtime.GOOS, Terminal: term.IsTerminal(fd)}
	if info.Terminal {
		w, h, err := term.GetSize(fd)
		if err != nil {
			return info, err
		}
		info.Width, info.Height = w, h
	}
	return info, nil
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
