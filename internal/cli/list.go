package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tOgg1/waybill/internal/waybill"
)

var listPages int

func init() {
	rootCmd.AddCommand(listCmd)
	addRouteFlags(listCmd)
	listCmd.Flags().IntVar(&listPages, "page", 1, "number of pages to load")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List waybills",
	Long:  "Run the waybill page without a screen and print the loaded cards.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listPages < 1 {
			return fmt.Errorf("--page must be at least 1")
		}
		route, err := resolveRoute(cmd, nil)
		if err != nil {
			return err
		}
		return runList(cmd.Context(), os.Stdout, route, listPages)
	},
}

func runList(ctx context.Context, out io.Writer, route waybill.RouteParams, pages int) error {
	env, err := openPageEnv(ctx, true)
	if err != nil {
		return err
	}
	defer env.Close()

	page, err := waybill.NewPage(route, env.pageOptions(&headlessHost{out: os.Stderr}))
	if err != nil {
		return err
	}
	unsubscribe := env.store.Subscribe(page.ObserveStore)
	defer unsubscribe()

	if err := page.Mount(ctx); err != nil {
		return err
	}
	defer page.Unmount()

	for i := 1; i < pages && page.State().HasMore; i++ {
		page.LoadMore()
	}

	cards := page.CardList()
	if IsJSONOutput() || IsJSONLOutput() {
		return writeItems(out, cards)
	}

	state := page.State()
	cat, _ := page.Catalog().Category(state.CurrentWaybillType)
	filter, _ := page.Catalog().Filter(state.CurrentWaybillType, state.CurrentOrderType)
	fmt.Fprintf(out, "%s / %s\n\n", cat.Label, filter.Label)

	if len(cards) == 0 {
		fmt.Fprintln(out, "No waybills found.")
		return nil
	}

	rows := make([][]string, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, []string{c.OrderNo, c.Title, c.StatusText, dashIfEmpty(c.Subtitle), dashIfEmpty(c.Time), formatYesNo(c.Cancel)})
	}
	if err := writeTable(out, []string{"ORDER NO", "TITLE", "STATUS", "DETAIL", "CREATED", "CANCELABLE"}, rows); err != nil {
		return err
	}

	status := page.Snapshot().Status
	fmt.Fprintf(out, "\n%d of %d shown\n", len(cards), status.ListCount)
	PrintNextSteps(out, HintContext{
		Action:      "list",
		WaybillType: string(cat.Code),
		Page:        status.PageNum,
		HasMore:     state.HasMore,
	})
	return nil
}
