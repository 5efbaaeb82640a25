package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tOgg1/waybill/internal/models"
	"github.com/tOgg1/waybill/internal/waybill"
)

func init() {
	rootCmd.AddCommand(cancelCmd)
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <order-no>",
	Short: "Cancel a shipment awaiting collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := openPageEnv(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		ship := GetConfig().Catalog.IndexOf(models.WaybillTypeShip)
		route := waybill.RouteParams{}
		if ship >= 0 {
			route.Type = fmt.Sprint(ship)
		}
		page, err := waybill.NewPage(route, env.pageOptions(&headlessHost{out: os.Stdout}))
		if err != nil {
			return err
		}
		unsubscribe := env.store.Subscribe(page.ObserveStore)
		defer unsubscribe()

		page.RequestCancel(args[0])
		// The page already reported the reason as a toast.
		if err := page.ConfirmCancel(ctx); err != nil {
			return fmt.Errorf("order %s was not cancelled", args[0])
		}
		PrintNextSteps(os.Stdout, HintContext{Action: "cancel", OrderNo: args[0]})
		return nil
	},
}
