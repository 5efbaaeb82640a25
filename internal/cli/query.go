package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tOgg1/waybill/internal/db"
	"github.com/tOgg1/waybill/internal/logging"
	"github.com/tOgg1/waybill/internal/lookup"
)

var queryLimit int

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().IntVar(&queryLimit, "limit", lookup.DefaultLimit, "maximum number of close matches")
}

var queryCmd = &cobra.Command{
	Use:   "query <order-no>",
	Short: "Find a waybill by order number",
	Long:  "Find a waybill by exact order number, listing the closest order numbers when there is no exact match.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		repo := db.NewWaybillRepository(database)
		matches, err := lookup.NewFinder(repo, queryLimit).Find(ctx, args[0])
		if err != nil {
			return err
		}
		if IsJSONOutput() || IsJSONLOutput() {
			return writeItems(os.Stdout, matches)
		}
		if len(matches) == 0 {
			fmt.Fprintf(os.Stdout, "No waybill matches %q.\n", args[0])
			return nil
		}

		if matches[0].Exact() {
			w, err := repo.GetByOrderNo(ctx, matches[0].OrderNo)
			if err != nil && !errors.Is(err, db.ErrWaybillNotFound) {
				return err
			}
			if w != nil {
				cat := GetConfig().Catalog
				fmt.Fprintf(os.Stdout, "%s  %s  %s\n", w.OrderNo, w.Company, cat.StatusLabel(w.Status))
				fmt.Fprintf(os.Stdout, "%s → %s  %s  %s\n\n", w.Sender, w.Receiver, logging.Redact(w.ReceiverPhone), w.Address)
				if w.Cancelable {
					defer PrintNextSteps(os.Stdout, HintContext{Action: "query", OrderNo: w.OrderNo})
				}
			}
		}

		rows := make([][]string, 0, len(matches))
		for _, m := range matches {
			rows = append(rows, []string{m.OrderNo, strconv.Itoa(m.Distance), formatYesNo(m.Exact())})
		}
		return writeTable(os.Stdout, []string{"ORDER NO", "DISTANCE", "EXACT"}, rows)
	},
}
