package cli

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tOgg1/waybill/internal/db"
	"github.com/tOgg1/waybill/internal/logging"
	"github.com/tOgg1/waybill/internal/models"
)

var eventsLimit int

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "maximum number of events to show")
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent page events",
	Long:  "Show the newest page.show, page.hide and waybill.active events recorded by the page bus.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		events, err := db.NewEventRepository(database).Recent(ctx, eventsLimit)
		if err != nil {
			return err
		}
		for _, e := range events {
			e.Metadata = redactMetadata(e.Metadata)
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return writeItems(os.Stdout, events)
		}
		if len(events) == 0 {
			fmt.Fprintln(os.Stdout, "No events recorded.")
			return nil
		}

		rows := make([][]string, 0, len(events))
		for _, e := range events {
			rows = append(rows, eventRow(e))
		}
		return writeTable(os.Stdout, []string{"TIME", "TYPE", "PAGE", "WAYBILL TYPE", "METADATA"}, rows)
	},
}

func eventRow(e *models.Event) []string {
	return []string{
		e.Timestamp.Local().Format(time.DateTime),
		string(e.Type),
		dashIfEmpty(e.PageID),
		strconv.Itoa(e.WaybillType),
		dashIfEmpty(formatMetadata(e.Metadata)),
	}
}

// redactMetadata masks sensitive metadata before it is printed.
func redactMetadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return m
	}
	raw := make(map[string]any, len(m))
	for k, v := range m {
		raw[k] = v
	}
	out := make(map[string]string, len(m))
	for k, v := range logging.RedactMap(raw) {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func formatMetadata(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, " ")
}
