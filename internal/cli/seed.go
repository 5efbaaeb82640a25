package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tOgg1/waybill/internal/db"
	"github.com/tOgg1/waybill/internal/models"
)

var (
	seedCount  int
	seedPopups int
	seedGuide  bool
)

var seedCompanies = []string{"顺丰速运", "中通快递", "圆通速递", "韵达快递", "京东物流", "EMS"}

var seedPeople = []string{"张三", "李四", "王五", "赵六", "陈七"}

var seedCities = []string{"上海市浦东新区", "北京市朝阳区", "广州市天河区", "深圳市南山区", "杭州市西湖区"}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVar(&seedCount, "count", 20, "number of waybills to create")
	seedCmd.Flags().IntVar(&seedPopups, "popups", 1, "number of unread home popups to create")
	seedCmd.Flags().BoolVar(&seedGuide, "guide", true, "enable the recommend guide")
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo waybills",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		created, err := seedWaybills(ctx, db.NewWaybillRepository(database), seedCount, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
		if err != nil {
			return err
		}

		popups := db.NewPopupRepository(database)
		for i := 0; i < seedPopups; i++ {
			if err := popups.Create(ctx, &models.HomePopup{
				Company: seedCompanies[i%len(seedCompanies)],
				Title:   "已为您开通上门取件",
			}); err != nil {
				return err
			}
		}
		if err := popups.SetShowGuide(ctx, seedGuide); err != nil {
			return err
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return writeItems(os.Stdout, created)
		}
		fmt.Fprintf(os.Stdout, "Created %d waybills and %d home popups.\n", len(created), seedPopups)
		PrintNextSteps(os.Stdout, HintContext{Action: "seed"})
		return nil
	},
}

func seedWaybills(ctx context.Context, repo *db.WaybillRepository, n int, rng *rand.Rand) ([]*models.Waybill, error) {
	shipStatuses := []models.OrderStatus{
		models.OrderStatusWaitCollect,
		models.OrderStatusCollect,
		models.OrderStatusWaitPickup,
		models.OrderStatusReceived,
	}
	receiptStatuses := shipStatuses[1:]

	now := time.Now().UTC()
	created := make([]*models.Waybill, 0, n)
	for i := 0; i < n; i++ {
		w := &models.Waybill{
			OrderNo:       "WB" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12]),
			Company:       seedCompanies[rng.IntN(len(seedCompanies))],
			Sender:        seedPeople[rng.IntN(len(seedPeople))],
			Receiver:      seedPeople[rng.IntN(len(seedPeople))],
			ReceiverPhone: fmt.Sprintf("13%d%08d", rng.IntN(10), rng.IntN(100000000)),
			Address:       seedCities[rng.IntN(len(seedCities))],
			CreatedAt:     now.Add(-time.Duration(i) * 37 * time.Minute),
		}
		if i%2 == 0 {
			w.WaybillType = models.WaybillTypeShip
			w.Status = shipStatuses[rng.IntN(len(shipStatuses))]
		} else {
			w.WaybillType = models.WaybillTypeReceipt
			w.Status = receiptStatuses[rng.IntN(len(receiptStatuses))]
		}
		w.Cancelable = w.Status == models.OrderStatusWaitCollect
		if err := repo.Create(ctx, w); err != nil {
			return created, fmt.Errorf("failed to create waybill %s: %w", w.OrderNo, err)
		}
		created = append(created, w)
	}
	return created, nil
}
