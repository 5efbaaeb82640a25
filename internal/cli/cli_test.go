package cli

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/waybill/internal/db"
	"github.com/tOgg1/waybill/internal/models"
)

func TestWriteTableAlignsWideRunes(t *testing.T) {
	var buf bytes.Buffer
	err := writeTable(&buf, []string{"NO", "STATUS", "CANCEL"}, [][]string{
		{"WB1", "待揽件", "yes"},
		{"WB22", "received", "no"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "NO    STATUS    CANCEL", lines[0])
	require.Equal(t, "WB1   待揽件    yes", lines[1])
	require.Equal(t, "WB22  received  no", lines[2])
}

func TestWriteTableEmptyHeaders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, nil, nil))
	require.Empty(t, buf.String())
}

func TestGenerateHints(t *testing.T) {
	tests := []struct {
		name string
		ctx  HintContext
		want []string
	}{
		{"list with more", HintContext{Action: "list", WaybillType: "ship", Page: 2, HasMore: true}, []string{"waybill list --type ship --page 3"}},
		{"list exhausted", HintContext{Action: "list", WaybillType: "ship", Page: 2}, nil},
		{"query cancelable", HintContext{Action: "query", OrderNo: "WB1"}, []string{"waybill cancel WB1"}},
		{"query without order", HintContext{Action: "query"}, nil},
		{"unknown", HintContext{Action: "nope"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, generateHints(tt.ctx))
		})
	}
}

func TestPrintNextStepsSilentForJSON(t *testing.T) {
	prev := jsonOutput
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = prev })

	var buf bytes.Buffer
	PrintNextSteps(&buf, HintContext{Action: "seed"})
	require.Empty(t, buf.String())
}

func TestSeedWaybillsKeepsCancelableOnShipWaitCollect(t *testing.T) {
	database, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	_, err = database.MigrateUp(context.Background())
	require.NoError(t, err)

	repo := db.NewWaybillRepository(database)
	created, err := seedWaybills(context.Background(), repo, 12, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.Len(t, created, 12)

	for _, w := range created {
		require.True(t, strings.HasPrefix(w.OrderNo, "WB"))
		if w.WaybillType == models.WaybillTypeReceipt {
			require.NotEqual(t, models.OrderStatusWaitCollect, w.Status)
		}
		require.Equal(t, w.Status == models.OrderStatusWaitCollect, w.Cancelable)
	}

	nos, err := repo.OrderNos(context.Background())
	require.NoError(t, err)
	require.Len(t, nos, 12)
}

func TestRedactMetadata(t *testing.T) {
	got := redactMetadata(map[string]string{
		"receiver_phone": "13812345678",
		"note":           "call 13812345678",
		"source":         "shortcut",
	})
	require.Equal(t, map[string]string{
		"receiver_phone": "[REDACTED]",
		"note":           "call 138****5678",
		"source":         "shortcut",
	}, got)
	require.Nil(t, redactMetadata(nil))
}

func TestEventRowFromRecentEvents(t *testing.T) {
	database, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	ctx := context.Background()
	_, err = database.MigrateUp(ctx)
	require.NoError(t, err)

	repo := db.NewEventRepository(database)
	at := time.Date(2026, 10, 19, 9, 30, 0, 0, time.Local)
	require.NoError(t, repo.Create(ctx, &models.Event{
		Type:        models.EventTypeWaybillActivated,
		WaybillType: 1,
		Timestamp:   at,
		Metadata:    map[string]string{"source": "shortcut", "phone": "13812345678"},
	}))

	events, err := repo.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	events[0].Metadata = redactMetadata(events[0].Metadata)
	require.Equal(t, []string{
		"2026-10-19 09:30:00",
		"waybill.active",
		"-",
		"1",
		"phone=[REDACTED] source=shortcut",
	}, eventRow(events[0]))
}
