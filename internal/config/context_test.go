package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestContext_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want bool
	}{
		{name: "zero value", ctx: Context{}, want: true},
		{name: "indexes without timestamp", ctx: Context{WaybillType: 1}, want: true},
		{name: "saved", ctx: Context{UpdatedAt: time.Now()}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.IsEmpty(); got != tt.want {
				t.Errorf("Context.IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContext_SetWaybillTypeResetsOrderType(t *testing.T) {
	ctx := &Context{}
	ctx.SetWaybillType(1)
	ctx.SetOrderType(3)

	ctx.SetWaybillType(1)
	if ctx.OrderType != 3 {
		t.Errorf("same category should keep order type, got %d", ctx.OrderType)
	}

	ctx.SetWaybillType(0)
	if ctx.OrderType != 0 {
		t.Errorf("category change should reset order type, got %d", ctx.OrderType)
	}
	if ctx.IsEmpty() {
		t.Error("context should not be empty after a selection")
	}
}

func TestContext_String(t *testing.T) {
	ctx := &Context{}
	if got := ctx.String(); got != "(no context set)" {
		t.Errorf("String() = %q", got)
	}
	ctx.SetWaybillType(1)
	ctx.SetOrderType(2)
	if got := ctx.String(); got != "type:1 order_type:2" {
		t.Errorf("String() = %q", got)
	}
}

func TestContextStore_LoadMissing(t *testing.T) {
	store := NewContextStore(filepath.Join(t.TempDir(), "context.yaml"))

	ctx, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !ctx.IsEmpty() {
		t.Error("missing file should load as empty context")
	}
}

func TestContextStore_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "context.yaml")
	store := NewContextStore(path)

	ctx := &Context{}
	ctx.SetWaybillType(1)
	ctx.SetOrderType(4)
	if err := store.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.WaybillType != 1 || loaded.OrderType != 4 {
		t.Errorf("loaded = %+v", loaded)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("context file should be removed, stat err = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() should be a no-op, got %v", err)
	}
}

func TestContextStore_LoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.yaml")
	if err := os.WriteFile(path, []byte("waybill_type: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewContextStore(path).Load(); err == nil {
		t.Error("expected parse error")
	}
}
