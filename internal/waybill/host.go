package waybill

import (
	"context"
	"time"

	"github.com/tOgg1/waybill/internal/models"
)

// Navigation targets and user-facing strings.
const (
	FavCompanyURL = "/pages/company/lists"
	RecommendURL  = "/pages/company/select?redirect=companyList"
	QueryURL      = "./waybillQuery"
	DetailURL     = "./waybillDetail"

	LoadingTitle     = "加载中"
	ToastDeleted     = "已删除"
	ToastCancelError = "取消失败，请稍后重试"
	ToastIconNone    = "none"
)

// ListStore is the external owner of the order list and its fetch status.
type ListStore interface {
	// QueryOrderList starts a fetch. Progress is reported through snapshots.
	QueryOrderList(ctx context.Context, q models.ListQuery)
	Snapshot() models.StoreSnapshot
	CancelOrder(ctx context.Context, orderNo string) error
	RemoveItemByID(id string)
	// GetPopupInfo loads the home popup list and guide flag asynchronously.
	GetPopupInfo(ctx context.Context)
	SetPopupRead(ctx context.Context) error
}

// Loading describes a blocking loading indicator.
type Loading struct {
	Title string
	Mask  bool
}

// Toast is a transient message.
type Toast struct {
	Title    string
	Icon     string
	Duration time.Duration
}

// SystemInfo describes the display the page is rendered on.
type SystemInfo struct {
	Platform string
	Width    int
	Height   int
	Terminal bool
}

// Host is the shell the page runs in.
type Host interface {
	NavigateTo(ctx context.Context, url string) error
	ShowTabBar()
	ShowLoading(l Loading)
	HideLoading()
	ShowToast(t Toast)
	SystemInfo(ctx context.Context) (SystemInfo, error)
}

// Storage is a small persistent key-value store.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
