package waybill

import (
	"context"
	"errors"
	"time"

	"github.com/tOgg1/waybill/internal/models"
)

type fakeStore struct {
	queries        []models.ListQuery
	snap           models.StoreSnapshot
	listener       func(models.StoreSnapshot)
	cancelErr      error
	cancelled      []string
	removed        []string
	popupInfoCalls int
	popupReadCalls int
	readErr        error
}

func (f *fakeStore) QueryOrderList(_ context.Context, q models.ListQuery) {
	f.queries = append(f.queries, q)
}

func (f *fakeStore) Snapshot() models.StoreSnapshot { return f.snap }

func (f *fakeStore) CancelOrder(_ context.Context, orderNo string) error {
	f.cancelled = append(f.cancelled, orderNo)
	return f.cancelErr
}

func (f *fakeStore) RemoveItemByID(id string) {
	f.removed = append(f.removed, id)
}

func (f *fakeStore) GetPopupInfo(context.Context) { f.popupInfoCalls++ }

func (f *fakeStore) SetPopupRead(context.Context) error {
	f.popupReadCalls++
	return f.readErr
}

func (f *fakeStore) push(snap models.StoreSnapshot) {
	f.snap = snap
	if f.listener != nil {
		f.listener(snap)
	}
}

func (f *fakeStore) pushStatus(st models.FetchStatus) {
	snap := f.snap
	snap.Status = st
	f.push(snap)
}

type fakeHost struct {
	calls       []string
	loadings    []Loading
	toasts      []Toast
	navigateErr error
	info        SystemInfo
	infoErr     error
}

func (h *fakeHost) NavigateTo(_ context.Context, url string) error {
	h.calls = append(h.calls, "navigate:"+url)
	return h.navigateErr
}

func (h *fakeHost) ShowTabBar() { h.calls = append(h.calls, "showTabBar") }

func (h *fakeHost) ShowLoading(l Loading) {
	h.calls = append(h.calls, "showLoading")
	h.loadings = append(h.loadings, l)
}

func (h *fakeHost) HideLoading() { h.calls = append(h.calls, "hideLoading") }

func (h *fakeHost) ShowToast(t Toast) {
	h.calls = append(h.calls, "toast:"+t.Title)
	h.toasts = append(h.toasts, t)
}

func (h *fakeHost) SystemInfo(context.Context) (SystemInfo, error) {
	return h.info, h.infoErr
}

func (h *fakeHost) count(call string) int {
	n := 0
	for _, c := range h.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakeStorage struct {
	values map[string]string
	getErr error
	setErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{values: make(map[string]string)}
}

func (s *fakeStorage) Get(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *fakeStorage) Set(_ context.Context, key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

var errBoom = errors.New("boom")
