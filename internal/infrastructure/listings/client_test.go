package listings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
)

func TestSearchSendsPayloadAndParsesItems(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Method != http.MethodPost {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []entity.Listing{{ID: 101, Title: "2к Салтівка", Price: 28000}},
			"count": 14,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	filters := entity.FilterSet{
		DistrictIDs: []int{2},
		RoomsIn:     []int{2},
		PriceMax:    entity.IntPtr(30000),
	}

	items, total, err := c.Search(context.Background(), filters, 3, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 || items[0].ID != 101 {
		t.Errorf("items = %+v", items)
	}
	if total != 14 {
		t.Errorf("total = %d, want 14", total)
	}

	if got["price_max"] != float64(30000) || got["offset"] != float64(3) {
		t.Errorf("payload = %v", got)
	}
	if got["sort"] != "newest" || got["key"] != "secret" {
		t.Errorf("payload = %v", got)
	}
	if _, present := got["price_min"]; present {
		t.Error("unset bound must be omitted, not defaulted")
	}
}

func TestSearchAlternatePayloadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data":  []entity.Listing{{ID: 7}},
			"total": 1,
		})
	}))
	defer srv.Close()

	items, total, err := NewClient(srv.URL, "").Search(context.Background(), entity.FilterSet{}, 0, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 || items[0].ID != 7 || total != 1 {
		t.Errorf("items=%+v total=%d", items, total)
	}
}

func TestSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, _, err := NewClient(srv.URL, "").Search(context.Background(), entity.FilterSet{}, 0, 3); err == nil {
		t.Error("expected an error for non-2xx status")
	}
}
