package telegram

import (
	"context"
	"testing"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
)

func TestMemoryDialogStoreAssignsIDs(t *testing.T) {
	store := newMemoryDialogStore()

	if err := store.SaveMessage(context.Background(), dialogMessage{UserID: 1, Text: "привіт"}); err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	if store.messages[0].ID == "" || store.messages[0].CreatedAt.IsZero() {
		t.Errorf("message not stamped: %+v", store.messages[0])
	}

	req := viewingRequest{UserID: 1, Phone: "+380671234567", Filters: entity.FilterSet{RoomsIn: []int{2}}}
	if err := store.SaveViewingRequest(context.Background(), req); err != nil {
		t.Fatalf("SaveViewingRequest: %v", err)
	}
	if store.viewings[0].ID == "" {
		t.Error("viewing request id not assigned")
	}
}

func TestMemoryDialogStoreBounded(t *testing.T) {
	store := newMemoryDialogStore()
	for i := 0; i < memoryDialogLogCap+50; i++ {
		_ = store.SaveMessage(context.Background(), dialogMessage{UserID: 1, Text: "x"})
	}
	if len(store.messages) != memoryDialogLogCap {
		t.Errorf("log length = %d, want capped at %d", len(store.messages), memoryDialogLogCap)
	}
}
