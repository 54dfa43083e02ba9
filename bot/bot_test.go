package bot

import (
	"testing"

	"streetkitchen/models"
	"streetkitchen/services"
)

func chat(id int64) *int64 { return &id }

func TestCardMarkup(t *testing.T) {
	if kb := cardMarkup(services.OrderCardContent{Text: "x"}); kb != nil {
		t.Errorf("cardMarkup without buttons = %+v, want nil", kb)
	}

	kb := cardMarkup(services.OrderCardContent{Buttons: [][]services.OrderCardButton{
		{{Text: "Confirm", CallbackData: "order_status:1:confirmed"}},
		{{Text: "Track", URL: "https://example.test/t/1"}, {Text: "Cancel", CallbackData: "order_status:1:cancelled"}},
	}})
	if kb == nil || len(kb.InlineKeyboard) != 2 {
		t.Fatalf("rows = %+v, want 2", kb)
	}
	first := kb.InlineKeyboard[0][0]
	if first.CallbackData == nil || *first.CallbackData != "order_status:1:confirmed" {
		t.Errorf("first button = %+v", first)
	}
	track := kb.InlineKeyboard[1][0]
	if track.URL == nil || *track.URL != "https://example.test/t/1" || track.CallbackData != nil {
		t.Errorf("url button = %+v", track)
	}
}

func TestCardTargets(t *testing.T) {
	tests := []struct {
		name   string
		vendor models.Vendor
		admin  int64
		want   map[string]int64
	}{
		{"vendor and admin", models.Vendor{TelegramChatID: chat(10)}, 99, map[string]int64{"vendor": 10, "admin": 99}},
		{"vendor only", models.Vendor{TelegramChatID: chat(10)}, 0, map[string]int64{"vendor": 10}},
		{"admin only", models.Vendor{}, 99, map[string]int64{"admin": 99}},
		{"same chat", models.Vendor{TelegramChatID: chat(99)}, 99, map[string]int64{"vendor": 99}},
		{"none", models.Vendor{}, 0, map[string]int64{}},
	}
	for _, tt := range tests {
		got := cardTargets(&tt.vendor, tt.admin)
		if len(got) != len(tt.want) {
			t.Errorf("%s: cardTargets = %v, want %v", tt.name, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("%s: %s = %d, want %d", tt.name, k, got[k], v)
			}
		}
	}
}

func TestCanManage(t *testing.T) {
	v := &models.Vendor{TelegramChatID: chat(10)}
	tests := []struct {
		chatID int64
		admin  int64
		want   bool
	}{
		{10, 0, true},
		{99, 99, true},
		{11, 99, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		if got := canManage(tt.chatID, v, tt.admin); got != tt.want {
			t.Errorf("canManage(%d, admin=%d) = %v, want %v", tt.chatID, tt.admin, got, tt.want)
		}
	}
	if canManage(10, &models.Vendor{}, 0) {
		t.Error("vendor without chat should not be managed from any chat")
	}
}

func TestForgetFinishedOrder(t *testing.T) {
	b := &Bot{}
	held := func() int {
		n := 0
		b.orderLocks.Range(func(_, _ interface{}) bool { n++; return true })
		return n
	}

	b.lockOrder(1)()
	b.lockOrder(2)()
	tests := []struct {
		orderID int64
		status  string
		want    int
	}{
		{1, services.OrderStatusConfirmed, 2},
		{1, services.OrderStatusDelivered, 1},
		{2, services.OrderStatusCancelled, 0},
	}
	for _, tt := range tests {
		b.forgetFinishedOrder(tt.orderID, tt.status)
		if got := held(); got != tt.want {
			t.Errorf("after %d -> %s: locks = %d, want %d", tt.orderID, tt.status, got, tt.want)
		}
	}
}
