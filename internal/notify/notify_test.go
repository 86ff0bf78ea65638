package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"spx-trader/internal/config"
	"spx-trader/internal/models"
)

// recordingChannel captures notifications for assertions.
type recordingChannel struct {
	name    string
	enabled bool
	fail    bool
	sent    []Notification
}

func (c *recordingChannel) Name() string    { return c.name }
func (c *recordingChannel) IsEnabled() bool { return c.enabled }

func (c *recordingChannel) Send(ctx context.Context, n Notification) error {
	if c.fail {
		return errors.New("channel down")
	}
	c.sent = append(c.sent, n)
	return nil
}

func TestMultiNotifierFanOut(t *testing.T) {
	mn := NewMultiNotifier(&config.NotificationConfig{})
	a := &recordingChannel{name: "a", enabled: true}
	b := &recordingChannel{name: "b", enabled: true}
	off := &recordingChannel{name: "off", enabled: false}
	mn.AddChannel(a)
	mn.AddChannel(b)
	mn.AddChannel(off)

	err := mn.Send(context.Background(), Notification{Type: NotificationInfo, Title: "hello"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Errorf("enabled channels got %d/%d notifications, want 1/1", len(a.sent), len(b.sent))
	}
	if len(off.sent) != 0 {
		t.Errorf("disabled channel received %d notifications", len(off.sent))
	}
	if a.sent[0].Timestamp.IsZero() {
		t.Error("timestamp not filled in")
	}
}

func TestMultiNotifierCollectsErrors(t *testing.T) {
	mn := NewMultiNotifier(&config.NotificationConfig{})
	good := &recordingChannel{name: "good", enabled: true}
	bad := &recordingChannel{name: "bad", enabled: true, fail: true}
	mn.AddChannel(good)
	mn.AddChannel(bad)

	err := mn.Send(context.Background(), Notification{Type: NotificationInfo})
	if err == nil {
		t.Fatal("expected an error from the failing channel")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("err = %v, want failing channel name", err)
	}
	if len(good.sent) != 1 {
		t.Error("failing channel should not block the healthy one")
	}
}

func TestMultiNotifierConfigChannels(t *testing.T) {
	mn := NewMultiNotifier(&config.NotificationConfig{
		Telegram: config.TelegramConfig{Enabled: true, BotToken: "t", ChatID: "c"},
		Slack:    config.SlackConfig{Enabled: true, WebhookURL: "https://hooks.example.com/x"},
	})
	if len(mn.channels) != 2 {
		t.Errorf("got %d channels, want telegram and slack", len(mn.channels))
	}
}

func TestSendTradeMessage(t *testing.T) {
	mn := NewMultiNotifier(&config.NotificationConfig{})
	ch := &recordingChannel{name: "rec", enabled: true}
	mn.AddChannel(ch)

	trade := &models.Trade{
		ID:         "T1",
		Kind:       models.KindIronCondor,
		Quantity:   2,
		NetPremium: 6.2,
		MaxProfit:  6.2,
		MaxLoss:    43.8,
		ProbProfit: 0.82,
		IsPaper:    true,
	}
	if err := mn.SendTrade(context.Background(), trade); err != nil {
		t.Fatalf("SendTrade: %v", err)
	}
	if len(ch.sent) != 1 {
		t.Fatalf("got %d notifications, want 1", len(ch.sent))
	}
	n := ch.sent[0]
	if n.Type != NotificationTrade {
		t.Errorf("Type = %v, want trade", n.Type)
	}
	if !strings.Contains(n.Title, "PAPER") {
		t.Errorf("title %q should flag paper mode", n.Title)
	}
	if !strings.Contains(n.Message, "Quantity: 2") {
		t.Errorf("message missing quantity: %q", n.Message)
	}
	if !strings.Contains(n.Message, "82.0%") {
		t.Errorf("message missing probability: %q", n.Message)
	}
}

func TestSendAnalysisNoRecommendations(t *testing.T) {
	mn := NewMultiNotifier(&config.NotificationConfig{})
	ch := &recordingChannel{name: "rec", enabled: true}
	mn.AddChannel(ch)

	snap := &models.MarketSnapshot{
		Timestamp: time.Date(2025, 8, 1, 7, 0, 0, 0, time.UTC),
		Direction: models.DirectionBearish,
		SpotPrice: 5000,
		VIXLevel:  22,
		RSI:       48,
	}
	if err := mn.SendAnalysis(context.Background(), snap, nil); err != nil {
		t.Fatalf("SendAnalysis: %v", err)
	}
	n := ch.sent[0]
	if !strings.Contains(n.Title, "2025-08-01") {
		t.Errorf("title %q missing date", n.Title)
	}
	if !strings.Contains(n.Message, "No trade recommendations") {
		t.Errorf("message %q missing no-trade note", n.Message)
	}
	if !strings.Contains(n.Message, "BEARISH") {
		t.Errorf("message %q missing direction", n.Message)
	}
}

func TestSendDailySummary(t *testing.T) {
	mn := NewMultiNotifier(&config.NotificationConfig{})
	ch := &recordingChannel{name: "rec", enabled: true}
	mn.AddChannel(ch)

	summary := &DailySummary{
		Date:          "2025-08-01",
		TotalTrades:   3,
		WinningTrades: 2,
		LosingTrades:  1,
		TotalPnL:      640,
		WinRate:       66.7,
	}
	if err := mn.SendDailySummary(context.Background(), summary); err != nil {
		t.Fatalf("SendDailySummary: %v", err)
	}
	n := ch.sent[0]
	if !strings.Contains(n.Message, "Total Trades: 3") {
		t.Errorf("message %q missing trade count", n.Message)
	}
	if !strings.Contains(n.Message, "+$640.00") {
		t.Errorf("message %q missing signed P&L", n.Message)
	}
}

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a < b & c > d", "a &lt; b &amp; c &gt; d"},
		{"<b>bold</b>", "&lt;b&gt;bold&lt;/b&gt;"},
	}
	for _, tt := range tests {
		if got := escapeHTML(tt.in); got != tt.want {
			t.Errorf("escapeHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNoOpNotifier(t *testing.T) {
	n := NewNoOpNotifier()
	ctx := context.Background()
	if err := n.Send(ctx, Notification{}); err != nil {
		t.Errorf("Send: %v", err)
	}
	if err := n.SendError(ctx, errors.New("x"), "ctx"); err != nil {
		t.Errorf("SendError: %v", err)
	}
	if err := n.SendDailySummary(ctx, &DailySummary{}); err != nil {
		t.Errorf("SendDailySummary: %v", err)
	}
}
