// Package notify provides notification functionality for the trading application.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"spx-trader/internal/config"
	"spx-trader/internal/models"
	"spx-trader/internal/strategy"
	"spx-trader/pkg/utils"
)

// Notifier defines the interface for sending notifications.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
	SendAnalysis(ctx context.Context, snap *models.MarketSnapshot, recs []models.Recommendation) error
	SendTrade(ctx context.Context, trade *models.Trade) error
	SendDailySummary(ctx context.Context, summary *DailySummary) error
	SendError(ctx context.Context, err error, context string) error
}

// NotificationChannel defines the interface for a notification channel.
type NotificationChannel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
	IsEnabled() bool
}

// Notification represents a notification message.
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]interface{}
	Timestamp time.Time
}

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationAnalysis NotificationType = "analysis"
	NotificationTrade    NotificationType = "trade"
	NotificationError    NotificationType = "error"
	NotificationSummary  NotificationType = "summary"
	NotificationInfo     NotificationType = "info"
)

// DailySummary represents a daily trading summary.
type DailySummary struct {
	Date          string
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	TotalPnL      float64
	WinRate       float64
}

// MultiNotifier sends notifications to multiple channels.
type MultiNotifier struct {
	channels []NotificationChannel
	mu       sync.RWMutex
}

// NewMultiNotifier creates a new MultiNotifier with the given configuration.
func NewMultiNotifier(cfg *config.NotificationConfig) *MultiNotifier {
	mn := &MultiNotifier{
		channels: make([]NotificationChannel, 0),
	}

	if cfg.Telegram.Enabled {
		mn.channels = append(mn.channels, NewTelegramNotifier(cfg.Telegram))
	}
	if cfg.Email.Enabled {
		mn.channels = append(mn.channels, NewEmailNotifier(cfg.Email))
	}
	if cfg.Slack.Enabled {
		mn.channels = append(mn.channels, NewSlackNotifier(cfg.Slack))
	}

	return mn
}

// AddChannel adds a notification channel.
func (mn *MultiNotifier) AddChannel(ch NotificationChannel) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.channels = append(mn.channels, ch)
}

// Send sends a notification to all enabled channels.
func (mn *MultiNotifier) Send(ctx context.Context, n Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	mn.mu.RLock()
	channels := mn.channels
	mn.mu.RUnlock()

	var errs []string
	for _, ch := range channels {
		if ch.IsEnabled() {
			if err := ch.Send(ctx, n); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", ch.Name(), err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// SendAnalysis sends the daily market analysis with any strategy
// recommendations.
func (mn *MultiNotifier) SendAnalysis(ctx context.Context, snap *models.MarketSnapshot, recs []models.Recommendation) error {
	title := fmt.Sprintf("📊 SPX Market Analysis - %s", snap.Timestamp.Format("2006-01-02"))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Direction: %s\n", snap.Direction))
	sb.WriteString(fmt.Sprintf("SPX: %s\n", utils.FormatDollars(snap.SpotPrice)))
	sb.WriteString(fmt.Sprintf("VIX: %.2f\n", snap.VIXLevel))
	sb.WriteString(fmt.Sprintf("RSI: %.1f\n", snap.RSI))

	if len(recs) == 0 {
		sb.WriteString("\nNo trade recommendations today.")
	}
	for i := range recs {
		sb.WriteString("\n")
		sb.WriteString(strategy.FormatSummary(recs[i]))
	}

	return mn.Send(ctx, Notification{
		Type:    NotificationAnalysis,
		Title:   title,
		Message: sb.String(),
		Data: map[string]interface{}{
			"direction":       string(snap.Direction),
			"spot_price":      snap.SpotPrice,
			"vix_level":       snap.VIXLevel,
			"rsi":             snap.RSI,
			"recommendations": len(recs),
		},
	})
}

// SendTrade sends a trade notification.
func (mn *MultiNotifier) SendTrade(ctx context.Context, trade *models.Trade) error {
	mode := "LIVE"
	if trade.IsPaper {
		mode = "PAPER"
	}

	title := fmt.Sprintf("🔔 Trade Executed: %s (%s)", trade.Kind, mode)
	message := fmt.Sprintf(
		"Strategy: %s\nQuantity: %d\nNet Premium: %s\nMax Profit: %s\nMax Loss: %s\nProb of Profit: %s",
		trade.Kind,
		trade.Quantity,
		utils.FormatDollars(trade.NetPremium),
		utils.FormatDollars(trade.MaxProfit),
		utils.FormatDollars(trade.MaxLoss),
		utils.FormatProbability(trade.ProbProfit),
	)

	return mn.Send(ctx, Notification{
		Type:    NotificationTrade,
		Title:   title,
		Message: message,
		Data: map[string]interface{}{
			"trade_id":    trade.ID,
			"strategy":    string(trade.Kind),
			"quantity":    trade.Quantity,
			"net_premium": trade.NetPremium,
			"max_profit":  trade.MaxProfit,
			"max_loss":    trade.MaxLoss,
			"prob_profit": trade.ProbProfit,
			"is_paper":    trade.IsPaper,
		},
	})
}

// SendDailySummary sends a daily summary notification.
func (mn *MultiNotifier) SendDailySummary(ctx context.Context, summary *DailySummary) error {
	pnlEmoji := "📊"
	if summary.TotalPnL > 0 {
		pnlEmoji = "💰"
	} else if summary.TotalPnL < 0 {
		pnlEmoji = "📉"
	}

	title := fmt.Sprintf("%s Daily Summary - %s", pnlEmoji, summary.Date)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total Trades: %d\n", summary.TotalTrades))
	sb.WriteString(fmt.Sprintf("Winning: %d | Losing: %d\n", summary.WinningTrades, summary.LosingTrades))
	sb.WriteString(fmt.Sprintf("Win Rate: %.1f%%\n", summary.WinRate))
	sb.WriteString(fmt.Sprintf("Total P&L: %s\n", utils.FormatPnL(summary.TotalPnL)))

	return mn.Send(ctx, Notification{
		Type:    NotificationSummary,
		Title:   title,
		Message: sb.String(),
		Data: map[string]interface{}{
			"date":           summary.Date,
			"total_trades":   summary.TotalTrades,
			"winning_trades": summary.WinningTrades,
			"losing_trades":  summary.LosingTrades,
			"total_pnl":      summary.TotalPnL,
			"win_rate":       summary.WinRate,
		},
	})
}

// SendError sends an error notification.
func (mn *MultiNotifier) SendError(ctx context.Context, err error, errContext string) error {
	title := "❌ Error Occurred"
	message := fmt.Sprintf("Context: %s\nError: %v\nTime: %s",
		errContext, err, time.Now().Format("15:04:05"))

	return mn.Send(ctx, Notification{
		Type:    NotificationError,
		Title:   title,
		Message: message,
		Data: map[string]interface{}{
			"context": errContext,
			"error":   err.Error(),
		},
	})
}

// SlackNotifier sends notifications via a Slack incoming webhook.
type SlackNotifier struct {
	url     string
	enabled bool
	client  *http.Client
}

// NewSlackNotifier creates a new SlackNotifier.
func NewSlackNotifier(cfg config.SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		url:     cfg.WebhookURL,
		enabled: cfg.Enabled && cfg.WebhookURL != "",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the name of the notifier.
func (s *SlackNotifier) Name() string {
	return "slack"
}

// IsEnabled returns whether the notifier is enabled.
func (s *SlackNotifier) IsEnabled() bool {
	return s.enabled
}

// Send sends a notification to the Slack webhook.
func (s *SlackNotifier) Send(ctx context.Context, n Notification) error {
	if !s.enabled {
		return nil
	}

	payload := map[string]interface{}{
		"text": fmt.Sprintf("*%s*\n```%s```", n.Title, n.Message),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating slack request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending slack message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// TelegramNotifier sends notifications via Telegram bot.
type TelegramNotifier struct {
	botToken string
	chatID   string
	enabled  bool
	client   *http.Client
}

// NewTelegramNotifier creates a new TelegramNotifier.
func NewTelegramNotifier(cfg config.TelegramConfig) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		enabled:  cfg.Enabled && cfg.BotToken != "" && cfg.ChatID != "",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the name of the notifier.
func (t *TelegramNotifier) Name() string {
	return "telegram"
}

// IsEnabled returns whether the notifier is enabled.
func (t *TelegramNotifier) IsEnabled() bool {
	return t.enabled
}

// Send sends a notification via Telegram.
func (t *TelegramNotifier) Send(ctx context.Context, n Notification) error {
	if !t.enabled {
		return nil
	}

	// Telegram HTML parse mode
	text := fmt.Sprintf("<b>%s</b>\n\n%s", escapeHTML(n.Title), escapeHTML(n.Message))

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.botToken)

	payload := map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling telegram payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating telegram request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}

// escapeHTML escapes HTML special characters for Telegram.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EmailNotifier sends notifications via email using SMTP.
type EmailNotifier struct {
	smtpHost string
	smtpPort int
	username string
	password string
	from     string
	to       string
	enabled  bool
}

// NewEmailNotifier creates a new EmailNotifier.
func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		smtpHost: cfg.SMTPHost,
		smtpPort: cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		to:       cfg.To,
		enabled:  cfg.Enabled && cfg.SMTPHost != "" && cfg.From != "" && cfg.To != "",
	}
}

// Name returns the name of the notifier.
func (e *EmailNotifier) Name() string {
	return "email"
}

// IsEnabled returns whether the notifier is enabled.
func (e *EmailNotifier) IsEnabled() bool {
	return e.enabled
}

// Send sends a notification via email.
func (e *EmailNotifier) Send(ctx context.Context, n Notification) error {
	if !e.enabled {
		return nil
	}

	subject := n.Title
	body := n.Message

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		e.from, e.to, subject, body)

	addr := fmt.Sprintf("%s:%d", e.smtpHost, e.smtpPort)

	var auth smtp.Auth
	if e.username != "" && e.password != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.smtpHost)
	}

	// Implicit TLS on 465, STARTTLS or plain otherwise
	if e.smtpPort == 465 {
		return e.sendWithTLS(addr, auth, msg)
	}

	return smtp.SendMail(addr, auth, e.from, []string{e.to}, []byte(msg))
}

// sendWithTLS sends email using implicit TLS (port 465).
func (e *EmailNotifier) sendWithTLS(addr string, auth smtp.Auth, msg string) error {
	tlsConfig := &tls.Config{
		ServerName: e.smtpHost,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("TLS dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.smtpHost)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(e.from); err != nil {
		return fmt.Errorf("SMTP MAIL command failed: %w", err)
	}

	if err := client.Rcpt(e.to); err != nil {
		return fmt.Errorf("SMTP RCPT command failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA command failed: %w", err)
	}

	if _, err = w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("writing email body: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}

	return client.Quit()
}

// NoOpNotifier is a notifier that does nothing (for testing or disabled notifications).
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Send does nothing.
func (n *NoOpNotifier) Send(ctx context.Context, notif Notification) error {
	return nil
}

// SendAnalysis does nothing.
func (n *NoOpNotifier) SendAnalysis(ctx context.Context, snap *models.MarketSnapshot, recs []models.Recommendation) error {
	return nil
}

// SendTrade does nothing.
func (n *NoOpNotifier) SendTrade(ctx context.Context, trade *models.Trade) error {
	return nil
}

// SendDailySummary does nothing.
func (n *NoOpNotifier) SendDailySummary(ctx context.Context, summary *DailySummary) error {
	return nil
}

// SendError does nothing.
func (n *NoOpNotifier) SendError(ctx context.Context, err error, context string) error {
	return nil
}
