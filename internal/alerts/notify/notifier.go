package notify

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	alertapp "github.com/AtharvSabde/Cropverse/internal/alerts/application"
	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
	"github.com/AtharvSabde/Cropverse/internal/observability/metrics"
)

// Clock provides time for cooldown tracking.
type Clock interface {
	Now() time.Time
}

type sendRecord struct {
	at   time.Time
	hash string
}

// Notifier renders alert events and sends them through a channel.
// Repeat sends for the same alert key can be rate limited with a
// cooldown or suppressed with a dedupe window.
type Notifier struct {
	channel      Channel
	template     *Template
	clock        Clock
	mu           sync.Mutex
	sent         map[string]sendRecord
	cooldown     time.Duration
	dedupeWindow time.Duration
}

// Option configures the notifier.
type Option func(*Notifier)

// WithClock overrides the default clock.
func WithClock(clock Clock) Option {
	return func(n *Notifier) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// WithCooldown sets a minimum interval between notifications for the
// same sensor, severity and event.
func WithCooldown(interval time.Duration) Option {
	return func(n *Notifier) {
		if interval > 0 {
			n.cooldown = interval
		}
	}
}

// WithDedupeWindow suppresses identical notifications within the window.
func WithDedupeWindow(window time.Duration) Option {
	return func(n *Notifier) {
		if window > 0 {
			n.dedupeWindow = window
		}
	}
}

// NewNotifier constructs an alert notifier.
func NewNotifier(channel Channel, template *Template, opts ...Option) (*Notifier, error) {
	if channel == nil {
		return nil, errors.New("alert notifier: nil channel")
	}
	if template == nil {
		defaultTemplate, err := NewTemplate("")
		if err != nil {
			return nil, err
		}
		template = defaultTemplate
	}
	n := &Notifier{
		channel:  channel,
		template: template,
		clock:    systemClock{},
		sent:     make(map[string]sendRecord),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Notify implements alertapp.AlertNotifier. Delivery is best effort;
// channel errors only bump the failure counter.
func (n *Notifier) Notify(ctx context.Context, event alertapp.AlertEvent) {
	if n == nil || n.channel == nil {
		return
	}
	content, err := n.template.Render(buildTemplateData(event.Type, event.Alert))
	if err != nil {
		return
	}
	key := notificationKey(event.Alert, event.Type)
	if !n.shouldSend(key, content) {
		return
	}
	if err := n.channel.Send(ctx, content); err != nil {
		metrics.IncNotifyFailure()
		return
	}
	n.markSent(key, content)
}

func buildTemplateData(eventType string, alert alerts.Alert) TemplateData {
	createdAt := alert.CreatedAt
	if eventType == alertapp.EventResolved && !alert.ResolvedAt.IsZero() {
		createdAt = alert.ResolvedAt
	}
	return TemplateData{
		Sensor:     sensorLabel(alert.Sensor),
		SensorID:   alert.SensorID,
		Severity:   string(alert.Severity),
		Message:    alert.Message,
		Value:      formatFloat(alert.Value),
		Threshold:  formatFloat(alert.Threshold),
		Time:       createdAt.UTC().Format(time.RFC3339),
		Event:      eventType,
		EventLabel: eventLabel(eventType),
		Suggestion: suggestionFor(alert.Severity),
	}
}

func sensorLabel(sensor alerts.Sensor) string {
	return strings.ReplaceAll(string(sensor), "_", " ")
}

func eventLabel(event string) string {
	switch event {
	case alertapp.EventRaised:
		return "Raised"
	case alertapp.EventResolved:
		return "Resolved"
	default:
		return event
	}
}

func suggestionFor(severity alerts.Severity) string {
	switch severity {
	case alerts.SeverityCritical:
		return "Investigate immediately and mitigate risk."
	case alerts.SeverityWarning:
		return "Verify the condition and take action if needed."
	default:
		return "Monitor the condition."
	}
}

func formatFloat(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func (n *Notifier) shouldSend(key, content string) bool {
	if n == nil {
		return false
	}
	if n.cooldown <= 0 && n.dedupeWindow <= 0 {
		return true
	}
	now := n.clock.Now().UTC()
	hash := hashContent(content)

	n.mu.Lock()
	record, ok := n.sent[key]
	n.mu.Unlock()
	if !ok {
		return true
	}
	if n.cooldown > 0 && now.Sub(record.at) < n.cooldown {
		return false
	}
	if n.dedupeWindow > 0 && record.hash == hash && now.Sub(record.at) < n.dedupeWindow {
		return false
	}
	return true
}

func (n *Notifier) markSent(key, content string) {
	if n == nil {
		return
	}
	n.mu.Lock()
	n.sent[key] = sendRecord{
		at:   n.clock.Now().UTC(),
		hash: hashContent(content),
	}
	n.mu.Unlock()
}

func notificationKey(alert alerts.Alert, eventType string) string {
	return alert.SensorID + "|" + string(alert.Sensor) + "|" + string(alert.Severity) + "|" + eventType
}

func hashContent(content string) string {
	sum := sha1.Sum([]byte(content))
	return hex.EncodeToString(sum[:8])
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
