package settings

import (
	"context"
	"log"
	"time"

	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
)

// Setting is a single stored threshold override keyed by name.
type Setting struct {
	Key       string
	Value     float64
	UpdatedAt time.Time
}

// Store persists threshold overrides.
type Store interface {
	Get(ctx context.Context, key string) (*Setting, error)
	List(ctx context.Context) ([]Setting, error)
	Put(ctx context.Context, setting Setting) error
}

// Provider resolves the active thresholds by layering stored overrides
// and file overrides on top of compiled defaults. Store failures are
// logged and never block a caller; it falls back to whatever layers
// are available.
type Provider struct {
	store  Store
	file   alerts.ThresholdConfig
	logger *log.Logger
}

// ProviderOption customizes a Provider.
type ProviderOption func(*Provider)

// WithFileOverrides layers non-zero values from a config file.
func WithFileOverrides(cfg alerts.ThresholdConfig) ProviderOption {
	return func(p *Provider) {
		p.file = cfg
	}
}

// WithLogger assigns a logger.
func WithLogger(logger *log.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider constructs a threshold provider. A nil store means only
// defaults and file overrides apply.
func NewProvider(store Store, opts ...ProviderOption) *Provider {
	p := &Provider{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Thresholds returns the effective threshold configuration.
func (p *Provider) Thresholds(ctx context.Context) alerts.ThresholdConfig {
	cfg := alerts.DefaultThresholds()
	if p == nil {
		return cfg
	}
	applyOverrides(&cfg, p.file)
	if p.store == nil {
		return cfg
	}
	stored, err := p.store.List(ctx)
	if err != nil {
		p.logf("settings: list overrides: %v, using defaults", err)
		return cfg
	}
	for _, setting := range stored {
		applyKey(&cfg, setting.Key, setting.Value)
	}
	return cfg
}

// Update stores a single override after checking the key is known.
func (p *Provider) Update(ctx context.Context, key string, value float64) error {
	if p == nil || p.store == nil {
		return ErrNoStore
	}
	if !KnownKey(key) {
		return ErrUnknownKey
	}
	return p.store.Put(ctx, Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()})
}

func (p *Provider) logf(format string, args ...any) {
	if p != nil && p.logger != nil {
		p.logger.Printf(format, args...)
	}
}

// Threshold override keys, matching the settings table rows.
const (
	KeyTempMax            = "temp_max"
	KeyTempMin            = "temp_min"
	KeyTempWarningMax     = "temp_warning_max"
	KeyTempWarningMin     = "temp_warning_min"
	KeyHumidityMax        = "humidity_max"
	KeyHumidityMin        = "humidity_min"
	KeyHumidityWarningMax = "humidity_warning_max"
	KeyHumidityWarningMin = "humidity_warning_min"
	KeyMethaneCritical    = "methane_critical"
	KeyMethaneWarning     = "methane_warning"
	KeyGasCritical        = "other_gases_critical"
	KeyGasWarning         = "other_gases_warning"
	KeyExhaustFanTrigger  = "exhaust_fan_trigger"
)

var knownKeys = map[string]struct{}{
	KeyTempMax: {}, KeyTempMin: {}, KeyTempWarningMax: {}, KeyTempWarningMin: {},
	KeyHumidityMax: {}, KeyHumidityMin: {}, KeyHumidityWarningMax: {}, KeyHumidityWarningMin: {},
	KeyMethaneCritical: {}, KeyMethaneWarning: {},
	KeyGasCritical: {}, KeyGasWarning: {},
	KeyExhaustFanTrigger: {},
}

// KnownKey reports whether key names a threshold override.
func KnownKey(key string) bool {
	_, ok := knownKeys[key]
	return ok
}

func applyOverrides(cfg *alerts.ThresholdConfig, override alerts.ThresholdConfig) {
	applyNonZero(&cfg.TempMax, override.TempMax)
	applyNonZero(&cfg.TempMin, override.TempMin)
	applyNonZero(&cfg.TempWarningMax, override.TempWarningMax)
	applyNonZero(&cfg.TempWarningMin, override.TempWarningMin)
	applyNonZero(&cfg.HumidityMax, override.HumidityMax)
	applyNonZero(&cfg.HumidityMin, override.HumidityMin)
	applyNonZero(&cfg.HumidityWarningMax, override.HumidityWarningMax)
	applyNonZero(&cfg.HumidityWarningMin, override.HumidityWarningMin)
	applyNonZero(&cfg.MethaneCritical, override.MethaneCritical)
	applyNonZero(&cfg.MethaneWarning, override.MethaneWarning)
	applyNonZero(&cfg.GasCritical, override.GasCritical)
	applyNonZero(&cfg.GasWarning, override.GasWarning)
	applyNonZero(&cfg.ExhaustFanTrigger, override.ExhaustFanTrigger)
}

func applyNonZero(target *float64, value float64) {
	if value != 0 {
		*target = value
	}
}

func applyKey(cfg *alerts.ThresholdConfig, key string, value float64) {
	switch key {
	case KeyTempMax:
		cfg.TempMax = value
	case KeyTempMin:
		cfg.TempMin = value
	case KeyTempWarningMax:
		cfg.TempWarningMax = value
	case KeyTempWarningMin:
		cfg.TempWarningMin = value
	case KeyHumidityMax:
		cfg.HumidityMax = value
	case KeyHumidityMin:
		cfg.HumidityMin = value
	case KeyHumidityWarningMax:
		cfg.HumidityWarningMax = value
	case KeyHumidityWarningMin:
		cfg.HumidityWarningMin = value
	case KeyMethaneCritical:
		cfg.MethaneCritical = value
	case KeyMethaneWarning:
		cfg.MethaneWarning = value
	case KeyGasCritical:
		cfg.GasCritical = value
	case KeyGasWarning:
		cfg.GasWarning = value
	case KeyExhaustFanTrigger:
		cfg.ExhaustFanTrigger = value
	}
}
