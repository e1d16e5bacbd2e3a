package settings

import (
	"context"
	"errors"
	"testing"

	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*Setting, error) {
	return nil, errors.New("store down")
}

func (failingStore) List(context.Context) ([]Setting, error) {
	return nil, errors.New("store down")
}

func (failingStore) Put(context.Context, Setting) error {
	return errors.New("store down")
}

func TestProvider_DefaultsWithoutStore(t *testing.T) {
	provider := NewProvider(nil)
	cfg := provider.Thresholds(context.Background())
	if cfg != alerts.DefaultThresholds() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestProvider_FileOverridesLayerOnDefaults(t *testing.T) {
	provider := NewProvider(nil, WithFileOverrides(alerts.ThresholdConfig{TempMax: 38}))
	cfg := provider.Thresholds(context.Background())
	if cfg.TempMax != 38 {
		t.Fatalf("expected file override, got %g", cfg.TempMax)
	}
	if cfg.TempMin != 15 {
		t.Fatalf("zero file fields must keep defaults, got %g", cfg.TempMin)
	}
}

func TestProvider_StoreOverridesWinOverFile(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.Put(ctx, Setting{Key: KeyTempMax, Value: 40}); err != nil {
		t.Fatalf("put: %v", err)
	}
	provider := NewProvider(store, WithFileOverrides(alerts.ThresholdConfig{TempMax: 38, HumidityMax: 85}))
	cfg := provider.Thresholds(ctx)
	if cfg.TempMax != 40 {
		t.Fatalf("store must win over file, got %g", cfg.TempMax)
	}
	if cfg.HumidityMax != 85 {
		t.Fatalf("file must win over defaults, got %g", cfg.HumidityMax)
	}
	if cfg.MethaneCritical != 300 {
		t.Fatalf("unset fields must keep defaults, got %g", cfg.MethaneCritical)
	}
}

func TestProvider_StoreFailureFallsBack(t *testing.T) {
	provider := NewProvider(failingStore{}, WithFileOverrides(alerts.ThresholdConfig{TempMax: 38}))
	cfg := provider.Thresholds(context.Background())
	if cfg.TempMax != 38 {
		t.Fatalf("expected fallback to file layer, got %g", cfg.TempMax)
	}
}

func TestProvider_Update(t *testing.T) {
	store := NewMemoryStore()
	provider := NewProvider(store)
	ctx := context.Background()

	if err := provider.Update(ctx, KeyMethaneWarning, 180); err != nil {
		t.Fatalf("update: %v", err)
	}
	cfg := provider.Thresholds(ctx)
	if cfg.MethaneWarning != 180 {
		t.Fatalf("expected updated threshold, got %g", cfg.MethaneWarning)
	}
}

func TestProvider_UpdateUnknownKey(t *testing.T) {
	provider := NewProvider(NewMemoryStore())
	if err := provider.Update(context.Background(), "co2_critical", 1); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestProvider_UpdateWithoutStore(t *testing.T) {
	provider := NewProvider(nil)
	if err := provider.Update(context.Background(), KeyTempMax, 38); !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), KeyTempMax)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
