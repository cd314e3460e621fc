package config

import "testing"

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("gentle")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Upper.Angle == nil || *cfg.Upper.Angle != 0.3 {
		t.Errorf("expected upper angle 0.3, got %v", cfg.Upper.Angle)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset invalid: %v", err)
	}
}

func TestGetPresetIsCopy(t *testing.T) {
	cfg := GetPreset("gentle")
	*cfg.Upper.Angle = 9
	cfg.Steps = 1

	again := GetPreset("gentle")
	if *again.Upper.Angle != 0.3 || again.Steps == 1 {
		t.Error("modifying a preset copy changed the registered preset")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	want := []string{"chaos", "gentle", "reference", "symmetric"}
	got := ListPresets()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
