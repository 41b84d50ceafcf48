// internal/app/system/timeouts/timeouts_test.go
package timeouts

import (
	"testing"
	"time"
)

func TestConfigureOverridesOnlyNonZero(t *testing.T) {
	defer Reset()

	Configure(Config{External: 2 * time.Minute, Short: 1 * time.Second})

	if External() != 2*time.Minute {
		t.Errorf("External = %v, want 2m", External())
	}
	if Short() != 1*time.Second {
		t.Errorf("Short = %v, want 1s", Short())
	}
	// Unset values keep their defaults.
	if Ping() != DefaultPing {
		t.Errorf("Ping = %v, want default %v", Ping(), DefaultPing)
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium = %v, want default %v", Medium(), DefaultMedium)
	}
	if Long() != DefaultLong {
		t.Errorf("Long = %v, want default %v", Long(), DefaultLong)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	Configure(Config{Ping: time.Minute, Long: time.Hour})
	Reset()

	if Ping() != DefaultPing || Long() != DefaultLong {
		t.Errorf("after Reset: Ping = %v, Long = %v", Ping(), Long())
	}
}
