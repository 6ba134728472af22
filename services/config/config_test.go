package config

import (
	"context"
	"testing"
	"time"

	"rtccode-go/bus"
)

// asInt tolerates whichever numeric type the JSON decoder produced.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func TestConfig_PublishEmbedded_RetainedPerKey(t *testing.T) {
	// Override lookup for this test.
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "pico" {
			return nil, false
		}
		return []byte(`{
			"clock": {"interval": 5, "format": 12},
			"debug": true
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	// Arrange bus and service.
	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	// Start publisher with device ID in context.
	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico")
	svc.Start(ctx, conn)

	// Retained messages should arrive even if the subscribe races the
	// publish goroutine.
	clockSub := conn.Subscribe(bus.T(configPrefix, "clock"))
	debugSub := conn.Subscribe(bus.T(configPrefix, "debug"))

	recv := func(sub *bus.Subscription) any {
		t.Helper()
		select {
		case m := <-sub.Channel():
			return m.Payload
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for retained config")
			return nil
		}
	}

	clockVal := recv(clockSub)
	m, ok := clockVal.(map[string]any)
	if !ok {
		t.Fatalf("clock payload type = %T, want map[string]any", clockVal)
	}
	if iv, ok := asInt(m["interval"]); !ok || iv != 5 {
		t.Fatalf("clock.interval = %#v, want 5", m["interval"])
	}
	if f, ok := asInt(m["format"]); !ok || f != 12 {
		t.Fatalf("clock.format = %#v, want 12", m["format"])
	}

	debugVal := recv(debugSub)
	if bval, ok := debugVal.(bool); !ok || !bval {
		t.Fatalf("debug payload = %#v, want true", debugVal)
	}
}

func TestConfig_DefaultPicoConfig(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("test-default")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico")
	if err := svc.publishConfig(ctx, conn); err != nil {
		t.Fatalf("publishConfig: %v", err)
	}

	sub := conn.Subscribe(bus.T(configPrefix, "clockout"))
	select {
	case msg := <-sub.Channel():
		m, ok := msg.Payload.(map[string]any)
		if !ok {
			t.Fatalf("clockout payload type = %T", msg.Payload)
		}
		if en, ok := m["enabled"].(bool); !ok || en {
			t.Fatalf("clockout.enabled = %#v, want false", m["enabled"])
		}
	case <-time.After(time.Second):
		t.Fatal("no retained clockout config")
	}
}

func TestConfig_PublishConfig_MissingDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-missing-device")
	svc := NewConfigService()

	// No device ID in context
	if err := svc.publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error for missing device ID, got nil")
	}
}

func TestConfig_PublishConfig_NoConfigFound(t *testing.T) {
	// Override lookup to simulate absence.
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) { return nil, false }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(4)
	conn := b.NewConnection("test-no-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "unknown-device")
	if err := svc.publishConfig(ctx, conn); err == nil {
		t.Fatal("expected error for missing embedded config, got nil")
	}
}
