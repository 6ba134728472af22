// Package clock publishes retained RTC state on the message bus and maps
// control messages onto the driver, so other services can follow the chip
// without owning the I2C bus.
package clock

import (
	"context"
	"time"

	"rtccode-go/bus"
	"rtccode-go/drivers/ds1307"
	"rtccode-go/x/mathx"
	"rtccode-go/x/timex"
)

var (
	topicState       = bus.Topic{"clock", "state"}
	topicSetUnix     = bus.Topic{"clock", "control", "set_unix"}
	topicSetFormat   = bus.Topic{"clock", "control", "set_format"}
	topicConfig      = bus.Topic{"config", "clock"}
	topicCfgClockOut = bus.Topic{"config", "clockout"}
)

const defaultInterval = 5 * time.Second

type Service struct {
	dev *ds1307.Device
}

func New(dev *ds1307.Device) *Service { return &Service{dev: dev} }

// Start launches the service loop in a goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfig)
	defer conn.Unsubscribe(cfgSub)
	sqwSub := conn.Subscribe(topicCfgClockOut)
	defer conn.Unsubscribe(sqwSub)
	setUnixSub := conn.Subscribe(topicSetUnix)
	defer conn.Unsubscribe(setUnixSub)
	setFormatSub := conn.Subscribe(topicSetFormat)
	defer conn.Unsubscribe(setFormatSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	s.publishState(conn)

	for {
		select {
		case <-ctx.Done():
			println("Info: clock service stopping")
			return
		case <-tick.C:
			s.publishState(conn)
		case msg := <-setUnixSub.Channel():
			ts, ok := asInt64(msg.Payload)
			if !ok || ts <= 0 {
				println("Error: clock set_unix: bad payload")
				continue
			}
			if err := s.dev.SetUnix(ts); err != nil {
				println("Error: clock set_unix:", err.Error())
			}
			s.publishState(conn)
		case msg := <-setFormatSub.Channel():
			switch f, _ := asInt64(msg.Payload); f {
			case 12:
				s.dev.SetHourMode(ds1307.Format12)
			case 24:
				s.dev.SetHourMode(ds1307.Format24)
			default:
				println("Error: clock set_format: bad payload")
				continue
			}
			s.publishState(conn)
		case msg := <-sqwSub.Channel():
			m, ok := msg.Payload.(map[string]any)
			if !ok {
				continue
			}
			var cfg ds1307.ClockOut
			cfg.Enabled, _ = m["enabled"].(bool)
			if lv, ok := asInt64(m["level"]); ok {
				cfg.DefaultHigh = lv != 0
			}
			if div, ok := asInt64(m["divider"]); ok {
				cfg.Divider = uint8(mathx.Clamp(div, 0, 3))
			}
			if err := s.dev.ConfigureClockOut(cfg); err != nil {
				println("Error: clock clockout config:", err.Error())
			}
			s.publishState(conn)
		case msg := <-cfgSub.Channel():
			m, ok := msg.Payload.(map[string]any)
			if !ok {
				continue
			}
			if iv, ok := asInt64(m["interval"]); ok {
				sec := mathx.Clamp(iv, 1, 3600)
				tick.Reset(time.Duration(sec) * time.Second)
				println("Info: clock publish interval set to", sec, "seconds")
			}
			if f, ok := asInt64(m["format"]); ok {
				if f == 12 {
					s.dev.SetHourMode(ds1307.Format12)
				} else if f == 24 {
					s.dev.SetHourMode(ds1307.Format24)
				}
			}
		}
	}
}

// publishState reads the chip and publishes a retained snapshot. A failed
// read still publishes, with unix=0 and present=false, so subscribers see
// the chip go away.
func (s *Service) publishState(conn *bus.Connection) {
	unix := s.dev.Unix()
	running := false
	if r, err := s.dev.IsRunning(); err == nil {
		running = r
	}
	format := int64(24)
	if s.dev.HourMode() == ds1307.Format12 {
		format = 12
	}
	state := map[string]any{
		"unix":    unix,
		"present": s.dev.Present(),
		"running": running,
		"format":  format,
		"ts_ms":   timex.NowMs(),
	}
	conn.Publish(conn.NewMessage(topicState, state, true))
}

// asInt64 accepts the numeric types that reach us from JSON configs and
// in-process publishers.
func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case uint32:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}
