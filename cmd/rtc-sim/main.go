//go:build !rp2040

// rtc-sim runs the full service stack against an in-memory DS1307 so the
// console protocol can be exercised on a host without hardware.
//
//	go run ./cmd/rtc-sim
//	> GET_TIME
//	2026/08/27 14:30:00
package main

import (
	"context"
	"os"
	"sync"
	"time"

	"rtccode-go/bus"
	"rtccode-go/drivers/ds1307"
	"rtccode-go/services/clock"
	"rtccode-go/services/config"
	"rtccode-go/services/console"
	"rtccode-go/x/timeconv"
)

// simChip emulates the DS1307 register file: a 64-byte array with an
// auto-incrementing pointer that wraps at 0x3F. While the halt bit is clear
// the time block advances with the host clock, so GET_UNIX ticks like real
// hardware.
type simChip struct {
	mu   sync.Mutex
	regs [64]byte
	ptr  uint8
	base int64     // unix seconds loaded at the last oscillator restart
	at   time.Time // host time of that restart
}

func (c *simChip) Tx(addr uint16, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(w) > 0 {
		c.ptr = w[0] & 0x3F
		touchedClock := false
		for _, b := range w[1:] {
			if c.ptr <= 6 {
				touchedClock = true
			}
			c.regs[c.ptr] = b
			c.ptr = (c.ptr + 1) & 0x3F
		}
		if touchedClock {
			c.restart()
		}
	}
	if len(r) > 0 && c.ptr <= 6 {
		c.refresh()
	}
	for i := range r {
		r[i] = c.regs[c.ptr]
		c.ptr = (c.ptr + 1) & 0x3F
	}
	return nil
}

// restart re-anchors the tick base after a time-block write. A set halt bit
// freezes the registers as written.
func (c *simChip) restart() {
	if c.regs[0]&0x80 != 0 {
		return
	}
	c.base = c.decodeClock().Unix()
	c.at = time.Now()
}

// refresh advances the time block to the current instant if running.
func (c *simChip) refresh() {
	if c.regs[0]&0x80 != 0 {
		return
	}
	now := c.base + int64(time.Since(c.at)/time.Second)
	c.encodeClock(timeconv.FromUnix(now))
}

func (c *simChip) decodeClock() timeconv.Calendar {
	hr := c.regs[2]
	var hour int
	if hr&0x40 != 0 {
		hour = bcd2dec(hr & 0x1F)
		if hr&0x20 != 0 {
			if hour != 12 {
				hour += 12
			}
		} else if hour == 12 {
			hour = 0
		}
	} else {
		hour = bcd2dec(hr & 0x3F)
	}
	return timeconv.Calendar{
		Second:  bcd2dec(c.regs[0] & 0x7F),
		Minute:  bcd2dec(c.regs[1]),
		Hour:    hour,
		Weekday: bcd2dec(c.regs[3]),
		Day:     bcd2dec(c.regs[4]),
		Month:   bcd2dec(c.regs[5]),
		Year:    2000 + bcd2dec(c.regs[6]),
	}
}

// encodeClock writes cal into the time block, preserving the 12/24h mode bit.
func (c *simChip) encodeClock(cal timeconv.Calendar) {
	c.regs[0] = dec2bcd(cal.Second)
	c.regs[1] = dec2bcd(cal.Minute)
	if c.regs[2]&0x40 != 0 {
		h := cal.Hour % 12
		if h == 0 {
			h = 12
		}
		b := 0x40 | dec2bcd(h)
		if cal.Hour >= 12 {
			b |= 0x20
		}
		c.regs[2] = b
	} else {
		c.regs[2] = dec2bcd(cal.Hour)
	}
	c.regs[3] = dec2bcd(cal.Weekday)
	c.regs[4] = dec2bcd(cal.Day)
	c.regs[5] = dec2bcd(cal.Month)
	c.regs[6] = dec2bcd(cal.Year - 2000)
}

func bcd2dec(b byte) int { return int(b>>4)*10 + int(b&0x0F) }
func dec2bcd(n int) byte { return byte(n/10)<<4 | byte(n%10) }

func main() {
	println("[sim] rtc-sim boot …")

	dev := ds1307.New(&simChip{}, ds1307.DefaultConfig())

	// Seed the simulated chip from host time so GET_TIME answers something
	// sensible before the first SET_TIME.
	if err := dev.SetTime(time.Now()); err != nil {
		println("Error: seed time:", err.Error())
	}

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "pico")

	println("[sim] bootstrapping bus …")
	b := bus.NewBus(8)

	// Diagnostics: echo each published clock state.
	mon := b.NewConnection("monitor").Subscribe(bus.T("clock", "state"))
	go func() {
		for m := range mon.Channel() {
			if st, ok := m.Payload.(map[string]any); ok {
				unix, _ := st["unix"].(int64)
				present, _ := st["present"].(bool)
				println("[monitor] clock/state unix=", unix, "present=", present)
			}
		}
	}()

	config.NewConfigService().Start(ctx, b.NewConnection("config"))
	if err := clock.New(dev).Start(ctx, b.NewConnection("clock")); err != nil {
		println("Error: clock start:", err.Error())
	}

	println("[sim] console ready on stdin/stdout")
	console.New(dev, os.Stdin, os.Stdout).Run(ctx)
}
