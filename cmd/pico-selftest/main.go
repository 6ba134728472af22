//go:build rp2040

// pico-selftest exercises a wired DS1307 end to end: presence, the RAM
// window, the halt/restart write protocol, and the oscillator tick. Pass
// is two short LED flashes per cycle, fail one long flash.
package main

import (
	"machine"
	"time"

	"rtccode-go/drivers/ds1307"
	"rtccode-go/x/timeconv"
)

const (
	cycleDwell = 2 * time.Second

	// Cycles: 0 = loop forever
	cyclesToRun = 0
)

type check struct {
	name string
	run  func(dev *ds1307.Device) bool
}

var checks = []check{
	{"presence", checkPresence},
	{"ram", checkRAM},
	{"write-protocol", checkWriteProtocol},
	{"tick", checkTick},
}

func checkPresence(dev *ds1307.Device) bool {
	_ = dev.ReadRegister(0x00)
	return dev.Present()
}

func checkRAM(dev *ds1307.Device) bool {
	pattern := []byte{0xA5, 0x5A, 0x3C}
	if err := dev.WriteRAM(0x10, pattern); err != nil {
		println("[ram] write:", err.Error())
		return false
	}
	got := make([]byte, len(pattern))
	if err := dev.ReadRAM(0x10, got); err != nil {
		println("[ram] read:", err.Error())
		return false
	}
	for i := range pattern {
		if got[i] != pattern[i] {
			println("[ram] mismatch at", i)
			return false
		}
	}
	return true
}

func checkWriteProtocol(dev *ds1307.Device) bool {
	cal := timeconv.Calendar{
		Year: 2026, Month: 8, Day: 27,
		Weekday: 4, Hour: 12, Minute: 0, Second: 0,
	}
	if err := dev.WriteTime(cal); err != nil {
		println("[write] WriteTime:", err.Error())
		return false
	}
	if dev.LastWritePhase() != ds1307.PhaseRestarted {
		println("[write] phase not restarted")
		return false
	}
	running, err := dev.IsRunning()
	if err != nil {
		println("[write] IsRunning:", err.Error())
		return false
	}
	return running
}

func checkTick(dev *ds1307.Device) bool {
	before := dev.Unix()
	if before == 0 {
		println("[tick] read failed")
		return false
	}
	time.Sleep(1100 * time.Millisecond)
	after := dev.Unix()
	if after <= before {
		println("[tick] oscillator not advancing")
		return false
	}
	return true
}

func ledFlashPassFail(led machine.Pin, pass bool) {
	if pass {
		// Double short
		for i := 0; i < 2; i++ {
			led.High()
			time.Sleep(120 * time.Millisecond)
			led.Low()
			time.Sleep(200 * time.Millisecond)
		}
	} else {
		// Single long
		led.High()
		time.Sleep(400 * time.Millisecond)
		led.Low()
		time.Sleep(200 * time.Millisecond)
	}
}

func main() {
	time.Sleep(2 * time.Second)
	println("[selftest] boot …")

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	sda := machine.I2C0_SDA_PIN
	scl := machine.I2C0_SCL_PIN
	sda.Configure(machine.PinConfig{Mode: machine.PinI2C})
	scl.Configure(machine.PinConfig{Mode: machine.PinI2C})
	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{SDA: sda, SCL: scl, Frequency: 100_000}); err != nil {
		println("Error: i2c configure:", err.Error())
		return
	}

	dev := ds1307.New(i2c, ds1307.DefaultConfig())

	cycle := 0
	for {
		cycle++
		println("=== selftest: cycle", cycle, "===")

		pass := true
		for _, c := range checks {
			ok := c.run(dev)
			if ok {
				println("[PASS]", c.name)
			} else {
				println("[FAIL]", c.name)
				pass = false
			}
		}

		ledFlashPassFail(led, pass)

		if cyclesToRun > 0 && cycle >= cyclesToRun {
			println("completed", cycle, "cycles; halting")
			return
		}
		time.Sleep(cycleDwell)
	}
}
