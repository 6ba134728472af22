// Package ds1307 implements a driver for the DS1307 battery-backed real-time
// clock. It reads and writes the chip's 7-byte BCD time block, tracks the
// dual 12/24-hour encoding of the hour register, mirrors the SQW/OUT control
// register, and exposes the 56-byte battery-backed RAM window.
//
// Time writes use the chip's two-phase protocol: the first transaction sets
// the clock-halt bit while loading the calendar registers, the second clears
// it by writing the seconds byte, restarting the oscillator on the intended
// second. A failure between the two leaves the clock halted; callers can
// inspect LastWritePhase to detect that window.
//
// Datasheet: https://datasheets.maximintegrated.com/en/ds/DS1307.pdf
package ds1307

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"

	"rtccode-go/x/timeconv"
)

// HourMode selects how the hour register is encoded on writes. Reads accept
// either encoding and resynchronise the device's mode to what the chip holds.
type HourMode uint8

const (
	Format24 HourMode = iota // hour register holds BCD 0-23
	Format12                 // hour register holds BCD 1-12 plus the PM bit
)

// WritePhase identifies how far the two-phase time write progressed.
type WritePhase uint8

const (
	// PhaseIdle means no time write has been attempted.
	PhaseIdle WritePhase = iota
	// PhaseHalting means the halt-and-load transaction was issued but not
	// acknowledged; the chip state is unknown.
	PhaseHalting
	// PhaseWriting means the calendar registers were loaded and the clock is
	// halted, but the restart transaction failed. The oscillator is stopped.
	PhaseWriting
	// PhaseRestarted means the full write completed and the clock is running.
	PhaseRestarted
)

// Errors returned by the driver. Bus-level no-ack failures are returned as
// the underlying I2C error; everything below is detected by the driver itself.
var (
	ErrClockHalted = errors.New("ds1307: clock halted")
	ErrInvalidTime = errors.New("ds1307: calendar field out of range")
	ErrRAMBounds   = errors.New("ds1307: ram access out of bounds")
)

// Config holds construction-time options.
type Config struct {
	// Address defaults to AddressDefault if zero.
	Address uint16
	// HourMode selects the encoding used for subsequent time writes.
	HourMode HourMode
}

// DefaultConfig returns the stock chip address and 24-hour encoding.
func DefaultConfig() Config {
	return Config{Address: AddressDefault, HourMode: Format24}
}

// Device represents a DS1307 on an I2C bus. All of the chip-mirroring state
// (presence, hour mode, PM flag, clock-out flags) lives on the Device so
// independent chips and test doubles do not share globals.
//
// The Device is not safe for concurrent use; it is designed for a single
// control thread, matching the blocking bus transaction model.
type Device struct {
	i2c  drivers.I2C
	addr uint16

	present bool
	mode12  bool
	pm      bool
	sqw     ClockOut
	phase   WritePhase

	// Fixed buffers to avoid per-call heap allocations. w is sized for the
	// largest transaction: register pointer plus a full RAM window write.
	w [1 + RAMSize]byte
	r [timeBlockLen]byte
}

// New constructs a Device with the supplied config. The I2C bus must already
// be configured; the device itself is not touched.
func New(i2c drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	return &Device{
		i2c:    i2c,
		addr:   addr,
		mode12: cfg.HourMode == Format12,
	}
}

// Present reports whether the chip acknowledged the most recent bus
// transaction. It is recomputed on every call into the device.
func (d *Device) Present() bool { return d.present }

// HourMode returns the encoding currently used for time writes.
func (d *Device) HourMode() HourMode {
	if d.mode12 {
		return Format12
	}
	return Format24
}

// SetHourMode changes the encoding used for subsequent time writes. The hour
// register itself is re-encoded on the next WriteTime.
func (d *Device) SetHourMode(m HourMode) { d.mode12 = m == Format12 }

// SyncHourMode reads the hour register and adopts whichever encoding the chip
// currently holds, resynchronising after an external reset.
func (d *Device) SyncHourMode() error {
	var buf [1]byte
	if err := d.readBlock(regHours, buf[:]); err != nil {
		return err
	}
	d.decodeHours(buf[0])
	return nil
}

// PM reports the AM/PM flag observed on the last 12-hour decode or produced
// by the last 12-hour encode. Meaningless in 24-hour mode.
func (d *Device) PM() bool { return d.pm }

// LastWritePhase reports how far the most recent WriteTime progressed.
// PhaseWriting after a failed write means the oscillator was left halted.
func (d *Device) LastWritePhase() WritePhase { return d.phase }

// ReadTime reads the 7-byte time block into tm. All fields are decoded even
// when the clock is halted, so a caller can inspect the stale time, but the
// halted condition is reported as ErrClockHalted.
func (d *Device) ReadTime(tm *timeconv.Calendar) error {
	if err := d.readBlock(regSeconds, d.r[:timeBlockLen]); err != nil {
		return err
	}
	sec := d.r[0]
	tm.Second = bcdToDec(sec &^ bitClockHalt)
	tm.Minute = bcdToDec(d.r[1])
	tm.Hour = d.decodeHours(d.r[2])
	tm.Weekday = bcdToDec(d.r[3])
	tm.Day = bcdToDec(d.r[4])
	tm.Month = bcdToDec(d.r[5])
	tm.Year = 2000 + bcdToDec(d.r[6])

	if sec&bitClockHalt != 0 {
		return ErrClockHalted
	}
	return nil
}

// WriteTime loads tm into the chip using the two-phase halt-then-restart
// protocol. Fields are validated first; out-of-range values never reach the
// bus. On a phase-two failure the clock is left halted (see LastWritePhase).
func (d *Device) WriteTime(tm timeconv.Calendar) error {
	if err := validate(tm); err != nil {
		return err
	}

	// Phase one: halt the oscillator and load minutes..year in a single
	// transaction so the time block cannot roll over mid-write.
	d.phase = PhaseHalting
	d.w[0] = regSeconds
	d.w[1] = bitClockHalt
	d.w[2] = decToBcd(tm.Minute)
	d.w[3] = d.encodeHours(tm.Hour)
	d.w[4] = decToBcd(tm.Weekday)
	d.w[5] = decToBcd(tm.Day)
	d.w[6] = decToBcd(tm.Month)
	d.w[7] = decToBcd(tm.Year - 2000)
	if err := d.i2c.Tx(d.addr, d.w[:8], nil); err != nil {
		d.present = false
		return err
	}
	d.present = true
	d.phase = PhaseWriting

	// Phase two: write the seconds byte with the halt bit clear, restarting
	// the oscillator on the intended second.
	d.w[0] = regSeconds
	d.w[1] = decToBcd(tm.Second)
	if err := d.i2c.Tx(d.addr, d.w[:2], nil); err != nil {
		d.present = false
		return err
	}
	d.present = true
	d.phase = PhaseRestarted
	return nil
}

// Now returns the chip time as a time.Time in UTC.
func (d *Device) Now() (time.Time, error) {
	var tm timeconv.Calendar
	if err := d.ReadTime(&tm); err != nil {
		return time.Time{}, err
	}
	return tm.Time(), nil
}

// SetTime writes a time.Time to the chip.
func (d *Device) SetTime(t time.Time) error {
	return d.WriteTime(timeconv.FromTime(t))
}

// Unix returns the chip time as Unix seconds, or 0 if the read failed or the
// clock is halted.
func (d *Device) Unix() int64 {
	var tm timeconv.Calendar
	if err := d.ReadTime(&tm); err != nil {
		return 0
	}
	return tm.Unix()
}

// SetUnix writes Unix seconds to the chip.
func (d *Device) SetUnix(sec int64) error {
	return d.WriteTime(timeconv.FromUnix(sec))
}

// IsRunning reads the seconds register and reports the complement of the
// halt bit, a one-register diagnostic independent of the full time read.
func (d *Device) IsRunning() (bool, error) {
	var buf [1]byte
	if err := d.readBlock(regSeconds, buf[:]); err != nil {
		return false, err
	}
	return buf[0]&bitClockHalt == 0, nil
}

func validate(tm timeconv.Calendar) error {
	ok := tm.Year >= 2000 && tm.Year <= 2099 &&
		tm.Month >= 1 && tm.Month <= 12 &&
		tm.Day >= 1 && tm.Day <= 31 &&
		tm.Weekday >= 1 && tm.Weekday <= 7 &&
		tm.Hour >= 0 && tm.Hour <= 23 &&
		tm.Minute >= 0 && tm.Minute <= 59 &&
		tm.Second >= 0 && tm.Second <= 59
	if !ok {
		return ErrInvalidTime
	}
	return nil
}
