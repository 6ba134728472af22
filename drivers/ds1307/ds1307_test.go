package ds1307

import (
	"errors"
	"testing"
	"time"

	"tinygo.org/x/drivers"

	"rtccode-go/x/timeconv"
)

// Compile-time check.
var _ drivers.I2C = (*fakeRTC)(nil)

var errNoAck = errors.New("i2c: no ack")

// fakeRTC simulates the DS1307 register file with auto-incrementing pointer
// semantics. Every write transaction is logged so tests can assert on the
// exact bus traffic.
type fakeRTC struct {
	regs [64]byte
	ptr  byte

	// nackAfter fails every transaction once okLeft reaches zero.
	nackArmed bool
	okLeft    int

	writes [][]byte
}

func newFakeRTC() *fakeRTC { return &fakeRTC{} }

// nackAfterTx arms a failure after n more successful transactions.
func (f *fakeRTC) nackAfterTx(n int) {
	f.nackArmed = true
	f.okLeft = n
}

func (f *fakeRTC) Tx(addr uint16, w, r []byte) error {
	if addr != AddressDefault {
		return errNoAck
	}
	if f.nackArmed {
		if f.okLeft == 0 {
			return errNoAck
		}
		f.okLeft--
	}
	if len(w) > 0 {
		f.ptr = w[0] & 0x3F
		f.writes = append(f.writes, append([]byte(nil), w...))
		for _, b := range w[1:] {
			f.regs[f.ptr] = b
			f.ptr = (f.ptr + 1) & 0x3F
		}
	}
	for i := range r {
		r[i] = f.regs[f.ptr]
		f.ptr = (f.ptr + 1) & 0x3F
	}
	return nil
}

func mustWrite(t *testing.T, d *Device, tm timeconv.Calendar) {
	t.Helper()
	if err := d.WriteTime(tm); err != nil {
		t.Fatalf("WriteTime(%+v): %v", tm, err)
	}
}

var refCalendar = timeconv.Calendar{
	Year: 2025, Month: 1, Day: 27, Weekday: 2,
	Hour: 14, Minute: 30, Second: 0,
}

func TestWriteTime_TwoPhaseHaltProtocol(t *testing.T) {
	bus := newFakeRTC()
	d := New(bus, DefaultConfig())

	mustWrite(t, d, refCalendar)

	if len(bus.writes) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(bus.writes))
	}
	first, second := bus.writes[0], bus.writes[1]
	if first[0] != regSeconds || first[1]&bitClockHalt == 0 {
		t.Fatalf("first transaction must set CH in seconds byte, got % x", first)
	}
	if second[0] != regSeconds || second[1]&bitClockHalt != 0 {
		t.Fatalf("second transaction must clear CH, got % x", second)
	}
	if got := d.LastWritePhase(); got != PhaseRestarted {
		t.Fatalf("phase = %d, want PhaseRestarted", got)
	}
	if !d.Present() {
		t.Fatal("device should be marked present after acknowledged write")
	}
}

func TestWriteTime_RestartFailureLeavesClockHalted(t *testing.T) {
	bus := newFakeRTC()
	d := New(bus, DefaultConfig())

	bus.nackAfterTx(1) // phase one acks, phase two does not
	if err := d.WriteTime(refCalendar); err == nil {
		t.Fatal("expected error from failed restart transaction")
	}
	if got := d.LastWritePhase(); got != PhaseWriting {
		t.Fatalf("phase = %d, want PhaseWriting (halted window)", got)
	}
	if d.Present() {
		t.Fatal("presence must be cleared on no-ack")
	}
	if bus.regs[regSeconds]&bitClockHalt == 0 {
		t.Fatal("clock should be left halted after phase-two failure")
	}
}

func TestWriteTime_InvalidFieldsNeverReachBus(t *testing.T) {
	bus := newFakeRTC()
	d := New(bus, DefaultConfig())

	bad := refCalendar
	bad.Month = 13
	if err := d.WriteTime(bad); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("err = %v, want ErrInvalidTime", err)
	}
	if len(bus.writes) != 0 {
		t.Fatalf("no bus traffic expected, got %d transactions", len(bus.writes))
	}
}

func TestReadTime_Halted(t *testing.T) {
	bus := newFakeRTC()
	d := New(bus, DefaultConfig())

	mustWrite(t, d, refCalendar)
	bus.regs[regSeconds] |= bitClockHalt

	var tm timeconv.Calendar
	if err := d.ReadTime(&tm); !errors.Is(err, ErrClockHalted) {
		t.Fatalf("err = %v, want ErrClockHalted", err)
	}
	// Stale fields are still decoded for inspection.
	if tm.Hour != 14 || tm.Minute != 30 {
		t.Fatalf("stale time not decoded: %+v", tm)
	}
	if d.Unix() != 0 {
		t.Fatal("Unix must return the zero sentinel while halted")
	}
}

func TestPresence_TracksAcknowledgement(t *testing.T) {
	bus := newFakeRTC()
	d := New(bus, DefaultConfig())

	mustWrite(t, d, refCalendar)
	if !d.Present() {
		t.Fatal("present should be true after acked transactions")
	}

	bus.nackAfterTx(0)
	var tm timeconv.Calendar
	if err := d.ReadTime(&tm); err == nil {
		t.Fatal("expected read failure")
	}
	if d.Present() {
		t.Fatal("present must be false after no-ack")
	}
	if d.Unix() != 0 {
		t.Fatal("Unix must return the zero sentinel on no-ack")
	}
}

func TestEndToEnd_Format24(t *testing.T) {
	bus := newFakeRTC()
	d := New(bus, DefaultConfig())

	mustWrite(t, d, refCalendar)

	if got := bus.regs[regYear]; got != 0x25 {
		t.Fatalf("year register = %#02x, want 0x25", got)
	}
	if got := bus.regs[regHours]; got != 0x14 {
		t.Fatalf("hour register = %#02x, want BCD(14) with bit6 clear", got)
	}

	var tm timeconv.Calendar
	if err := d.ReadTime(&tm); err != nil {
		t.Fatalf("ReadTime: %v", err)
	}
	if tm != refCalendar {
		t.Fatalf("round trip mismatch: got %+v want %+v", tm, refCalendar)
	}
}

func TestEndToEnd_Format12(t *testing.T) {
	bus := newFakeRTC()
	d := New(bus, Config{HourMode: Format12})

	mustWrite(t, d, refCalendar)

	if got := bus.regs[regHours]; got != 0x62 {
		t.Fatalf("hour register = %#02x, want 0x62 (12h, PM, BCD 2)", got)
	}
	if !d.PM() {
		t.Fatal("PM flag should be set for 14:00")
	}

	var tm timeconv.Calendar
	if err := d.ReadTime(&tm); err != nil {
		t.Fatalf("ReadTime: %v", err)
	}
	if tm != refCalendar {
		t.Fatalf("round trip mismatch: got %+v want %+v", tm, refCalendar)
	}
	if d.HourMode() != Format12 {
		t.Fatal("hour mode should remain Format12 after decode")
	}
}

func TestSetTime_UnixRoundTrip(t *testing.T) {
	bus := newFakeRTC()
	d := New(bus, DefaultConfig())

	ref := time.Date(2031, time.July, 4, 23, 59, 58, 0, time.UTC)
	if err := d.SetTime(ref); err != nil {
		t.Fatalf("SetTime: %v", err)
	}
	got, err := d.Now()
	if err != nil {
		t.Fatalf("Now: %v", err)
	}
	if !got.Equal(ref) {
		t.Fatalf("Now = %v, want %v", got, ref)
	}
	if d.Unix() != ref.Unix() {
		t.Fatalf("Unix = %d, want %d", d.Unix(), ref.Unix())
	}

	if err := d.SetUnix(ref.Unix() + 60); err != nil {
		t.Fatalf("SetUnix: %v", err)
	}
	if d.Unix() != ref.Unix()+60 {
		t.Fatalf("Unix after SetUnix = %d, want %d", d.Unix(), ref.Unix()+60)
	}
}

func TestIsRunning(t *testing.T) {
	bus := newFakeRTC()
	d := New(bus, DefaultConfig())

	mustWrite(t, d, refCalendar)
	running, err := d.IsRunning()
	if err != nil || !running {
		t.Fatalf("IsRunning = %v, %v; want true, nil", running, err)
	}

	bus.regs[regSeconds] |= bitClockHalt
	running, err = d.IsRunning()
	if err != nil || running {
		t.Fatalf("IsRunning = %v, %v; want false, nil", running, err)
	}
}

func TestSyncHourMode(t *testing.T) {
	bus := newFakeRTC()
	d := New(bus, DefaultConfig())

	// Chip holds a 12-hour encoding written by someone else.
	bus.regs[regHours] = 0x62
	if err := d.SyncHourMode(); err != nil {
		t.Fatalf("SyncHourMode: %v", err)
	}
	if d.HourMode() != Format12 || !d.PM() {
		t.Fatalf("mode = %v pm = %v, want Format12 and PM", d.HourMode(), d.PM())
	}

	bus.regs[regHours] = 0x14
	if err := d.SyncHourMode(); err != nil {
		t.Fatalf("SyncHourMode: %v", err)
	}
	if d.HourMode() != Format24 {
		t.Fatalf("mode = %v, want Format24", d.HourMode())
	}
}

func TestReadRegister_SentinelOnFailure(t *testing.T) {
	bus := newFakeRTC()
	d := New(bus, DefaultConfig())

	bus.regs[regControl] = 0x13
	if got := d.ReadRegister(regControl); got != 0x13 {
		t.Fatalf("ReadRegister = %#02x, want 0x13", got)
	}

	bus.nackAfterTx(0)
	if got := d.ReadRegister(regControl); got != 0xFF {
		t.Fatalf("ReadRegister on no-ack = %#02x, want 0xFF sentinel", got)
	}
	if d.Present() {
		t.Fatal("presence must be cleared on no-ack")
	}
}
