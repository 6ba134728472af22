// Package console implements the line-based serial command protocol used to
// exercise the RTC from a host: CHECK_RTC, GET_TIME/SET_TIME, GET_UNIX/
// SET_UNIX, SET_FORMAT, SET_CLOCKOUT/GET_CLOCKOUT, READ_RAM/WRITE_RAM.
//
// The interpreter reads commands from an io.Reader and writes one reply line
// per command to an io.Writer, so it runs identically over a UART on hardware
// and over in-memory buffers in tests. Failures are reported as "ERR <code>"
// using the errcode vocabulary; CHECK_RTC keeps its legacy OK/ERROR replies
// for compatibility with existing host tooling.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/shlex"

	"rtccode-go/drivers/ds1307"
	"rtccode-go/errcode"
	"rtccode-go/x/conv"
	"rtccode-go/x/mathx"
	"rtccode-go/x/strconvx"
)

const timeLayout = "2006/01/02 15:04:05"

// maxRAMChunk bounds a single READ_RAM/WRITE_RAM to the chip's RAM window.
const maxRAMChunk = ds1307.RAMSize

type handler func(args []string) (string, error)

// Service interprets commands against one RTC device.
type Service struct {
	dev      *ds1307.Device
	out      io.Writer
	in       io.Reader
	handlers map[string]handler
}

// New builds a console bound to dev, reading commands from in and writing
// replies to out.
func New(dev *ds1307.Device, in io.Reader, out io.Writer) *Service {
	s := &Service{dev: dev, in: in, out: out}
	// Flat name-to-handler lookup table.
	s.handlers = map[string]handler{
		"CHECK_RTC":    s.checkRTC,
		"GET_TIME":     s.getTime,
		"SET_TIME":     s.setTime,
		"GET_UNIX":     s.getUnix,
		"SET_UNIX":     s.setUnix,
		"SET_FORMAT":   s.setFormat,
		"GET_CLOCKOUT": s.getClockOut,
		"SET_CLOCKOUT": s.setClockOut,
		"READ_RAM":     s.readRAM,
		"WRITE_RAM":    s.writeRAM,
	}
	return s
}

// Run reads command lines until EOF or context cancellation. Blank lines are
// ignored; every command produces exactly one reply line.
func (s *Service) Run(ctx context.Context) {
	sc := bufio.NewScanner(s.in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		reply := s.Handle(line)
		if _, err := io.WriteString(s.out, reply+"\r\n"); err != nil {
			println("Error: console write:", err.Error())
			return
		}
	}
}

// Handle interprets a single command line and returns the reply line.
func (s *Service) Handle(line string) string {
	fields, err := shlex.Split(line)
	if err != nil || len(fields) == 0 {
		return errReply(errcode.InvalidParams)
	}
	h, ok := s.handlers[strings.ToUpper(fields[0])]
	if !ok {
		return errReply(errcode.UnknownCommand)
	}
	reply, err := h(fields[1:])
	if err != nil {
		return errReply(codeOf(err))
	}
	return reply
}

func errReply(c errcode.Code) string { return "ERR " + string(c) }

// codeOf maps driver and parse errors onto protocol codes.
func codeOf(err error) errcode.Code {
	switch {
	case err == nil:
		return errcode.OK
	case errors.Is(err, ds1307.ErrClockHalted):
		return errcode.ClockHalted
	case errors.Is(err, ds1307.ErrInvalidTime):
		return errcode.InvalidTime
	case errors.Is(err, ds1307.ErrRAMBounds):
		return errcode.RAMBounds
	default:
		if c := errcode.Of(err); c != errcode.Error {
			return c
		}
		// Anything else came from the bus transport.
		return errcode.NoAck
	}
}

// --- command handlers ---------------------------------------------------------

func (s *Service) checkRTC(args []string) (string, error) {
	running, err := s.dev.IsRunning()
	if err != nil || !running {
		return "ERROR", nil // legacy reply shape, host tools match on it
	}
	return "OK", nil
}

func (s *Service) getTime(args []string) (string, error) {
	t, err := s.dev.Now()
	if err != nil {
		return "", err
	}
	return t.Format(timeLayout), nil
}

func (s *Service) setTime(args []string) (string, error) {
	// Accept either a single quoted "YYYY/MM/DD HH:MM:SS" token or the two
	// halves as separate tokens.
	var stamp string
	switch len(args) {
	case 1:
		stamp = args[0]
	case 2:
		stamp = args[0] + " " + args[1]
	default:
		return "", errcode.InvalidParams
	}
	t, err := time.Parse(timeLayout, stamp)
	if err != nil {
		return "", errcode.InvalidParams
	}
	if err := s.dev.SetTime(t); err != nil {
		return "", err
	}
	return t.Format(timeLayout), nil
}

func (s *Service) getUnix(args []string) (string, error) {
	ts := s.dev.Unix()
	if ts == 0 {
		return "", errcode.ClockHalted
	}
	return strconvx.FormatInt(ts, 10), nil
}

func (s *Service) setUnix(args []string) (string, error) {
	if len(args) != 1 {
		return "", errcode.InvalidParams
	}
	ts, err := strconvx.ParseInt(args[0], 10, 64)
	if err != nil || ts <= 0 {
		return "", errcode.InvalidParams
	}
	if err := s.dev.SetUnix(ts); err != nil {
		return "", err
	}
	// Host tools verify the echo against what they sent.
	return strconvx.FormatInt(ts, 10), nil
}

func (s *Service) setFormat(args []string) (string, error) {
	if len(args) != 1 {
		return "", errcode.InvalidParams
	}
	switch args[0] {
	case "12":
		s.dev.SetHourMode(ds1307.Format12)
	case "24":
		s.dev.SetHourMode(ds1307.Format24)
	default:
		return "", errcode.InvalidParams
	}
	return "OK", nil
}

func (s *Service) getClockOut(args []string) (string, error) {
	c, err := s.dev.UpdateClockOut()
	if err != nil {
		return "", err
	}
	return boolDigit(c.Enabled) + " " + boolDigit(c.DefaultHigh) + " " +
		strconvx.Itoa(int(c.Divider)), nil
}

func (s *Service) setClockOut(args []string) (string, error) {
	if len(args) != 3 {
		return "", errcode.InvalidParams
	}
	enabled, ok1 := parseBit(args[0])
	level, ok2 := parseBit(args[1])
	div, err := strconvx.Atoi(args[2])
	if !ok1 || !ok2 || err != nil || !mathx.Between(div, 0, 3) {
		return "", errcode.InvalidParams
	}
	cfg := ds1307.ClockOut{Enabled: enabled, DefaultHigh: level, Divider: uint8(div)}
	if err := s.dev.ConfigureClockOut(cfg); err != nil {
		return "", err
	}
	return "OK", nil
}

func (s *Service) readRAM(args []string) (string, error) {
	if len(args) != 2 {
		return "", errcode.InvalidParams
	}
	off, err1 := strconvx.ParseUint(args[0], 16, 8)
	n, err2 := strconvx.Atoi(args[1])
	if err1 != nil || err2 != nil || !mathx.Between(n, 1, maxRAMChunk) {
		return "", errcode.InvalidParams
	}
	buf := make([]byte, n)
	if err := s.dev.ReadRAM(uint8(off), buf); err != nil {
		return "", err
	}
	out := make([]byte, 0, 3*n)
	for i, b := range buf {
		if i > 0 {
			out = append(out, ' ')
		}
		out = conv.AppendU8Hex(out, b)
	}
	return string(out), nil
}

func (s *Service) writeRAM(args []string) (string, error) {
	if len(args) < 2 || len(args) > 1+maxRAMChunk {
		return "", errcode.InvalidParams
	}
	off, err := strconvx.ParseUint(args[0], 16, 8)
	if err != nil {
		return "", errcode.InvalidParams
	}
	data := make([]byte, 0, len(args)-1)
	for _, a := range args[1:] {
		b, err := strconvx.ParseUint(a, 16, 8)
		if err != nil || len(a) > 2 {
			return "", errcode.InvalidParams
		}
		data = append(data, byte(b))
	}
	if err := s.dev.WriteRAM(uint8(off), data); err != nil {
		return "", err
	}
	return "OK", nil
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseBit(s string) (value, ok bool) {
	switch s {
	case "0":
		return false, true
	case "1":
		return true, true
	default:
		return false, false
	}
}
