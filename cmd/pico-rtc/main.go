//go:build rp2040

package main

import (
	"context"
	"io"
	"machine"
	"time"

	"rtccode-go/bus"
	"rtccode-go/drivers/ds1307"
	"rtccode-go/services/clock"
	"rtccode-go/services/config"
	"rtccode-go/services/console"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// uartIO adapts uartx to the io.Reader/io.Writer pair the console expects.
type uartIO struct{ u *uartx.UART }

func (p *uartIO) Read(b []byte) (int, error)  { return p.u.RecvSomeContext(context.Background(), b) }
func (p *uartIO) Write(b []byte) (int, error) { return p.u.Write(b) }

var _ io.Reader = (*uartIO)(nil)
var _ io.Writer = (*uartIO)(nil)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] pico-rtc boot …")

	// I2C0 on the default Pico pins, standard 100 kHz for the DS1307.
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
	if dev.Present() {
		println("[main] ds1307 present at 0x68")
	} else {
		println("[main] ds1307 not responding")
	}
	if err := dev.SyncHourMode(); err != nil {
		println("Error: hour mode sync:", err.Error())
	}

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "pico")

	println("[main] bootstrapping bus …")
	b := bus.NewBus(8)

	println("[main] starting config …")
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	println("[main] starting clock …")
	if err := clock.New(dev).Start(ctx, b.NewConnection("clock")); err != nil {
		println("Error: clock start:", err.Error())
	}

	// Serial console on UART0.
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	port := &uartIO{u: u}

	println("[main] console ready on uart0 @115200")
	console.New(dev, port, port).Run(ctx)
}
