//go:build rp2040 || rp2350

// Command hub is the on-target firmware entry point: configures I2C0 as
// the sensor bus and UART0 as the command link, then runs one Board
// until reset. Grounded on devicecode-go's
// services/hal/internal/platform/factories_rp2xxx.go (machine.I2C0/I2C1
// setup) and internal/provider/rp2_resources.go's rp2SerialPort
// (uartx.UART wrapped to the core's serial port interface) -- adapted
// here directly to iohw.SerialLink instead of that package's
// core.SerialPort.
package main

import (
	"context"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"sensorhub/board"
	"sensorhub/boardcfg"
	"sensorhub/clock"
	"sensorhub/iohw"
)

func main() {
	time.Sleep(1500 * time.Millisecond) // let USB/clocks settle.

	i2c0 := machine.I2C0
	i2c0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})

	uart0 := uartx.UART0
	_ = uart0.Configure(uartx.UARTConfig{
		BaudRate: boardcfg.DefaultBaudRate,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})

	cfg := boardcfg.Default()
	bus := iohw.Adapter{Bus: i2c0}
	link := &uartLink{u: uart0}
	clk := clock.NewSystem()

	b := board.New(cfg, bus, link, clk)
	b.Run(context.Background())
}

// uartLink adapts a *uartx.UART to iohw.SerialLink.
type uartLink struct {
	u *uartx.UART
}

func (l *uartLink) RecvByte(deadline time.Time) (byte, bool) {
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()
	var buf [1]byte
	n, err := l.u.RecvSomeContext(ctx, buf[:])
	if err != nil || n == 0 {
		return 0, false
	}
	return buf[0], true
}

func (l *uartLink) Send(frame []byte) error {
	_, err := l.u.Write(frame)
	return err
}
