//go:build rp2040 || rp2350

package console

import (
	"io"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// OpenSerial configures UART0 as the console transport.
func OpenSerial() (io.Reader, io.Writer) {
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	return u, u
}
