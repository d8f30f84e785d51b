// Package led opens and feeds the DX-Light HID device.
package led

import (
	"errors"
	"fmt"
)

// USB identifiers of the DX-Light controller. Fixed by the hardware.
const (
	VendorID  uint16 = 0x1A86
	ProductID uint16 = 0xFE07
)

// ErrNotFound means no DX-Light device is attached.
var ErrNotFound = errors.New("led: device not found")

// Transport is one open device session. Send takes a full 65-byte report
// (report-ID byte included). Implementations are not safe for concurrent
// use; the render loop owns the session exclusively.
type Transport interface {
	Send(report []byte) error
	Close() error
}

// Opener produces a fresh session, or ErrNotFound when the device is
// absent. The engine takes an Opener so tests can substitute a fake.
type Opener func() (Transport, error)

func shortWrite(n, want int) error {
	return fmt.Errorf("led: short write: %d of %d bytes", n, want)
}
