package led

import (
	"fmt"

	hid "github.com/sstallion/go-hid"
)

// hidDevice wraps a hidapi handle as a Transport.
type hidDevice struct {
	dev *hid.Device
}

// Open claims the first attached DX-Light device.
func Open() (Transport, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("led: hid init: %w", err)
	}
	dev, err := hid.OpenFirst(VendorID, ProductID)
	if err != nil {
		return nil, ErrNotFound
	}
	return &hidDevice{dev: dev}, nil
}

func (d *hidDevice) Send(report []byte) error {
	n, err := d.dev.Write(report)
	if err != nil {
		return fmt.Errorf("led: write: %w", err)
	}
	if n != len(report) {
		return shortWrite(n, len(report))
	}
	return nil
}

func (d *hidDevice) Close() error {
	return d.dev.Close()
}
