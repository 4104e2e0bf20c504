package registry

import (
	"fmt"
	"net"
	"time"

	"github.com/lumenlabs/golight/common"
)

// Device is the registry's record of one bulb on the network.  Fields are
// filled in progressively as responses arrive: discovery provides the serial
// and address, the refresh pass fills in state, and version queries fill in
// the product identity.
//
// Device values handed out by the registry are copies; mutating them does
// not affect the registry's canonical record.
type Device struct {
	Serial string
	Addr   *net.UDPAddr

	Label string
	Power uint16
	Color common.Color

	VendorID        uint32
	ProductID       uint32
	HardwareVersion uint32
	FirmwareMajor   uint16
	FirmwareMinor   uint16

	SeenAt time.Time
}

// PoweredOn reports whether the device's last known power level was non-zero.
func (d *Device) PoweredOn() bool {
	return d.Power > 0
}

// Product looks up the device's product record, when the version query has
// completed and the product is known.
func (d *Device) Product() (common.Product, bool) {
	p, ok := common.Products[d.ProductID]
	return p, ok
}

// HasMatrix reports whether the device carries an addressable 2D zone matrix.
func (d *Device) HasMatrix() bool {
	p, ok := d.Product()
	return ok && p.Features.Matrix
}

// HasMultizone reports whether the device carries a linear zone strip.
func (d *Device) HasMultizone() bool {
	p, ok := d.Product()
	return ok && p.Features.Multizone
}

// HasExtendedMultizone reports whether the device supports the extended
// multizone messages.
func (d *Device) HasExtendedMultizone() bool {
	p, ok := d.Product()
	return ok && p.Features.ExtendedMultizone
}

// HasColor reports whether the device supports full color.  Unknown products
// are assumed to, so unrecognized bulbs still accept color commands.
func (d *Device) HasColor() bool {
	p, ok := d.Product()
	if !ok {
		return true
	}
	return p.Features.Color
}

// HasInfrared reports whether the device carries infrared LEDs.
func (d *Device) HasInfrared() bool {
	p, ok := d.Product()
	return ok && p.Features.Infrared
}

// MatrixSize reports the zone matrix dimensions for matrix products.
func (d *Device) MatrixSize() (width, height int) {
	w, h, _ := common.MatrixSize(d.ProductID)
	return w, h
}

// Firmware renders the firmware version pair as major.minor.
func (d *Device) Firmware() string {
	return fmt.Sprintf(`%d.%d`, d.FirmwareMajor, d.FirmwareMinor)
}

// IP reports the device's IP address as a string, or the empty string when
// the address is not yet known.
func (d *Device) IP() string {
	if d.Addr == nil {
		return ``
	}
	return d.Addr.IP.String()
}

// ProductName reports the product's marketing name, or a placeholder for
// unrecognized product IDs.
func (d *Device) ProductName() string {
	if p, ok := d.Product(); ok {
		return p.Name
	}
	return fmt.Sprintf(`Unknown (%d)`, d.ProductID)
}
