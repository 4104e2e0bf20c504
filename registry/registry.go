// Package registry maintains the set of known devices and answers lookups
// by serial, IP address or label.  It is the single source of truth for
// device state between discovery passes.
package registry

import (
	"strings"
	"sync"
	"time"

	"github.com/lumenlabs/golight/common"
)

// Registry is a concurrency-safe device store.  All lookups return copies;
// the canonical records are only mutated through Upsert, the Update methods
// and ReplaceAll.  The registry never performs network I/O and its lock is
// never held across anything that blocks.
type Registry struct {
	sync.RWMutex
	devices map[string]*Device
	order   []string

	subscriptions     map[string]*common.Subscription
	subscriptionsLock sync.RWMutex
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		devices:       make(map[string]*Device),
		subscriptions: make(map[string]*common.Subscription),
	}
}

// Upsert records a device sighting.  A previously unknown serial is added
// and EventNewDevice is published; a known serial has its address and
// last-seen time refreshed, and any non-zero fields of dev merged in.
func (r *Registry) Upsert(dev *Device) {
	if dev.Serial == `` {
		common.Log.Warnf(`ignoring upsert with empty serial`)
		return
	}

	r.Lock()
	existing, known := r.devices[dev.Serial]
	if !known {
		rec := *dev
		if rec.SeenAt.IsZero() {
			rec.SeenAt = time.Now()
		}
		r.devices[dev.Serial] = &rec
		r.order = append(r.order, dev.Serial)
		r.Unlock()
		common.Log.Debugf(`registry: new device %s at %s`, dev.Serial, dev.IP())
		r.publish(common.EventNewDevice{Serial: dev.Serial})
		return
	}

	if dev.Addr != nil {
		existing.Addr = dev.Addr
	}
	if dev.Label != `` {
		existing.Label = dev.Label
	}
	if dev.ProductID != 0 {
		existing.VendorID = dev.VendorID
		existing.ProductID = dev.ProductID
		existing.HardwareVersion = dev.HardwareVersion
	}
	existing.SeenAt = time.Now()
	r.Unlock()
}

// UpdateState records the light state reported by a device, publishing
// change events for any field that differs from the previous record.
func (r *Registry) UpdateState(serial string, color common.Color, power uint16, label string) {
	r.Lock()
	dev, ok := r.devices[serial]
	if !ok {
		r.Unlock()
		return
	}
	labelChanged := label != `` && label != dev.Label
	powerChanged := power != dev.Power
	colorChanged := color != dev.Color
	if labelChanged {
		dev.Label = label
	}
	dev.Power = power
	dev.Color = color
	dev.SeenAt = time.Now()
	r.Unlock()

	if labelChanged {
		r.publish(common.EventUpdateLabel{Serial: serial, Label: label})
	}
	if powerChanged {
		r.publish(common.EventUpdatePower{Serial: serial, Power: power > 0})
	}
	if colorChanged {
		r.publish(common.EventUpdateColor{Serial: serial, Color: color})
	}
}

// UpdateVersion records the vendor/product/version triple for a device.
func (r *Registry) UpdateVersion(serial string, vendor, product, version uint32) {
	r.Lock()
	defer r.Unlock()
	dev, ok := r.devices[serial]
	if !ok {
		return
	}
	dev.VendorID = vendor
	dev.ProductID = product
	dev.HardwareVersion = version
}

// UpdateFirmware records the firmware version pair for a device.
func (r *Registry) UpdateFirmware(serial string, major, minor uint16) {
	r.Lock()
	defer r.Unlock()
	dev, ok := r.devices[serial]
	if !ok {
		return
	}
	dev.FirmwareMajor = major
	dev.FirmwareMinor = minor
}

// ReplaceAll swaps the registry contents for the given devices; every
// record is rebuilt from the incoming set.  New serials publish
// EventNewDevice, serials missing from the new set publish
// EventExpiredDevice.
func (r *Registry) ReplaceAll(devs []*Device) {
	var added, expired []string

	r.Lock()
	next := make(map[string]*Device, len(devs))
	var order []string
	for _, dev := range devs {
		if dev.Serial == `` {
			continue
		}
		if _, dup := next[dev.Serial]; dup {
			continue
		}
		rec := *dev
		if rec.SeenAt.IsZero() {
			rec.SeenAt = time.Now()
		}
		if _, known := r.devices[dev.Serial]; !known {
			added = append(added, dev.Serial)
		}
		next[dev.Serial] = &rec
		order = append(order, dev.Serial)
	}
	for _, serial := range r.order {
		if _, kept := next[serial]; !kept {
			expired = append(expired, serial)
		}
	}
	r.devices = next
	r.order = order
	r.Unlock()

	for _, serial := range added {
		r.publish(common.EventNewDevice{Serial: serial})
	}
	for _, serial := range expired {
		common.Log.Debugf(`registry: device %s expired`, serial)
		r.publish(common.EventExpiredDevice{Serial: serial})
	}
}

// FindBySerial looks up a device by its serial.
func (r *Registry) FindBySerial(serial string) (*Device, error) {
	r.RLock()
	defer r.RUnlock()
	dev, ok := r.devices[serial]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *dev
	return &cp, nil
}

// FindByIP looks up a device by its IP address.  When several devices share
// an address the earliest-registered one wins.
func (r *Registry) FindByIP(ip string) (*Device, error) {
	r.RLock()
	defer r.RUnlock()
	for _, serial := range r.order {
		dev := r.devices[serial]
		if dev.Addr != nil && dev.Addr.IP.String() == ip {
			cp := *dev
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

// FindByLabel looks up a device by its label, ignoring case.  An exact
// match wins over a substring match; within each pass, the
// earliest-registered device wins.
func (r *Registry) FindByLabel(label string) (*Device, error) {
	r.RLock()
	defer r.RUnlock()
	for _, serial := range r.order {
		dev := r.devices[serial]
		if strings.EqualFold(dev.Label, label) {
			cp := *dev
			return &cp, nil
		}
	}
	needle := strings.ToLower(label)
	for _, serial := range r.order {
		dev := r.devices[serial]
		if strings.Contains(strings.ToLower(dev.Label), needle) {
			cp := *dev
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

// Find resolves a query that may be a serial, an IP address or a label,
// tried in that order.
func (r *Registry) Find(query string) (*Device, error) {
	if dev, err := r.FindBySerial(query); err == nil {
		return dev, nil
	}
	if dev, err := r.FindByIP(query); err == nil {
		return dev, nil
	}
	return r.FindByLabel(query)
}

// Snapshot returns copies of all known devices in registration order.
func (r *Registry) Snapshot() []*Device {
	r.RLock()
	defer r.RUnlock()
	devs := make([]*Device, 0, len(r.order))
	for _, serial := range r.order {
		cp := *r.devices[serial]
		devs = append(devs, &cp)
	}
	return devs
}

// Len reports the number of known devices.
func (r *Registry) Len() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.devices)
}

// NewSubscription returns a subscription for registry events.
func (r *Registry) NewSubscription() (*common.Subscription, error) {
	sub := common.NewSubscription(r)
	r.subscriptionsLock.Lock()
	r.subscriptions[sub.ID()] = sub
	r.subscriptionsLock.Unlock()
	return sub, nil
}

// CloseSubscription detaches a subscription from the registry.
func (r *Registry) CloseSubscription(sub *common.Subscription) error {
	r.subscriptionsLock.Lock()
	defer r.subscriptionsLock.Unlock()
	if _, ok := r.subscriptions[sub.ID()]; !ok {
		return common.ErrNotFound
	}
	delete(r.subscriptions, sub.ID())
	return nil
}

func (r *Registry) publish(event interface{}) {
	r.subscriptionsLock.RLock()
	defer r.subscriptionsLock.RUnlock()
	for _, sub := range r.subscriptions {
		if err := sub.Write(event); err != nil {
			common.Log.Debugf(`dropping event for subscription %s: %v`, sub.ID(), err)
		}
	}
}
