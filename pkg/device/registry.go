package device

import (
	"github.com/sirupsen/logrus"
)

// Registry is the ordered collection of devices claimed by the active test
// class. It is owned by the class context and drained at class teardown.
type Registry struct {
	log     logrus.FieldLogger
	devices []Device
}

// NewRegistry creates an empty registry.
func NewRegistry(log logrus.FieldLogger) *Registry {
	return &Registry{
		log: log,
	}
}

// Add appends a device. A nil device is ignored (tests may probe the
// registry before claiming hardware), as is a device already present.
// Reports whether the device was added.
func (r *Registry) Add(d Device) bool {
	if d == nil {
		return false
	}
	for _, existing := range r.devices {
		if existing == d {
			return false
		}
	}
	r.devices = append(r.devices, d)
	return true
}

// Devices returns a copy of the registered devices in claim order.
func (r *Registry) Devices() []Device {
	out := make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	return len(r.devices)
}

// Clear drains the registry from the tail, invoking onRemove for each
// device. Calling Clear on an empty registry is a no-op.
func (r *Registry) Clear(onRemove func(Device)) {
	for len(r.devices) > 0 {
		d := r.devices[len(r.devices)-1]
		r.devices = r.devices[:len(r.devices)-1]
		if onRemove != nil {
			onRemove(d)
		}
	}
}

// WaitAll blocks until every registered device has completed its queued
// work, returning the first reported error.
func (r *Registry) WaitAll() error {
	for _, d := range r.devices {
		if err := d.WaitForCompletion(); err != nil {
			return err
		}
	}
	return nil
}
