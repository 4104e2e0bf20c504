package common

// EventNewDevice is emitted by the registry when a device is first recorded
type EventNewDevice struct {
	Serial string
}

// EventExpiredDevice is emitted by the registry when a device is dropped
// during a registry rebuild
type EventExpiredDevice struct {
	Serial string
}

// EventUpdateLabel is emitted when a device's label changes
type EventUpdateLabel struct {
	Serial string
	Label  string
}

// EventUpdatePower is emitted when a device's power state changes
type EventUpdatePower struct {
	Serial string
	Power  bool
}

// EventUpdateColor is emitted when a device's color changes
type EventUpdateColor struct {
	Serial string
	Color  Color
}
