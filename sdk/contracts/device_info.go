package contracts

// DeviceInfo describes an input device, either a MIDI source or an audio input.
type DeviceInfo struct {
	Index        int     // Position used to select the device.
	Name         string  // Device name.
	Manufacturer string  // Device manufacturer, when the backend reports one.
	EntityName   string  // Name of the entity to which the device belongs.
	Channels     int     // Input channels (audio devices only).
	SampleRate   float64 // Default sample rate in Hz (audio devices only).
	IsDefault    bool    // Whether the backend marks this as the default input.
}
