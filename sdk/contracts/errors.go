package contracts

import "errors"

var (
	// ErrInputUnavailable is returned when a listener cannot open its device or port.
	ErrInputUnavailable = errors.New("input unavailable")
	// ErrNoEvaluation is returned by listeners that do not capture anything.
	ErrNoEvaluation = errors.New("no evaluation configured")
	// ErrListenerMisconfigured is returned when a listener kind is not recognised.
	ErrListenerMisconfigured = errors.New("listener misconfigured")
	// ErrNilHandler is returned by transports asked to deliver to a nil handler.
	ErrNilHandler = errors.New("nil message handler")
	// ErrNoDeviceSelected is returned when capture starts before SelectDevice.
	ErrNoDeviceSelected = errors.New("no MIDI device selected")
	// ErrInputNotUnderstood is returned when a typed answer cannot be parsed.
	ErrInputNotUnderstood = errors.New("input not understood")
)
