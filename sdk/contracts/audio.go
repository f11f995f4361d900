package contracts

// AudioInput is a blocking mono 16-bit sample source.
type AudioInput interface {
	// Read fills buf with the next len(buf) samples, blocking until they are available.
	Read(buf []int16) error
	// SampleRate returns the sampling frequency in Hz.
	SampleRate() int
	// Close stops the stream and releases the device.
	Close() error
}

// AudioConfig holds the capture and analysis parameters of the pitch listener.
type AudioConfig struct {
	DeviceIndex  int     // Audio input device; negative selects the default input.
	SampleRate   int     // Sampling frequency in Hz.
	FrameSize    int     // Samples per blocking read.
	FramesPerFFT int     // Frames in the analysis window; also the warm-up length.
	RMSThreshold float64 // Windowed RMS (int16 scale) below which frames are ignored.
}

// DefaultAudioConfig returns the analysis parameters tuned for voice and guitar.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		DeviceIndex:  -1,
		SampleRate:   22050,
		FrameSize:    2048,
		FramesPerFFT: 16,
		RMSThreshold: 10,
	}
}

// WindowSize is the number of samples analysed per FFT.
func (c AudioConfig) WindowSize() int { return c.FrameSize * c.FramesPerFFT }
