package interfaces

// Publisher delivers framed delta batches to subscribers. Implementations
// own their transport threads; the main loop only hands frames over.
type Publisher interface {
	// PublishFrames sends one batch of (topic, payload) pairs.
	PublishFrames(frames [][2][]byte) error

	// PublishShutdown sends the one-shot shutdown sentinel.
	PublishShutdown() error
}
