package app

// Control lets a handler ask the app to stop.
type Control struct {
	terminate bool
}

// EnqueueTerminate stops the app after the current frame.
func (c *Control) EnqueueTerminate() {
	c.terminate = true
}

func (c *Control) ShouldTerminate() bool {
	return c.terminate
}
