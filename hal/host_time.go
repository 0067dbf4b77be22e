package hal

import "time"

type hostClock struct {
	start time.Time
	now   func() time.Time
}

func newHostClock() *hostClock {
	return &hostClock{start: time.Now(), now: time.Now}
}

func (c *hostClock) Now() time.Duration { return c.now().Sub(c.start) }
