package metrics

import (
	"math"

	"github.com/san-kum/dispsim/internal/sim"
)

// DriveEffort is the mean absolute drive seen at the probe.
type DriveEffort struct {
	name    string
	sum     float64
	samples int
}

func NewDriveEffort() *DriveEffort {
	return &DriveEffort{
		name: "drive_effort",
	}
}

func (c *DriveEffort) Name() string {
	return c.name
}

func (c *DriveEffort) Observe(s sim.Sample) {
	c.sum += math.Abs(s.W)
	c.samples++
}

func (c *DriveEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *DriveEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
