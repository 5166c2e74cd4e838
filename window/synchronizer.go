package window

import "time"

// TimeSynchronizer paces the main loop to real hardware speed by sleeping off
// whatever is left of each frame's time slice.
type TimeSynchronizer struct {
	prevTime   time.Time
	usPerFrame int64
}

func NewTimeSynchronizer(targetFPS float64) *TimeSynchronizer {
	return &TimeSynchronizer{
		prevTime:   time.Now(),
		usPerFrame: int64(1000000.0 / targetFPS),
	}
}

func (ts *TimeSynchronizer) MaySleep() {
	curTime := time.Now()
	diff := ts.usPerFrame - curTime.Sub(ts.prevTime).Microseconds()
	if diff > 0 {
		time.Sleep(time.Duration(diff) * time.Microsecond)
	}
	ts.prevTime = curTime
}
