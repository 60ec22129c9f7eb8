package race

import (
	"fmt"
	"time"
)

// LapTimes returns the times of the completed laps.
func (s *Session) LapTimes() []time.Duration {
	out := make([]time.Duration, s.completedLaps())
	copy(out, s.lapTimes)
	return out
}

// TotalTime is the sum of completed laps plus the lap in progress.
func (s *Session) TotalTime() time.Duration {
	total := s.lapTime
	for _, t := range s.lapTimes[:s.completedLaps()] {
		total += t
	}
	return total
}

// AverageLap is the total time divided by completed laps, or by one before the
// first lap is done.
func (s *Session) AverageLap() time.Duration {
	n := s.completedLaps()
	if n == 0 {
		n = 1
	}
	return s.TotalTime() / time.Duration(n)
}

// FastestLap returns the quickest completed lap, or zero when none is done.
func (s *Session) FastestLap() time.Duration {
	var fastest time.Duration
	for _, t := range s.lapTimes[:s.completedLaps()] {
		if fastest == 0 || t < fastest {
			fastest = t
		}
	}
	return fastest
}

func (s *Session) completedLaps() int {
	if s.currentLap > len(s.lapTimes) {
		return len(s.lapTimes)
	}
	return s.currentLap
}

// FormatLapTime renders d as m:ss.mmm.
func FormatLapTime(d time.Duration) string {
	if d < 0 {
		return "-" + FormatLapTime(-d)
	}
	d = d.Round(time.Millisecond)
	mins := d / time.Minute
	d -= mins * time.Minute
	secs := d / time.Second
	d -= secs * time.Second
	return fmt.Sprintf("%d:%02d.%03d", mins, secs, d/time.Millisecond)
}
