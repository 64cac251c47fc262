package logic

// Schedule fires at most once per threshold-sized gap of a shared tick counter.
//
// Due compares by difference rather than modulo, so each schedule resets itself
// when it fires and tolerates irregular tick delivery. The unsigned subtraction
// stays correct across counter wrap-around.
type Schedule struct {
	Every uint32
	last  uint32
}

// NewSchedule creates a schedule that fires when more than every ticks have
// elapsed since the last firing (or since tick 0).
func NewSchedule(every uint32) *Schedule {
	return &Schedule{Every: every}
}

// Due reports whether the schedule fires at tick, recording the firing.
func (s *Schedule) Due(tick uint32) bool {
	if tick-s.last > s.Every {
		s.last = tick
		return true
	}
	return false
}

// Last returns the tick of the most recent firing.
func (s *Schedule) Last() uint32 {
	return s.last
}
