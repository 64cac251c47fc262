package logic

import "testing"

func TestScheduleFiresAfterThreshold(t *testing.T) {
	s := NewSchedule(4)

	var fired []uint32
	for tick := uint32(0); tick <= 20; tick++ {
		if s.Due(tick) {
			fired = append(fired, tick)
		}
	}

	want := []uint32{5, 10, 15, 20}
	if len(fired) != len(want) {
		t.Fatalf("fired at %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("firing %d: got tick %d, want %d", i, fired[i], want[i])
		}
	}
}

func TestScheduleFiresOnceAfterGap(t *testing.T) {
	s := NewSchedule(9)

	// A long stall (irregular delivery) must produce one firing, not a burst.
	if !s.Due(100) {
		t.Fatal("expected firing after a long gap")
	}
	for tick := uint32(101); tick <= 109; tick++ {
		if s.Due(tick) {
			t.Errorf("unexpected firing at tick %d", tick)
		}
	}
	if !s.Due(110) {
		t.Error("expected firing at tick 110")
	}
	if s.Last() != 110 {
		t.Errorf("Last: got %d, want 110", s.Last())
	}
}

func TestScheduleWrapAround(t *testing.T) {
	s := NewSchedule(4)
	s.last = ^uint32(0) - 1

	if s.Due(2) != false {
		t.Error("4 ticks across wrap should not fire")
	}
	if !s.Due(3) {
		t.Error("5 ticks across wrap should fire")
	}
}

func TestSchedulesAreIndependent(t *testing.T) {
	fast := NewSchedule(4)
	slow := NewSchedule(9)

	var nFast, nSlow int
	for tick := uint32(0); tick < 100; tick++ {
		if fast.Due(tick) {
			nFast++
		}
		if slow.Due(tick) {
			nSlow++
		}
	}
	if nFast != 19 {
		t.Errorf("fast firings: got %d, want 19", nFast)
	}
	if nSlow != 9 {
		t.Errorf("slow firings: got %d, want 9", nSlow)
	}
}
