package booking

import (
	"testing"
	"time"
)

var jakarta = mustLoad("Asia/Jakarta")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func mondayOnly(start, end string) ActiveSchedule {
	return ActiveSchedule{time.Monday: {{Start: start, End: end}}}
}

func TestIsSlotAvailable_WithinAndOutsideSchedule(t *testing.T) {
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, jakarta)
	schedule := mondayOnly("09:00", "17:00")

	if !IsSlotAvailable(monday, 10, schedule, nil, nil) {
		t.Fatalf("expected 10:00 to be available")
	}
	if IsSlotAvailable(monday, 20, schedule, nil, nil) {
		t.Fatalf("expected 20:00 to be outside the schedule")
	}
	if IsSlotAvailable(monday, 17, schedule, nil, nil) {
		t.Fatalf("expected the slot end to be exclusive")
	}
	if !IsSlotAvailable(monday, 9, schedule, nil, nil) {
		t.Fatalf("expected the slot start to be inclusive")
	}
}

func TestIsSlotAvailable_UnscheduledWeekday(t *testing.T) {
	tuesday := time.Date(2024, 6, 11, 0, 0, 0, 0, jakarta)
	if IsSlotAvailable(tuesday, 10, mondayOnly("09:00", "17:00"), nil, nil) {
		t.Fatalf("expected tuesday to be unavailable")
	}
}

func TestIsSlotAvailable_DayOff(t *testing.T) {
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, jakarta)
	if IsSlotAvailable(monday, 10, mondayOnly("09:00", "17:00"), []string{"2024-06-10"}, nil) {
		t.Fatalf("expected day off to block every hour")
	}
}

func TestIsSlotAvailable_ExistingBookings(t *testing.T) {
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, jakarta)
	schedule := mondayOnly("00:00", "24:00")
	// 10:00-12:00 Jakarta time, stored in UTC.
	existing := []Interval{{
		Start: time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 10, 5, 0, 0, 0, time.UTC),
	}}

	tests := []struct {
		hour int
		want bool
	}{
		{9, true},
		{10, false},
		{11, false},
		{12, false}, // the ending hour is held as well
		{13, true},
	}
	for _, tt := range tests {
		got := IsSlotAvailable(monday, tt.hour, schedule, nil, existing)
		if got != tt.want {
			t.Fatalf("hour %d: got %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestIsSlotAvailable_BookingOnAnotherDayIgnored(t *testing.T) {
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, jakarta)
	existing := []Interval{{
		Start: time.Date(2024, 6, 11, 3, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 11, 5, 0, 0, 0, time.UTC),
	}}
	if !IsSlotAvailable(monday, 10, mondayOnly("09:00", "17:00"), nil, existing) {
		t.Fatalf("expected a booking on another day to be ignored")
	}
}

func TestIsSlotAvailable_BookingRunningToMidnight(t *testing.T) {
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	existing := []Interval{{
		Start: time.Date(2024, 6, 10, 22, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC),
	}}
	schedule := mondayOnly("00:00", "24:00")
	if IsSlotAvailable(monday, 23, schedule, nil, existing) {
		t.Fatalf("expected 23:00 to be taken")
	}
	if !IsSlotAvailable(monday, 21, schedule, nil, existing) {
		t.Fatalf("expected 21:00 to be free")
	}
}

// The availability law: available iff in schedule, not a day off and not booked.
func TestIsSlotAvailable_Law(t *testing.T) {
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, jakarta)
	schedule := ActiveSchedule{time.Monday: {{Start: "08:00", End: "12:00"}, {Start: "14:00", End: "20:00"}}}
	existing := []Interval{{
		Start: time.Date(2024, 6, 10, 9, 0, 0, 0, jakarta),
		End:   time.Date(2024, 6, 10, 11, 0, 0, 0, jakarta),
	}}

	for _, dayOffs := range [][]string{nil, {"2024-06-10"}} {
		for h := 0; h < 24; h++ {
			inSchedule := (h >= 8 && h < 12) || (h >= 14 && h < 20)
			booked := h >= 9 && h <= 11
			want := inSchedule && len(dayOffs) == 0 && !booked
			if got := IsSlotAvailable(monday, h, schedule, dayOffs, existing); got != want {
				t.Fatalf("hour %d dayOffs=%v: got %v, want %v", h, dayOffs, got, want)
			}
		}
	}
}

func TestAvailableHours(t *testing.T) {
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, jakarta)
	got := AvailableHours(monday, mondayOnly("09:00", "12:00"), nil, nil)
	want := []int{9, 10, 11}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestHourGrid(t *testing.T) {
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, jakarta)
	grid := HourGrid(monday, mondayOnly("09:00", "10:00"), nil, nil)
	if len(grid) != 24 {
		t.Fatalf("expected 24 cells, got %d", len(grid))
	}
	if !grid[9].Available || grid[10].Available {
		t.Fatalf("unexpected grid: 9=%v 10=%v", grid[9].Available, grid[10].Available)
	}
	if want := time.Date(2024, 6, 10, 2, 0, 0, 0, time.UTC); !grid[9].Start.Equal(want) {
		t.Fatalf("expected 09:00 WIB to start at %s, got %s", want, grid[9].Start.UTC())
	}
}

func TestCompileSchedule_MergesAndSkipsUnavailable(t *testing.T) {
	got, err := CompileSchedule([]ScheduleSlot{
		{DayOfWeek: time.Monday, StartTime: "13:00", EndTime: "17:00", IsAvailable: true},
		{DayOfWeek: time.Monday, StartTime: "09:00", EndTime: "13:00", IsAvailable: true},
		{DayOfWeek: time.Monday, StartTime: "19:00:00", EndTime: "21:00:00", IsAvailable: true},
		{DayOfWeek: time.Tuesday, StartTime: "09:00", EndTime: "10:00", IsAvailable: false},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, ok := got[time.Tuesday]; ok {
		t.Fatalf("expected unavailable tuesday to be dropped")
	}
	mon := got[time.Monday]
	if len(mon) != 2 {
		t.Fatalf("expected 2 merged ranges, got %v", mon)
	}
	if mon[0] != (SlotRange{Start: "09:00", End: "17:00"}) || mon[1] != (SlotRange{Start: "19:00", End: "21:00"}) {
		t.Fatalf("unexpected ranges %v", mon)
	}
}

func TestCompileSchedule_RejectsInvertedSlot(t *testing.T) {
	_, err := CompileSchedule([]ScheduleSlot{
		{DayOfWeek: time.Monday, StartTime: "17:00", EndTime: "09:00", IsAvailable: true},
	})
	if err == nil {
		t.Fatalf("expected an error for end before start")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
}
