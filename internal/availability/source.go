package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/model"
)

type Slot struct {
	Start     Clock `json:"start"`
	End       Clock `json:"end"`
	Available bool  `json:"available"`
}

type Query struct {
	DoctorID uuid.UUID
	// BranchID restricts schedule rows to one branch; uuid.Nil means any.
	BranchID uuid.UUID
	Date     model.Date
	// Duration is the length of the requested service in minutes. Zero
	// uses the schedule's own slot length.
	Duration int
}

// Source produces the time slots offered for one doctor and date.
type Source interface {
	Slots(ctx context.Context, q Query) ([]Slot, error)
}

// StaticSource offers the fixed grid with every slot available.
type StaticSource struct {
	Grid GridConfig
}

func (s StaticSource) Slots(_ context.Context, q Query) ([]Slot, error) {
	return s.Grid.window(s.Grid.Start, s.Grid.End, s.Grid.Step, q.Duration), nil
}

// ScheduleStore is the read side ScheduleSource needs.
type ScheduleStore interface {
	ListSchedules(ctx context.Context, doctorID uuid.UUID) ([]model.DoctorSchedule, error)
	// GetOverride returns nil without error when the date has no override.
	GetOverride(ctx context.Context, doctorID, branchID uuid.UUID, date model.Date) (*model.ScheduleOverride, error)
	ListBookedSlots(ctx context.Context, doctorID uuid.UUID, date model.Date) ([]model.BookedSlot, error)
}

// ScheduleSource derives slots from weekly schedule rows, date overrides
// and already booked appointments. The result depends only on the stored
// rows and the current time.
type ScheduleSource struct {
	Store    ScheduleStore
	Grid     GridConfig
	Location *time.Location
	Now      func() time.Time
}

func NewScheduleSource(store ScheduleStore, grid GridConfig, loc *time.Location) *ScheduleSource {
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleSource{Store: store, Grid: grid, Location: loc, Now: time.Now}
}

func (s *ScheduleSource) Slots(ctx context.Context, q Query) ([]Slot, error) {
	schedules, err := s.Store.ListSchedules(ctx, q.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	var slots []Slot
	if len(schedules) == 0 {
		slots, _ = StaticSource{Grid: s.Grid}.Slots(ctx, q)
	} else {
		override, err := s.Store.GetOverride(ctx, q.DoctorID, q.BranchID, q.Date)
		if err != nil {
			return nil, fmt.Errorf("get schedule override: %w", err)
		}
		slots = s.scheduled(schedules, override, q)
	}
	if len(slots) == 0 {
		return []Slot{}, nil
	}

	booked, err := s.Store.ListBookedSlots(ctx, q.DoctorID, q.Date)
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}
	if err := markBooked(slots, booked); err != nil {
		return nil, err
	}
	s.markElapsed(slots, q.Date)
	return slots, nil
}

func (s *ScheduleSource) scheduled(schedules []model.DoctorSchedule, override *model.ScheduleOverride, q Query) []Slot {
	var windows []model.DoctorSchedule
	weekday := int(q.Date.Weekday())
	for _, sc := range schedules {
		if !sc.IsActive || sc.DayOfWeek != weekday {
			continue
		}
		if q.BranchID != uuid.Nil && sc.BranchID != q.BranchID {
			continue
		}
		windows = append(windows, sc)
	}

	if override != nil {
		if !override.IsAvailable {
			return nil
		}
		if override.StartTime != nil && override.EndTime != nil {
			step := s.Grid.Step
			if len(windows) > 0 && windows[0].SlotMinutes > 0 {
				step = windows[0].SlotMinutes
			}
			windows = []model.DoctorSchedule{{
				StartTime:   *override.StartTime,
				EndTime:     *override.EndTime,
				SlotMinutes: step,
			}}
		} else if len(windows) == 0 {
			windows = []model.DoctorSchedule{{
				StartTime:   s.Grid.Start.String(),
				EndTime:     s.Grid.End.String(),
				SlotMinutes: s.Grid.Step,
			}}
		}
	}

	seen := make(map[Clock]bool)
	var slots []Slot
	for _, w := range windows {
		from, err := ParseClock(w.StartTime)
		if err != nil {
			continue
		}
		to, err := ParseClock(w.EndTime)
		if err != nil {
			continue
		}
		step := w.SlotMinutes
		if step <= 0 {
			step = s.Grid.Step
		}
		for _, slot := range s.Grid.window(from, to, step, q.Duration) {
			if seen[slot.Start] {
				continue
			}
			seen[slot.Start] = true
			slots = append(slots, slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	return slots
}

func markBooked(slots []Slot, booked []model.BookedSlot) error {
	for _, b := range booked {
		start, err := ParseClock(b.StartTime)
		if err != nil {
			return fmt.Errorf("booked slot: %w", err)
		}
		end, err := ParseClock(b.EndTime)
		if err != nil {
			return fmt.Errorf("booked slot: %w", err)
		}
		for i := range slots {
			if slots[i].Start < end && slots[i].End > start {
				slots[i].Available = false
			}
		}
	}
	return nil
}

// markElapsed closes every slot of a past date and the slots of today that
// have already started.
func (s *ScheduleSource) markElapsed(slots []Slot, date model.Date) {
	now := s.Now().In(s.Location)
	today := Today(now)
	day := date.In(s.Location)
	switch {
	case day.Before(today.Time):
		for i := range slots {
			slots[i].Available = false
		}
	case day.Equal(today):
		current := At(now.Hour(), now.Minute())
		for i := range slots {
			if slots[i].Start <= current {
				slots[i].Available = false
			}
		}
	}
}
