package availability

// NoLunch disables the lunch exclusion of a grid.
const NoLunch = -1

// GridConfig describes a fixed slot grid. Slots start at Start, every Step
// minutes, must end by End and never overlap the LunchHour.
type GridConfig struct {
	Start     Clock
	End       Clock
	Step      int
	LunchHour int
}

var DefaultGrid = GridConfig{
	Start:     At(9, 0),
	End:       At(18, 0),
	Step:      30,
	LunchHour: 13,
}

func (g GridConfig) overlapsLunch(start, end Clock) bool {
	if g.LunchHour == NoLunch {
		return false
	}
	lunchStart := At(g.LunchHour, 0)
	return start < lunchStart.Add(60) && end > lunchStart
}

// window generates slot starts inside [from, to) for slots of length
// minutes, stepping by step.
func (g GridConfig) window(from, to Clock, step, length int) []Slot {
	if step <= 0 {
		return nil
	}
	if length <= 0 {
		length = step
	}
	var slots []Slot
	for c := from; c.Add(length) <= to; c = c.Add(step) {
		end := c.Add(length)
		if g.overlapsLunch(c, end) {
			continue
		}
		slots = append(slots, Slot{Start: c, End: end, Available: true})
	}
	return slots
}

// TimeCandidates returns the start of every slot of the grid. The default
// grid yields 16 half-hour slots with none in the 13:00 hour.
func TimeCandidates(g GridConfig) []Clock {
	slots := g.window(g.Start, g.End, g.Step, g.Step)
	out := make([]Clock, len(slots))
	for i, s := range slots {
		out[i] = s.Start
	}
	return out
}
