package availability

import (
	"sort"

	"github.com/google/uuid"

	"github.com/Alijeyrad/oilcall_backend/internal/model"
	"github.com/Alijeyrad/oilcall_backend/pkg/timeslot"
)

type Source uint8

const (
	SourceRecurring Source = iota + 1
	SourceOverride
)

func (s Source) String() string {
	switch s {
	case SourceRecurring:
		return "recurring"
	case SourceOverride:
		return "override"
	}
	return "unknown"
}

// Row is one availability fact from either layer.
type Row struct {
	Source      Source
	Mechanic    model.MechanicRef
	Slot        string
	IsAvailable bool
}

func rowsFrom(src Source, in []model.SlotMechanic) []Row {
	out := make([]Row, 0, len(in))
	for _, sm := range in {
		out = append(out, Row{Source: src, Mechanic: sm.Mechanic, Slot: sm.TimeSlot, IsAvailable: sm.IsAvailable})
	}
	return out
}

type SlotAvailability struct {
	TimeSlot  string              `json:"time_slot"`
	Mechanics []model.MechanicRef `json:"mechanics"`
}

// group unions available rows by normalized slot. A technician appears once
// per slot however many rows name them. Unavailable rows contribute nothing,
// so an override marked false never hides a recurring true. Slots without
// technicians are omitted.
func group(rows []Row) []SlotAvailability {
	bySlot := make(map[string]map[uuid.UUID]model.MechanicRef)
	for _, r := range rows {
		if !r.IsAvailable {
			continue
		}
		slot := timeslot.Normalize(r.Slot)
		set, ok := bySlot[slot]
		if !ok {
			set = make(map[uuid.UUID]model.MechanicRef)
			bySlot[slot] = set
		}
		set[r.Mechanic.ID] = r.Mechanic
	}

	out := make([]SlotAvailability, 0, len(bySlot))
	for slot, set := range bySlot {
		mechanics := make([]model.MechanicRef, 0, len(set))
		for _, m := range set {
			mechanics = append(mechanics, m)
		}
		sortMechanics(mechanics)
		out = append(out, SlotAvailability{TimeSlot: slot, Mechanics: mechanics})
	}
	sort.Slice(out, func(i, j int) bool { return timeslot.Less(out[i].TimeSlot, out[j].TimeSlot) })
	return out
}

func sortMechanics(ms []model.MechanicRef) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Name != ms[j].Name {
			return ms[i].Name < ms[j].Name
		}
		return ms[i].ID.String() < ms[j].ID.String()
	})
}
