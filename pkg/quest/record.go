// Package quest builds the in-memory quest catalog.
//
// A [Catalog] is built once per language from a [datasource.Provider]. Each
// raw quest row becomes a [Record] carrying its prerequisites, the derived
// successor list, its type and every reward or unlock fact that search and
// the detail views need. Records are immutable after [Build] returns, so a
// catalog can be shared freely between goroutines.
//
// # Building
//
// Build runs in two passes. The first pass converts rows into records,
// skipping unnamed rows and later duplicates of an id. The second pass
// inverts every prerequisite list into the successor list of the quest it
// names. Problems with individual rows (dangling references, even a panic
// while deriving a fact) are logged and skipped; Build itself only fails
// when the provider cannot enumerate rows or the context is cancelled.
//
// # Searching
//
// [Catalog.Filter] returns an [iter.Seq] of records matching a query under
// the display and search settings. Results are cached per folded query until
// those settings change.
package quest

import "fmt"

// Type classifies a quest by its journal icon.
type Type int

const (
	TypeNormal Type = iota
	TypeMSQ
	TypeBlue
)

// Event icon categories that decide the quest type.
const (
	eventIconMSQ   = 3
	eventIconBlue  = 8
	eventIconBlue2 = 10
)

func (t Type) String() string {
	switch t {
	case TypeMSQ:
		return "msq"
	case TypeBlue:
		return "blue"
	case TypeNormal:
		return "normal"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Record is one quest with its derived facts.
type Record struct {
	ID            uint32
	Name          string
	Prerequisites []uint32 // declared order, zero ids removed
	Successors    []uint32 // ascending by id
	Type          Type
	Repeatable    bool
	Reachable     bool

	Gil            uint32
	Rewards        Rewards
	Emote          *Named
	Action         *Named
	GeneralActions []Named
	Job            *Job
	Instances      []Instance
	BeastTribe     *Named
	Issuer         *Issuer
}

// Named is a referenced row reduced to its id and display name.
type Named struct {
	ID   uint32
	Name string
}

// Job is a class or job unlocked by a quest.
type Job struct {
	ID           uint32
	Name         string
	Abbreviation string
	// Inferred is set when the job was derived from a soul stone reward
	// rather than declared by the quest.
	Inferred bool
}

// Instance is a duty unlocked by a quest.
type Instance struct {
	ContentFinderID uint32
	ContentID       uint32
	Name            string
}

// Issuer is where the quest is picked up.
type Issuer struct {
	Level     uint32
	Map       uint32
	Territory uint32
	X, Y, Z   float64
}

// HasEmote reports whether the quest rewards an emote.
func (r *Record) HasEmote() bool { return r.Emote != nil }

// HasInstanceUnlocks reports whether the quest unlocks at least one duty.
func (r *Record) HasInstanceUnlocks() bool { return len(r.Instances) > 0 }

// HasJobOrAction reports whether the quest unlocks a job or rewards an
// action or general action.
func (r *Record) HasJobOrAction() bool {
	return r.Job != nil || r.Action != nil || len(r.GeneralActions) > 0
}

// HasItemRewards reports whether the quest rewards any item.
func (r *Record) HasItemRewards() bool { return r.Rewards.Any() }
