// Package datasource provides access to the game's quest data tables.
//
// The quest catalog consumes data through the [Provider] interface: one call
// enumerates every raw quest row of a language, another returns the typed
// secondary sheets (items, emotes, jobs, instances, map locations) used to
// derive rewards and unlocks. [TOMLProvider] reads data packs exported to
// TOML, one file per language; [MemoryProvider] serves packs built in code
// and is what tests use.
//
// # Data Pack Layout
//
//	data/
//	  en.toml
//	  de.toml
//	  ja.toml
//
// Each file holds arrays of tables named after the sheets:
//
//	[[quests]]
//	id = 65621
//	name = "Close to Home"
//	previous = []
//	event_icon_type = 3
//
//	[[items]]
//	id = 4551
//	name = "Potion"
//	icon = 20601
package datasource

import (
	"context"
	"errors"

	"golang.org/x/text/language"
)

// ErrLanguageNotAvailable is returned when no data pack exists for a language.
var ErrLanguageNotAvailable = errors.New("language not available")

// Provider is the quest-data collaborator consumed by the catalog.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Quests returns every raw quest row of the given language in sheet order.
	Quests(ctx context.Context, lang language.Tag) ([]RawQuest, error)

	// Sheets returns the secondary lookup sheets of the given language.
	Sheets(ctx context.Context, lang language.Tag) (*Sheets, error)
}

// Sheets indexes the secondary tables of one pack by row id.
// It is immutable after construction.
type Sheets struct {
	items          map[uint32]Item
	itemsByIcon    map[uint32]Item
	emotes         map[uint32]Emote
	actions        map[uint32]Action
	generalActions map[uint32]GeneralAction
	classJobs      map[uint32]ClassJob
	content        map[uint32]ContentFinder
	levels         map[uint32]Level
	beastTribes    map[uint32]BeastTribe
	stains         map[uint32]Stain
}

// NewSheets indexes the secondary tables of p. Duplicate row ids keep the
// first occurrence, matching the quest sheet rule.
func NewSheets(p *Pack) *Sheets {
	s := &Sheets{
		items:          make(map[uint32]Item, len(p.Items)),
		itemsByIcon:    make(map[uint32]Item, len(p.Items)),
		emotes:         indexRows(p.Emotes, func(r Emote) uint32 { return r.ID }),
		actions:        indexRows(p.Actions, func(r Action) uint32 { return r.ID }),
		generalActions: indexRows(p.GeneralActions, func(r GeneralAction) uint32 { return r.ID }),
		classJobs:      indexRows(p.ClassJobs, func(r ClassJob) uint32 { return r.ID }),
		content:        make(map[uint32]ContentFinder),
		levels:         indexRows(p.Levels, func(r Level) uint32 { return r.ID }),
		beastTribes:    indexRows(p.BeastTribes, func(r BeastTribe) uint32 { return r.ID }),
		stains:         indexRows(p.Stains, func(r Stain) uint32 { return r.ID }),
	}
	for _, it := range p.Items {
		if _, ok := s.items[it.ID]; !ok {
			s.items[it.ID] = it
		}
		if _, ok := s.itemsByIcon[it.Icon]; !ok && it.Icon != 0 {
			s.itemsByIcon[it.Icon] = it
		}
	}
	// Only instance content (link type 1) can be unlocked by quests.
	for _, cf := range p.ContentFinder {
		if cf.LinkType != 1 || cf.Content == 0 {
			continue
		}
		if _, ok := s.content[cf.Content]; !ok {
			s.content[cf.Content] = cf
		}
	}
	return s
}

func indexRows[T any](rows []T, id func(T) uint32) map[uint32]T {
	m := make(map[uint32]T, len(rows))
	for _, r := range rows {
		k := id(r)
		if _, ok := m[k]; !ok {
			m[k] = r
		}
	}
	return m
}

// Item returns the item row with the given id.
func (s *Sheets) Item(id uint32) (Item, bool) { return lookup(s.items, id) }

// ItemByIcon returns the first item row using the given icon.
func (s *Sheets) ItemByIcon(icon uint32) (Item, bool) { return lookup(s.itemsByIcon, icon) }

// Emote returns the emote row with the given id.
func (s *Sheets) Emote(id uint32) (Emote, bool) { return lookup(s.emotes, id) }

// Action returns the action row with the given id.
func (s *Sheets) Action(id uint32) (Action, bool) { return lookup(s.actions, id) }

// GeneralAction returns the general action row with the given id.
func (s *Sheets) GeneralAction(id uint32) (GeneralAction, bool) {
	return lookup(s.generalActions, id)
}

// ClassJob returns the class/job row with the given id.
func (s *Sheets) ClassJob(id uint32) (ClassJob, bool) { return lookup(s.classJobs, id) }

// InstanceContent returns the content finder row linked to the given
// instance content id.
func (s *Sheets) InstanceContent(contentID uint32) (ContentFinder, bool) {
	return lookup(s.content, contentID)
}

// Level returns the level row with the given id.
func (s *Sheets) Level(id uint32) (Level, bool) { return lookup(s.levels, id) }

// BeastTribe returns the beast tribe row with the given id.
func (s *Sheets) BeastTribe(id uint32) (BeastTribe, bool) { return lookup(s.beastTribes, id) }

// Stain returns the dye row with the given id.
func (s *Sheets) Stain(id uint32) (Stain, bool) { return lookup(s.stains, id) }

func lookup[T any](m map[uint32]T, id uint32) (T, bool) {
	if id == 0 {
		var zero T
		return zero, false
	}
	v, ok := m[id]
	return v, ok
}
