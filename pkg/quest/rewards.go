package quest

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/questgraph/pkg/datasource"
	"github.com/matzehuels/questgraph/pkg/errors"
)

// ItemReward is an item handed out by a quest.
type ItemReward struct {
	ID    uint32
	Name  string
	Icon  uint32
	Count uint32
	HQ    bool
	Stain string // dye name, empty when undyed
}

// Rewards groups the item rewards of a quest.
type Rewards struct {
	Items     []ItemReward
	Catalysts []ItemReward
	Optional  []ItemReward
	Other     *ItemReward
}

// Any reports whether at least one item reward is present.
func (r Rewards) Any() bool {
	return len(r.Items) > 0 || len(r.Catalysts) > 0 || len(r.Optional) > 0 || r.Other != nil
}

// All yields every item reward, the other reward last.
func (r Rewards) All() []ItemReward {
	out := make([]ItemReward, 0, len(r.Items)+len(r.Catalysts)+len(r.Optional)+1)
	out = append(out, r.Items...)
	out = append(out, r.Catalysts...)
	out = append(out, r.Optional...)
	if r.Other != nil {
		out = append(out, *r.Other)
	}
	return out
}

// deriver turns raw references into resolved facts. Unresolvable
// references are logged and dropped one at a time.
type deriver struct {
	quests         *datasource.Sheets // quest language: locations, jobs, tribes
	rewards        *datasource.Sheets // reward language: items, dyes, emotes, actions
	instanceSheets *datasource.Sheets // instance language: content finder
	fallback       *datasource.Sheets // default language items, may be nil
	logger         *log.Logger
}

func (d *deriver) missing(quest uint32, field string, ref uint32) {
	err := &errors.ShapeError{Quest: quest, Field: field, Ref: ref}
	d.logger.Debug("skipping fact", "quest", quest, "err", err)
}

func (d *deriver) itemRewards(q *datasource.RawQuest, slots []datasource.ItemReward, field string) []ItemReward {
	var out []ItemReward
	for _, s := range slots {
		if s.Item == 0 {
			continue
		}
		item, ok := d.rewards.Item(s.Item)
		if !ok {
			d.missing(q.ID, field, s.Item)
			continue
		}
		r := ItemReward{ID: item.ID, Name: item.Name, Icon: item.Icon, Count: s.Count, HQ: s.HQ}
		if s.Stain != 0 {
			if st, ok := d.rewards.Stain(s.Stain); ok {
				r.Stain = st.Name
			} else {
				d.missing(q.ID, field+"_stain", s.Stain)
			}
		}
		out = append(out, r)
	}
	return out
}

func (d *deriver) deriveRewards(q *datasource.RawQuest) Rewards {
	r := Rewards{
		Items:     d.itemRewards(q, q.Rewards, "reward_item"),
		Catalysts: d.itemRewards(q, q.Catalysts, "catalyst_item"),
		Optional:  d.itemRewards(q, q.Optional, "optional_item"),
	}
	// Catalysts are never dyed or high quality.
	for i := range r.Catalysts {
		r.Catalysts[i].HQ = false
		r.Catalysts[i].Stain = ""
	}
	if q.OtherReward != 0 {
		if item, ok := d.rewards.Item(q.OtherReward); ok {
			r.Other = &ItemReward{ID: item.ID, Name: item.Name, Icon: item.Icon, Count: 1}
		} else {
			d.missing(q.ID, "other_reward", q.OtherReward)
		}
	}
	return r
}

func (d *deriver) emote(q *datasource.RawQuest) *Named {
	if q.EmoteReward == 0 {
		return nil
	}
	e, ok := d.rewards.Emote(q.EmoteReward)
	if !ok {
		d.missing(q.ID, "emote_reward", q.EmoteReward)
		return nil
	}
	return &Named{ID: e.ID, Name: e.Name}
}

func (d *deriver) action(q *datasource.RawQuest) *Named {
	if q.ActionReward == 0 {
		return nil
	}
	a, ok := d.rewards.Action(q.ActionReward)
	if !ok {
		d.missing(q.ID, "action_reward", q.ActionReward)
		return nil
	}
	return &Named{ID: a.ID, Name: a.Name}
}

func (d *deriver) generalActions(q *datasource.RawQuest) []Named {
	var out []Named
	for _, id := range q.GeneralActions {
		if id == 0 {
			continue
		}
		ga, ok := d.rewards.GeneralAction(id)
		if !ok {
			d.missing(q.ID, "general_action", id)
			continue
		}
		out = append(out, Named{ID: ga.ID, Name: ga.Name})
	}
	return out
}
