package quest

import (
	"strings"

	"github.com/matzehuels/questgraph/pkg/datasource"
)

// Script instructions that carry unlock arguments.
const (
	instructionInstance = "INSTANCEDUNGEON"
	instructionClassJob = "CLASSJOB"
)

// Other-reward row range holding the soul stones of the original jobs.
const (
	soulStoneFirst = 10
	soulStoneLast  = 16
)

// instances lists the duties a quest unlocks. Repeatable quests unlock
// nothing. Entries are unique by content id.
func (d *deriver) instances(q *datasource.RawQuest) []Instance {
	if q.Repeatable {
		return nil
	}
	var out []Instance
	seen := make(map[uint32]bool)
	add := func(contentID uint32) {
		if contentID == 0 || seen[contentID] {
			return
		}
		cf, ok := d.instanceSheets.InstanceContent(contentID)
		if !ok {
			d.missing(q.ID, "instance_unlock", contentID)
			return
		}
		seen[contentID] = true
		out = append(out, Instance{ContentFinderID: cf.ID, ContentID: cf.Content, Name: cf.Name})
	}
	for _, p := range q.Params {
		if strings.Contains(p.Instruction, instructionInstance) {
			add(p.Arg)
		}
	}
	add(q.InstanceUnlock)
	return out
}

// job resolves the class or job a quest unlocks, trying in order the
// explicit reference, a CLASSJOB script parameter and the soul stone
// heuristic.
func (d *deriver) job(q *datasource.RawQuest, other *ItemReward) *Job {
	if q.ClassJobUnlock != 0 {
		return d.classJob(q, q.ClassJobUnlock, false)
	}
	for _, p := range q.Params {
		if strings.HasPrefix(p.Instruction, instructionClassJob) {
			return d.classJob(q, p.Arg, false)
		}
	}
	if other != nil && other.ID >= soulStoneFirst && other.ID <= soulStoneLast {
		return d.soulStoneJob(q, other)
	}
	return nil
}

func (d *deriver) classJob(q *datasource.RawQuest, id uint32, inferred bool) *Job {
	cj, ok := d.quests.ClassJob(id)
	if !ok {
		d.missing(q.ID, "class_job", id)
		return nil
	}
	return &Job{ID: cj.ID, Name: cj.Name, Abbreviation: cj.Abbreviation, Inferred: inferred}
}

// soulStoneJob is a best-effort guess for quests of the original jobs,
// which reference their soul stone only through the other-reward slot.
// The first default-language item sharing the stone's icon names the job
// through its ClassJobUse. It is a heuristic and may miss or misattribute.
func (d *deriver) soulStoneJob(q *datasource.RawQuest, other *ItemReward) *Job {
	if d.fallback == nil {
		return nil
	}
	item, ok := d.fallback.ItemByIcon(other.Icon)
	if !ok || item.ClassJobUse == 0 {
		return nil
	}
	return d.classJob(q, item.ClassJobUse, true)
}

// beastTribe reports the tribe whose daily quests the quest unlocks.
func (d *deriver) beastTribe(q *datasource.RawQuest) *Named {
	if q.BeastTribe == 0 || q.Repeatable || q.BeastRank != 0 {
		return nil
	}
	bt, ok := d.quests.BeastTribe(q.BeastTribe)
	if !ok {
		d.missing(q.ID, "beast_tribe", q.BeastTribe)
		return nil
	}
	return &Named{ID: bt.ID, Name: bt.Name}
}

// issuer resolves the pickup location. It also reports whether a non-zero
// reference failed to resolve.
func (d *deriver) issuer(q *datasource.RawQuest) (*Issuer, bool) {
	if q.IssuerLocation == 0 {
		return nil, false
	}
	lv, ok := d.quests.Level(q.IssuerLocation)
	if !ok {
		return nil, true
	}
	return &Issuer{Level: lv.ID, Map: lv.Map, Territory: lv.Territory, X: lv.X, Y: lv.Y, Z: lv.Z}, false
}
