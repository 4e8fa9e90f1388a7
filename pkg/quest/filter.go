package quest

import (
	"context"
	"iter"
	"strings"

	"golang.org/x/text/cases"

	"github.com/matzehuels/questgraph/pkg/config"
)

// category is one display gate of the search list.
type category struct {
	enabled func(config.Display) bool
	applies func(*Record) bool
	// fields yields the sub-field texts searched for this category when
	// its search flag is on. Nil means only the name is searched.
	fields func(*Record, config.Search) []string
}

// categories in priority order: MSQ, Normal, Blue, Emote, Instance,
// Job/Action, Item.
var categories = []category{
	{
		enabled: func(d config.Display) bool { return d.ShowMSQ },
		applies: func(r *Record) bool { return r.Type == TypeMSQ },
	},
	{
		enabled: func(d config.Display) bool { return d.ShowNormal },
		applies: func(r *Record) bool { return r.Type == TypeNormal },
	},
	{
		enabled: func(d config.Display) bool { return d.ShowBlue },
		applies: func(r *Record) bool { return r.Type == TypeBlue },
	},
	{
		enabled: func(d config.Display) bool { return d.ShowEmote },
		applies: (*Record).HasEmote,
		fields: func(r *Record, s config.Search) []string {
			if !s.IncludeEmotes {
				return nil
			}
			return []string{r.Emote.Name}
		},
	},
	{
		enabled: func(d config.Display) bool { return d.ShowInstanceUnlocks },
		applies: (*Record).HasInstanceUnlocks,
		fields: func(r *Record, s config.Search) []string {
			if !s.IncludeInstances {
				return nil
			}
			out := make([]string, len(r.Instances))
			for i, in := range r.Instances {
				out[i] = in.Name
			}
			return out
		},
	},
	{
		enabled: func(d config.Display) bool { return d.ShowJobAndAction },
		applies: (*Record).HasJobOrAction,
		fields: func(r *Record, s config.Search) []string {
			if !s.IncludeActions {
				return nil
			}
			var out []string
			if r.Job != nil {
				out = append(out, r.Job.Name)
			}
			if r.Action != nil {
				out = append(out, r.Action.Name)
			}
			for _, ga := range r.GeneralActions {
				out = append(out, ga.Name)
			}
			return out
		},
	},
	{
		enabled: func(d config.Display) bool { return d.ShowWithRewards },
		applies: (*Record).HasItemRewards,
		fields: func(r *Record, s config.Search) []string {
			if !s.IncludeItems {
				return nil
			}
			all := r.Rewards.All()
			out := make([]string, len(all))
			for i, it := range all {
				out[i] = it.Name
			}
			return out
		},
	},
}

// fold normalizes text for case-insensitive containment.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Matches reports whether r passes the reachability and category gates for
// the folded query q under cfg. The first enabled category that applies and
// accepts the query decides.
func Matches(r *Record, q string, cfg config.Config) bool {
	if !r.Reachable {
		return false
	}
	nameMatch := q == "" || strings.Contains(fold(r.Name), q)
	for _, c := range categories {
		if !c.enabled(cfg.Display) || !c.applies(r) {
			continue
		}
		if nameMatch {
			return true
		}
		if c.fields == nil {
			continue
		}
		for _, f := range c.fields(r, cfg.Search) {
			if strings.Contains(fold(f), q) {
				return true
			}
		}
	}
	return false
}

// Filter yields the reachable records matching query under the display and
// search settings of cfg, in ascending id order. The sequence can be ranged
// over repeatedly. Results are cached per case-folded query and dropped when
// the display or search settings differ from the previous call.
func (c *Catalog) Filter(query string, cfg config.Config) iter.Seq[*Record] {
	q := fold(strings.TrimSpace(query))
	fp := cfg.FilterFingerprint()
	return func(yield func(*Record) bool) {
		for _, r := range c.filtered(q, fp, cfg) {
			if !yield(r) {
				return
			}
		}
	}
}

func (c *Catalog) filtered(q, fp string, cfg config.Config) []*Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fp != c.fingerprint {
		clear(c.results)
		c.fingerprint = fp
	}
	if res, ok := c.results[q]; ok {
		c.hooks.OnFilter(context.Background(), true, len(res))
		return res
	}
	var res []*Record
	for r := range c.index.All() {
		if Matches(r, q, cfg) {
			res = append(res, r)
		}
	}
	c.results[q] = res
	c.hooks.OnFilter(context.Background(), false, len(res))
	return res
}
