package quest

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"github.com/matzehuels/questgraph/pkg/config"
	"github.com/matzehuels/questgraph/pkg/datasource"
	"github.com/matzehuels/questgraph/pkg/errors"
	"github.com/matzehuels/questgraph/pkg/observability"
)

// Languages selects the data pack language per concern.
type Languages struct {
	Quests    language.Tag // quest names, locations, jobs
	Rewards   language.Tag // item, emote and action names
	Instances language.Tag // duty names
}

// SingleLanguage uses lang for every concern.
func SingleLanguage(lang language.Tag) Languages {
	return Languages{Quests: lang, Rewards: lang, Instances: lang}
}

// ParseLanguages validates the language settings.
func ParseLanguages(cfg config.Language) (Languages, error) {
	var (
		l   Languages
		err error
	)
	if l.Quests, err = datasource.ParseLanguage(cfg.Quests); err != nil {
		return Languages{}, err
	}
	if l.Rewards, err = datasource.ParseLanguage(cfg.Rewards); err != nil {
		return Languages{}, err
	}
	if l.Instances, err = datasource.ParseLanguage(cfg.Instances); err != nil {
		return Languages{}, err
	}
	return l, nil
}

// BuildOptions configures [Build].
type BuildOptions struct {
	Logger *log.Logger
	Hooks  observability.PipelineHooks
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Hooks == nil {
		o.Hooks = observability.NoopPipelineHooks{}
	}
	return o
}

// Catalog is an immutable quest index for one language selection, plus the
// search cache bound to it.
type Catalog struct {
	langs  Languages
	index  *Index
	hooks  observability.PipelineHooks
	logger *log.Logger

	mu          sync.Mutex
	fingerprint string
	results     map[string][]*Record
}

// Build reads every quest row from src and returns the catalog.
func Build(ctx context.Context, src datasource.Provider, langs Languages, opts BuildOptions) (*Catalog, error) {
	opts = opts.withDefaults()
	start := time.Now()
	cat, err := build(ctx, src, langs, opts)
	n := 0
	if cat != nil {
		n = cat.index.Len()
	}
	opts.Hooks.OnCatalogBuild(ctx, langs.Quests.String(), n, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("quest catalog built", "lang", langs.Quests, "quests", n, "elapsed", time.Since(start).Round(time.Millisecond))
	return cat, nil
}

func build(ctx context.Context, src datasource.Provider, langs Languages, opts BuildOptions) (*Catalog, error) {
	rows, err := src.Quests(ctx, langs.Quests)
	if err != nil {
		return nil, err
	}
	d, err := newDeriver(ctx, src, langs, opts.Logger)
	if err != nil {
		return nil, err
	}

	ix := &Index{}
	for i := range rows {
		if i%512 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := &rows[i]
		if row.Name == "" {
			continue
		}
		if _, dup := ix.Get(row.ID); dup {
			opts.Logger.Debug("dropping duplicate quest row", "quest", row.ID)
			continue
		}
		rec, err := d.guardedRecord(row)
		if err != nil {
			opts.Logger.Warn("skipping quest row", "quest", row.ID, "err", err)
			continue
		}
		ix.insert(rec)
	}
	linkSuccessors(ix)

	return &Catalog{
		langs:   langs,
		index:   ix,
		hooks:   opts.Hooks,
		logger:  opts.Logger,
		results: make(map[string][]*Record),
	}, nil
}

func newDeriver(ctx context.Context, src datasource.Provider, langs Languages, logger *log.Logger) (*deriver, error) {
	d := &deriver{logger: logger}
	var err error
	if d.quests, err = src.Sheets(ctx, langs.Quests); err != nil {
		return nil, err
	}
	if d.rewards, err = src.Sheets(ctx, langs.Rewards); err != nil {
		return nil, err
	}
	if d.instanceSheets, err = src.Sheets(ctx, langs.Instances); err != nil {
		return nil, err
	}
	d.fallback, err = src.Sheets(ctx, datasource.DefaultLanguage)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("soul stone job lookup disabled", "lang", datasource.DefaultLanguage, "err", err)
		d.fallback = nil
	}
	return d, nil
}

// guardedRecord converts one row, turning a panic into an error so a single
// malformed row cannot abort the build.
func (d *deriver) guardedRecord(row *datasource.RawQuest) (rec *Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = errors.New(errors.ErrCodeDataShape, "quest %d: %v", row.ID, r)
		}
	}()
	return d.record(row), nil
}

func (d *deriver) record(row *datasource.RawQuest) *Record {
	rec := &Record{
		ID:         row.ID,
		Name:       row.Name,
		Type:       classify(row),
		Repeatable: row.Repeatable,
		Gil:        row.Gil,
	}
	for _, p := range row.Previous {
		if p != 0 {
			rec.Prerequisites = append(rec.Prerequisites, p)
		}
	}

	issuer, dangling := d.issuer(row)
	rec.Issuer = issuer
	rec.Reachable = reachable(row.Superseded, dangling)

	rec.Rewards = d.deriveRewards(row)
	rec.Emote = d.emote(row)
	rec.Action = d.action(row)
	rec.GeneralActions = d.generalActions(row)
	rec.Instances = d.instances(row)
	rec.Job = d.job(row, rec.Rewards.Other)
	rec.BeastTribe = d.beastTribe(row)
	return rec
}

// reachable reports whether a quest can still be picked up. Superseded
// quests are hidden unless their issuer reference dangles. The meaning of
// the superseded flag is inferred from observed data, not documented.
func reachable(superseded, issuerDangling bool) bool {
	return !superseded || issuerDangling
}

func classify(row *datasource.RawQuest) Type {
	switch row.EventIconType {
	case eventIconMSQ:
		if row.BlueSubtype {
			return TypeBlue
		}
		return TypeMSQ
	case eventIconBlue, eventIconBlue2:
		return TypeBlue
	default:
		return TypeNormal
	}
}

// linkSuccessors fills every record's successor list from the prerequisite
// lists of the others. Prerequisites naming unknown quests are ignored.
func linkSuccessors(ix *Index) {
	for rec := range ix.All() {
		for _, p := range rec.Prerequisites {
			if prev, ok := ix.Get(p); ok && !slices.Contains(prev.Successors, rec.ID) {
				prev.Successors = append(prev.Successors, rec.ID)
			}
		}
	}
}

// Languages returns the language selection the catalog was built for.
func (c *Catalog) Languages() Languages { return c.langs }

// Index returns the quest index.
func (c *Catalog) Index() *Index { return c.index }

// Len returns the number of quests.
func (c *Catalog) Len() int { return c.index.Len() }

// Get returns the record for id.
func (c *Catalog) Get(id uint32) (*Record, bool) { return c.index.Get(id) }

// Lookup returns the record for id or a QUEST_NOT_FOUND error.
func (c *Catalog) Lookup(id uint32) (*Record, error) {
	if r, ok := c.index.Get(id); ok {
		return r, nil
	}
	return nil, errors.New(errors.ErrCodeQuestNotFound, "quest %d not in catalog", id)
}

func (c *Catalog) String() string {
	return fmt.Sprintf("Catalog(%s, %d quests)", c.langs.Quests, c.Len())
}
