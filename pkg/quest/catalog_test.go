package quest

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/matzehuels/questgraph/pkg/datasource"
	"github.com/matzehuels/questgraph/pkg/errors"
)

// scenarioPack is the four-quest diamond {1:[], 2:[1], 3:[1], 4:[2,3]}.
// Quest 1 is the only main scenario quest and has no other category.
func scenarioPack() *datasource.Pack {
	return &datasource.Pack{
		Quests: []datasource.RawQuest{
			{ID: 1, Name: "Close to Home", EventIconType: 3},
			{ID: 2, Name: "Way of the Gladiator", Previous: []uint32{1}, Rewards: []datasource.ItemReward{{Item: 10, Count: 1}}},
			{ID: 3, Name: "Just Deserts", Previous: []uint32{1}, EmoteReward: 5},
			{ID: 4, Name: "The Ultimate Weapon", Previous: []uint32{2, 3}, ActionReward: 7},
		},
		Items:   []datasource.Item{{ID: 10, Name: "Weathered Gladius", Icon: 30001}},
		Emotes:  []datasource.Emote{{ID: 5, Name: "Huzzah"}},
		Actions: []datasource.Action{{ID: 7, Name: "Fast Blade"}},
	}
}

func buildPack(t *testing.T, p *datasource.Pack) *Catalog {
	t.Helper()
	src := datasource.NewMemoryProvider(map[language.Tag]*datasource.Pack{language.English: p})
	cat, err := Build(context.Background(), src, SingleLanguage(language.English), BuildOptions{})
	require.NoError(t, err)
	return cat
}

func TestBuildInverseInvariant(t *testing.T) {
	cat := buildPack(t, scenarioPack())
	require.Equal(t, 4, cat.Len())

	for q := range cat.Index().All() {
		for _, p := range q.Prerequisites {
			prev, ok := cat.Get(p)
			if !ok {
				continue
			}
			assert.Contains(t, prev.Successors, q.ID, "quest %d should list %d as successor", p, q.ID)
		}
	}

	one, _ := cat.Get(1)
	assert.Equal(t, []uint32{2, 3}, one.Successors)
	four, _ := cat.Get(4)
	assert.Empty(t, four.Successors)
}

func TestBuildDuplicatesAndEmptyNames(t *testing.T) {
	p := &datasource.Pack{Quests: []datasource.RawQuest{
		{ID: 1, Name: "First"},
		{ID: 1, Name: "Second", EventIconType: 3},
		{ID: 2, Name: ""},
		{ID: 3, Name: "Third", Previous: []uint32{0, 2, 1}},
	}}
	cat := buildPack(t, p)

	require.Equal(t, 2, cat.Len())
	r, ok := cat.Get(1)
	require.True(t, ok)
	assert.Equal(t, "First", r.Name)
	assert.Equal(t, TypeNormal, r.Type)

	_, ok = cat.Get(2)
	assert.False(t, ok, "unnamed rows are skipped")

	third, _ := cat.Get(3)
	assert.Equal(t, []uint32{2, 1}, third.Prerequisites, "zero ids are removed, unknown ids kept")
	assert.Equal(t, []uint32{3}, r.Successors)
}

// The superseded flag is undocumented game data; this rule is provisional.
func TestBuildReachabilityProvisional(t *testing.T) {
	p := &datasource.Pack{
		Quests: []datasource.RawQuest{
			{ID: 1, Name: "superseded, valid issuer", Superseded: true, IssuerLocation: 100},
			{ID: 2, Name: "superseded, dangling issuer", Superseded: true, IssuerLocation: 999},
			{ID: 3, Name: "current, valid issuer", IssuerLocation: 100},
			{ID: 4, Name: "current, dangling issuer", IssuerLocation: 999},
			{ID: 5, Name: "current, no issuer"},
			{ID: 6, Name: "superseded, no issuer", Superseded: true},
		},
		Levels: []datasource.Level{{ID: 100, Map: 12, X: 1.5}},
	}
	cat := buildPack(t, p)

	tests := []struct {
		id   uint32
		want bool
	}{
		{1, false},
		{2, true},
		{3, true},
		{4, true},
		{5, true},
		// A zero issuer reference is "no issuer", not a dangling one, so a
		// superseded quest without an issuer stays unreachable.
		{6, false},
	}
	for _, tt := range tests {
		r, ok := cat.Get(tt.id)
		require.True(t, ok)
		assert.Equal(t, tt.want, r.Reachable, r.Name)
	}

	r, _ := cat.Get(3)
	require.NotNil(t, r.Issuer)
	assert.Equal(t, uint32(12), r.Issuer.Map)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		row  datasource.RawQuest
		want Type
	}{
		{"msq", datasource.RawQuest{EventIconType: 3}, TypeMSQ},
		{"msq icon blue subtype", datasource.RawQuest{EventIconType: 3, BlueSubtype: true}, TypeBlue},
		{"blue 8", datasource.RawQuest{EventIconType: 8}, TypeBlue},
		{"blue 10", datasource.RawQuest{EventIconType: 10}, TypeBlue},
		{"normal", datasource.RawQuest{EventIconType: 1}, TypeNormal},
		{"zero", datasource.RawQuest{}, TypeNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(&tt.row))
		})
	}
}

func TestBuildCancelled(t *testing.T) {
	src := datasource.NewMemoryProvider(map[language.Tag]*datasource.Pack{language.English: scenarioPack()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cat, err := Build(ctx, src, SingleLanguage(language.English), BuildOptions{})
	assert.Nil(t, cat)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildMissingLanguage(t *testing.T) {
	src := datasource.NewMemoryProvider(map[language.Tag]*datasource.Pack{language.English: scenarioPack()})
	_, err := Build(context.Background(), src, SingleLanguage(language.German), BuildOptions{})
	assert.ErrorIs(t, err, datasource.ErrLanguageNotAvailable)
}

func TestLookup(t *testing.T) {
	cat := buildPack(t, scenarioPack())

	r, err := cat.Lookup(2)
	require.NoError(t, err)
	assert.Equal(t, "Way of the Gladiator", r.Name)

	_, err = cat.Lookup(42)
	assert.True(t, errors.Is(err, errors.ErrCodeQuestNotFound))
}

func TestIndexAllAscending(t *testing.T) {
	p := &datasource.Pack{Quests: []datasource.RawQuest{
		{ID: 30, Name: "c"}, {ID: 10, Name: "a"}, {ID: 20, Name: "b"},
	}}
	cat := buildPack(t, p)

	var ids []uint32
	for r := range cat.Index().All() {
		ids = append(ids, r.ID)
	}
	assert.True(t, slices.IsSorted(ids))
	assert.Equal(t, []uint32{10, 20, 30}, ids)
}
