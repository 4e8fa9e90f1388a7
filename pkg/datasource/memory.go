package datasource

import (
	"context"
	"slices"

	"golang.org/x/text/language"
)

// MemoryProvider serves packs held in memory, keyed by language.
// The zero value serves nothing; use [NewMemoryProvider].
type MemoryProvider struct {
	packs  map[language.Tag]*Pack
	sheets map[language.Tag]*Sheets
}

// NewMemoryProvider returns a provider serving the given packs.
// The packs must not be modified afterwards.
func NewMemoryProvider(packs map[language.Tag]*Pack) *MemoryProvider {
	p := &MemoryProvider{
		packs:  make(map[language.Tag]*Pack, len(packs)),
		sheets: make(map[language.Tag]*Sheets, len(packs)),
	}
	for lang, pack := range packs {
		p.packs[lang] = pack
		p.sheets[lang] = NewSheets(pack)
	}
	return p
}

// Quests implements [Provider].
func (p *MemoryProvider) Quests(ctx context.Context, lang language.Tag) ([]RawQuest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pack, ok := p.packs[lang]
	if !ok {
		return nil, ErrLanguageNotAvailable
	}
	return slices.Clone(pack.Quests), nil
}

// Sheets implements [Provider].
func (p *MemoryProvider) Sheets(ctx context.Context, lang language.Tag) (*Sheets, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := p.sheets[lang]
	if !ok {
		return nil, ErrLanguageNotAvailable
	}
	return s, nil
}

var _ Provider = (*MemoryProvider)(nil)
