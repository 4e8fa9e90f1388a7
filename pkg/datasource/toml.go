package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"

	"github.com/matzehuels/questgraph/pkg/errors"
)

// TOMLProvider reads one data pack per language from a directory.
// Packs are decoded on first use and kept for the provider's lifetime.
type TOMLProvider struct {
	dir string

	mu     sync.Mutex
	packs  map[language.Tag]*Pack
	sheets map[language.Tag]*Sheets
}

// NewTOMLProvider returns a provider reading packs from dir.
func NewTOMLProvider(dir string) (*TOMLProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "data directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "data path %s is not a directory", dir)
	}
	return &TOMLProvider{
		dir:    dir,
		packs:  make(map[language.Tag]*Pack),
		sheets: make(map[language.Tag]*Sheets),
	}, nil
}

// Available lists the supported languages that have a pack in the directory.
func (p *TOMLProvider) Available() []language.Tag {
	var out []language.Tag
	for _, lang := range Languages {
		if _, err := os.Stat(filepath.Join(p.dir, packName(lang))); err == nil {
			out = append(out, lang)
		}
	}
	return out
}

// Quests implements [Provider].
func (p *TOMLProvider) Quests(ctx context.Context, lang language.Tag) ([]RawQuest, error) {
	pack, _, err := p.load(ctx, lang)
	if err != nil {
		return nil, err
	}
	return slices.Clone(pack.Quests), nil
}

// Sheets implements [Provider].
func (p *TOMLProvider) Sheets(ctx context.Context, lang language.Tag) (*Sheets, error) {
	_, sheets, err := p.load(ctx, lang)
	return sheets, err
}

func (p *TOMLProvider) load(ctx context.Context, lang language.Tag) (*Pack, *Sheets, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if pack, ok := p.packs[lang]; ok {
		return pack, p.sheets[lang], nil
	}

	path := filepath.Join(p.dir, packName(lang))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%w: %s", ErrLanguageNotAvailable, lang)
	}

	var pack Pack
	if _, err := toml.DecodeFile(path, &pack); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeDataShape, err, "decode data pack %s", path)
	}

	sheets := NewSheets(&pack)
	p.packs[lang] = &pack
	p.sheets[lang] = sheets
	return &pack, sheets, nil
}

var _ Provider = (*TOMLProvider)(nil)
