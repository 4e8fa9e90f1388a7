package datasource

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/matzehuels/questgraph/pkg/errors"
)

// Languages the game client ships data for.
var Languages = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Japanese,
}

// DefaultLanguage is used for lookups that must not depend on the client
// language, such as the soul stone icon scan.
var DefaultLanguage = language.English

var matcher = language.NewMatcher(Languages)

// ParseLanguage parses a BCP 47 tag and maps it onto a supported client
// language. Regional variants resolve to their base ("en-GB" → "en").
func ParseLanguage(s string) (language.Tag, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, errors.Wrap(errors.ErrCodeInvalidLanguage, err, "invalid language %q", s)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.Und, errors.New(errors.ErrCodeInvalidLanguage, "unsupported language %q", s)
	}
	return Languages[idx], nil
}

// packName returns the data pack file name for a language.
func packName(lang language.Tag) string {
	base, _ := lang.Base()
	return fmt.Sprintf("%s.toml", base.String())
}
