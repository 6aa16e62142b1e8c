package text

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// Supported languages, in matcher preference order. English is the
// fallback for every unresolved lookup.
var supported = []language.Tag{
	language.English,
	language.Korean,
}

var matcher = language.NewMatcher(supported)

// Langs returns the supported language codes ("en", "ko").
func Langs() []string {
	out := make([]string, len(supported))
	for i, t := range supported {
		base, _ := t.Base()
		out[i] = base.String()
	}
	return out
}

// Localized is a piece of display text that is either already resolved
// (a raw string) or a mapping from language code to string. Data files
// use both shapes interchangeably.
type Localized struct {
	raw    string
	byLang map[string]string
}

// New returns an already-resolved Localized value.
func New(s string) Localized {
	return Localized{raw: s}
}

// NewMap returns a per-language Localized value.
func NewMap(m map[string]string) Localized {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Localized{byLang: cp}
}

// IsZero reports whether no text is present in any language.
func (l Localized) IsZero() bool {
	return l.raw == "" && len(l.byLang) == 0
}

// Resolve returns the text for lang, falling back to English, then "".
func (l Localized) Resolve(lang string) string {
	if l.byLang == nil {
		return l.raw
	}
	if v, ok := l.byLang[lang]; ok {
		return v
	}
	return l.byLang["en"]
}

// Clone returns an independent copy.
func (l Localized) Clone() Localized {
	if l.byLang == nil {
		return l
	}
	return NewMap(l.byLang)
}

func (l *Localized) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Localized{raw: s}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*l = Localized{byLang: m}
	return nil
}

func (l Localized) MarshalJSON() ([]byte, error) {
	if l.byLang == nil {
		return json.Marshal(l.raw)
	}
	return json.Marshal(l.byLang)
}

// MatchLang picks the language for a request: explicit ?lang= wins,
// then Accept-Language, then def.
func MatchLang(r *http.Request, def string) string {
	if q := strings.TrimSpace(r.URL.Query().Get("lang")); q != "" {
		if tag, err := language.Parse(q); err == nil {
			_, idx, conf := matcher.Match(tag)
			if conf != language.No {
				base, _ := supported[idx].Base()
				return base.String()
			}
		}
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, conf := matcher.Match(tags...)
			if conf != language.No {
				base, _ := supported[idx].Base()
				return base.String()
			}
		}
	}
	return def
}
