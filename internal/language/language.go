package language

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Entry is one selectable subtitle language and the code the catalog expects.
type Entry struct {
	Name string
	Code string
}

// catalogLanguages uses the catalog's own sublanguageid values, which
// favour the ISO 639-2/B forms ("fre", "ger") and include "pob" and "scc".
var catalogLanguages = []Entry{
	{"Bosnian", "bos"},
	{"Brazilian", "pob"},
	{"Bulgarian", "bul"},
	{"Croatian", "hrv"},
	{"Czech", "cze"},
	{"Danish", "dan"},
	{"Dutch", "dut"},
	{"Estonian", "est"},
	{"English", "eng"},
	{"Finnish", "fin"},
	{"French", "fre"},
	{"German", "ger"},
	{"Greek", "ell"},
	{"Icelandic", "ice"},
	{"Inupiaq", "ipk"},
	{"Irish", "gle"},
	{"Italian", "ita"},
	{"Japanese", "jpn"},
	{"Latvian", "lav"},
	{"Luxembourgish", "ltz"},
	{"Macedonian", "mac"},
	{"Montenegrin", "mne"},
	{"Persian", "per"},
	{"Pohnpeian", "pon"},
	{"Polish", "pol"},
	{"Portuguese", "por"},
	{"Romanian", "rum"},
	{"Russian", "rus"},
	{"Sardinian", "srd"},
	{"Serbian", "scc"},
	{"Slovak", "slo"},
	{"Slovenian", "slv"},
	{"Spanish", "spa"},
	{"Sundanese", "sun"},
	{"Swedish", "swe"},
	{"Thai", "tha"},
	{"Turkish", "tur"},
	{"Ukrainian", "ukr"},
	{"Uzbek", "uzb"},
	{"Vietnamese", "vie"},
	{"Welsh", "wel"},
}

// terminologyCodes maps the catalog's ISO 639-2/B codes to the ISO 639-2/T
// forms the x/text tables use.
var terminologyCodes = map[string]string{
	"cze": "ces",
	"dut": "nld",
	"fre": "fra",
	"ger": "deu",
	"ice": "isl",
	"mac": "mkd",
	"per": "fas",
	"rum": "ron",
	"scc": "srp",
	"slo": "slk",
	"wel": "cym",
}

var (
	byName = make(map[string]Entry, len(catalogLanguages))
	byCode = make(map[string]Entry, len(catalogLanguages))
	byISO3 = make(map[string]Entry, len(catalogLanguages))
)

func init() {
	for _, e := range catalogLanguages {
		byName[foldName(e.Name)] = e
		byCode[e.Code] = e
		if base, err := xlang.ParseBase(terminologyCode(e.Code)); err == nil {
			if _, taken := byISO3[base.ISO3()]; !taken {
				byISO3[base.ISO3()] = e
			}
		}
	}
}

// Entries returns the known languages sorted by name.
func Entries() []Entry {
	out := append([]Entry(nil), catalogLanguages...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds a known language by name or catalog code, case-insensitively.
// ISO 639-1 and alternate ISO 639-2 codes ("fr", "fra") resolve to the
// catalog's preferred code.
func Lookup(value string) (Entry, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Entry{}, false
	}
	if e, ok := byName[foldName(value)]; ok {
		return e, true
	}
	lower := strings.ToLower(value)
	if e, ok := byCode[lower]; ok {
		return e, true
	}
	if base, err := xlang.ParseBase(lower); err == nil {
		if e, ok := byISO3[base.ISO3()]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

// Resolve converts a language name or code into a 3-letter catalog code.
// Unknown 3-letter codes pass through unchanged so new catalog languages keep working.
func Resolve(value string) (string, error) {
	if e, ok := Lookup(value); ok {
		return e.Code, nil
	}
	code := strings.ToLower(strings.TrimSpace(value))
	if len(code) == 3 && isASCIILetters(code) {
		return code, nil
	}
	return "", fmt.Errorf("unknown language %q", value)
}

// ISO2 returns the ISO 639-1 code for a catalog code, or "" when there is none.
func ISO2(code string) string {
	base, err := xlang.ParseBase(terminologyCode(strings.ToLower(strings.TrimSpace(code))))
	if err != nil {
		return ""
	}
	if s := base.String(); len(s) == 2 {
		return s
	}
	return ""
}

// DisplayName returns a human-readable language name for any code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	if e, ok := byCode[strings.ToLower(code)]; ok {
		return e.Name
	}
	if base, err := xlang.ParseBase(strings.ToLower(code)); err == nil {
		if name := display.English.Languages().Name(base); name != "" {
			return name
		}
	}
	return strings.ToUpper(code)
}

func isASCIILetters(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// foldName case-folds a language name. Casers keep state, so each call gets its own.
func foldName(name string) string {
	return cases.Fold().String(name)
}

func terminologyCode(code string) string {
	if t, ok := terminologyCodes[code]; ok {
		return t
	}
	return code
}
