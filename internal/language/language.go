package language

import (
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
)

type entry struct {
	code2   string // ISO 639-1
	code3   string // ISO 639-2 primary
	alt3    string // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string
}

var languages = []entry{
	{"en", "eng", "", "English"},
	{"es", "spa", "", "Spanish"},
	{"fr", "fra", "fre", "French"},
	{"de", "deu", "ger", "German"},
	{"it", "ita", "", "Italian"},
	{"pt", "por", "", "Portuguese"},
	{"ja", "jpn", "", "Japanese"},
	{"ko", "kor", "", "Korean"},
	{"zh", "zho", "chi", "Chinese"},
	{"ru", "rus", "", "Russian"},
	{"ar", "ara", "", "Arabic"},
	{"hi", "hin", "", "Hindi"},
	{"nl", "nld", "dut", "Dutch"},
	{"pl", "pol", "", "Polish"},
	{"sv", "swe", "", "Swedish"},
	{"da", "dan", "", "Danish"},
	{"no", "nor", "", "Norwegian"},
	{"fi", "fin", "", "Finnish"},
	{"th", "tha", "", "Thai"},
	{"cs", "ces", "cze", "Czech"},
	{"hu", "hun", "", "Hungarian"},
	{"tr", "tur", "", "Turkish"},
}

var byCode3 map[string]*entry

func init() {
	byCode3 = make(map[string]*entry, len(languages)*2)
	for i := range languages {
		e := &languages[i]
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
	}
}

var titleCaser = cases.Title(xlang.English)

// DisplayName returns a human-readable name for a 3-letter language tag.
// Unknown tags come back title-cased rather than empty so reports stay
// readable.
func DisplayName(code3 string) string {
	code := strings.ToLower(strings.TrimSpace(code3))
	if code == "" {
		return ""
	}
	if e, ok := byCode3[code]; ok {
		return e.display
	}
	return titleCaser.String(code)
}

// Code2 returns the ISO 639-1 code for a 3-letter tag, or "" when unknown.
func Code2(code3 string) string {
	code := strings.ToLower(strings.TrimSpace(code3))
	if e, ok := byCode3[code]; ok {
		return e.code2
	}
	return ""
}
