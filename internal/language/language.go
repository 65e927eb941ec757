package language

import "strings"

// Auto asks the recognizer to detect the language itself.
const Auto = "*"

type entry struct {
	code2   string // ISO 639-1
	code3   string // ISO 639-2/T
	alt3    string // ISO 639-2/B when it differs
	display string
}

// Languages the recognizer documents support for.
var languages = []entry{
	{"ru", "rus", "", "Russian"},
	{"en", "eng", "", "English"},
	{"uk", "ukr", "", "Ukrainian"},
	{"be", "bel", "", "Belarusian"},
	{"kk", "kaz", "", "Kazakh"},
	{"ky", "kir", "", "Kyrgyz"},
	{"uz", "uzb", "", "Uzbek"},
	{"tg", "tgk", "", "Tajik"},
	{"tt", "tat", "", "Tatar"},
	{"az", "aze", "", "Azerbaijani"},
	{"hy", "hye", "arm", "Armenian"},
	{"ka", "kat", "geo", "Georgian"},
	{"mn", "mon", "", "Mongolian"},
	{"bg", "bul", "", "Bulgarian"},
	{"sr", "srp", "", "Serbian"},
	{"bs", "bos", "", "Bosnian"},
	{"sl", "slv", "", "Slovenian"},
	{"sk", "slk", "slo", "Slovak"},
	{"cs", "ces", "cze", "Czech"},
	{"pl", "pol", "", "Polish"},
	{"lt", "lit", "", "Lithuanian"},
	{"lv", "lav", "", "Latvian"},
	{"et", "est", "", "Estonian"},
	{"fi", "fin", "", "Finnish"},
	{"sv", "swe", "", "Swedish"},
	{"no", "nor", "", "Norwegian"},
	{"da", "dan", "", "Danish"},
	{"nl", "nld", "dut", "Dutch"},
	{"de", "deu", "ger", "German"},
	{"fr", "fra", "fre", "French"},
	{"es", "spa", "", "Spanish"},
	{"pt", "por", "", "Portuguese"},
	{"it", "ita", "", "Italian"},
	{"ro", "ron", "rum", "Romanian"},
	{"hu", "hun", "", "Hungarian"},
	{"el", "ell", "gre", "Greek"},
	{"tr", "tur", "", "Turkish"},
	{"he", "heb", "", "Hebrew"},
	{"ar", "ara", "", "Arabic"},
	{"id", "ind", "", "Indonesian"},
	{"ms", "msa", "may", "Malay"},
	{"vi", "vie", "", "Vietnamese"},
	{"th", "tha", "", "Thai"},
	{"ja", "jpn", "", "Japanese"},
	{"ko", "kor", "", "Korean"},
	{"zh", "zho", "chi", "Chinese"},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byName  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byName = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		byName[strings.ToLower(e.display)] = e
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	return byName[code]
}

// ToISO2 converts a recognized code or English name to ISO 639-1.
// Unknown two-letter codes pass through; other unknown input yields "".
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == Auto {
		return Auto
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// Supported reports whether the recognizer documents support for code.
func Supported(code string) bool {
	code = strings.TrimSpace(code)
	return code == Auto || lookup(code) != nil
}

// DisplayName returns a human-readable name for code.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	switch code {
	case "":
		return "Unknown"
	case Auto:
		return "Auto-detect"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(code)
}

// DisplayList joins the display names of codes with ", ".
func DisplayList(codes []string) string {
	names := make([]string, 0, len(codes))
	for _, code := range codes {
		names = append(names, DisplayName(code))
	}
	return strings.Join(names, ", ")
}

// NormalizeList maps codes to ISO 639-1 and removes blanks and duplicates.
// Input that cannot be mapped is kept lower-cased so the endpoint reports it.
func NormalizeList(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		trimmed := strings.ToLower(strings.TrimSpace(code))
		if trimmed == "" {
			continue
		}
		if mapped := ToISO2(trimmed); mapped != "" {
			trimmed = mapped
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
