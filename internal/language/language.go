package language

import (
	"slices"
	"strings"
)

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"da", "dan", "", "Danish", []string{"danish"}},
	{"de", "deu", "ger", "German", []string{"german", "deutsch"}},
	{"el", "ell", "gre", "Greek", []string{"greek"}},
	{"en", "eng", "", "English", []string{"english"}},
	{"es", "spa", "", "Spanish", []string{"spanish", "español", "espanol"}},
	{"fi", "fin", "", "Finnish", []string{"finnish"}},
	{"fr", "fra", "fre", "French", []string{"french", "français", "francais"}},
	{"he", "heb", "", "Hebrew", []string{"hebrew"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"ms", "msa", "may", "Malay", []string{"malay"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch"}},
	{"no", "nor", "", "Norwegian", []string{"norwegian"}},
	{"pl", "pol", "", "Polish", []string{"polish"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"sv", "swe", "", "Swedish", []string{"swedish"}},
	{"sw", "swa", "", "Swahili", []string{"swahili"}},
	{"tr", "tur", "", "Turkish", []string{"turkish"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = normalizeInput(code)
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// normalizeInput lowercases and strips region suffixes such as "fr-FR" or "pt_BR".
func normalizeInput(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}
	return code
}

// ToISO2 converts any recognized language code or word to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input.
// If the input is already a 2-letter code (even if unknown), it passes through.
func ToISO2(code string) string {
	code = normalizeInput(code)
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// Supported reports whether the voice model can speak code.
func Supported(code string) bool {
	return lookup(code) != nil
}

// SupportedCodes lists the ISO 639-1 codes the voice model accepts, sorted.
func SupportedCodes() []string {
	codes := make([]string, 0, len(languages))
	for _, e := range languages {
		codes = append(codes, e.code2)
	}
	slices.Sort(codes)
	return codes
}
