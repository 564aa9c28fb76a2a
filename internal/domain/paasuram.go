package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Paasuram is a single verse with every scraped field flattened to a string.
type Paasuram struct {
	Number                 string `json:"number"`
	Tamil                  string `json:"tamil"`
	TamilClear             string `json:"tamil_clear"`
	EnglishTransliteration string `json:"english_transliteration"`
	SimpleEnglish          string `json:"simple_english"`
	ExplanatoryNotes       string `json:"explanatory_notes"`
	Purport                string `json:"purport"`
	Ragam                  string `json:"ragam"`
	Thalam                 string `json:"thalam"`
	Mood                   string `json:"mood"`
	Scriptures             string `json:"scriptures"`
}

// FieldNames returns the output column names in their fixed order.
func FieldNames() []string {
	return []string{
		"number",
		"tamil",
		"tamil_clear",
		"english_transliteration",
		"simple_english",
		"explanatory_notes",
		"purport",
		"ragam",
		"thalam",
		"mood",
		"scriptures",
	}
}

// Row returns the record's values in FieldNames order.
func (p Paasuram) Row() []string {
	return []string{
		p.Number,
		p.Tamil,
		p.TamilClear,
		p.EnglishTransliteration,
		p.SimpleEnglish,
		p.ExplanatoryNotes,
		p.Purport,
		p.Ragam,
		p.Thalam,
		p.Mood,
		p.Scriptures,
	}
}

// ProjectPaasuram maps a decoded pageProps object onto the record schema.
// Missing keys and wrong types both project to the empty string.
func ProjectPaasuram(props map[string]interface{}) Paasuram {
	return Paasuram{
		Number:                 Stringify(props["number_full"]),
		Tamil:                  Stringify(props["pasuram_ta_c"]),
		TamilClear:             Stringify(props["pasuram_ta"]),
		EnglishTransliteration: Stringify(props["pasuram_en"]),
		SimpleEnglish:          Stringify(props["simple_en"]),
		ExplanatoryNotes:       Stringify(props["explanatory_notes_en"]),
		Purport:                Stringify(props["purport_en"]),
		Ragam:                  Stringify(props["ragam"]),
		Thalam:                 Stringify(props["thalam"]),
		Mood:                   Stringify(props["mood"]),
		Scriptures:             JoinScriptures(props["scriptures"]),
	}
}

// Stringify coerces a decoded JSON scalar to its string form, "" for nil.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// JoinScriptures joins a list-valued scriptures field with commas, dropping
// empty elements. A value that is already a string passes through unchanged.
func JoinScriptures(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := Stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	default:
		return Stringify(t)
	}
}
