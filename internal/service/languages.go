package service

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language codes the provider accepts, per the EU formal-language list.
var supportedCodes = []string{
	"BG", "CS", "DA", "DE", "EL", "EN", "ES", "ET", "FI", "FR", "GA", "HR",
	"HU", "IT", "LT", "LV", "MT", "NL", "PL", "PT", "RO", "SK", "SL", "SV",
}

// Language pairs a provider language code with its English display name.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var (
	supportedSet       map[string]struct{}
	supportedLanguages []Language
)

func init() {
	supportedSet = make(map[string]struct{}, len(supportedCodes))
	supportedLanguages = make([]Language, 0, len(supportedCodes))
	namer := display.English.Languages()
	for _, code := range supportedCodes {
		supportedSet[code] = struct{}{}
		name := code
		if tag, err := language.Parse(strings.ToLower(code)); err == nil {
			name = namer.Name(tag)
		}
		supportedLanguages = append(supportedLanguages, Language{Code: code, Name: name})
	}
}

// SupportedLanguages returns the language table, ordered by code.
func SupportedLanguages() []Language {
	ret := make([]Language, len(supportedLanguages))
	copy(ret, supportedLanguages)
	return ret
}

// IsSupported reports whether the code (case-insensitive) is in the
// supported set.
func IsSupported(code string) bool {
	_, ok := supportedSet[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}
