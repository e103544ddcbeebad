package i18n

import (
	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English,
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]map[string]string{
	language.English: {
		"keep-inside": "Keep your face inside the guide",
		"move-closer": "Move closer",
		"move-back":   "Move back",
		"hold-still":  "Hold still",
		"confirmed":   "Liveness confirmed",
		"no-face":     "No face detected",
		"timeout":     "Time is up, please try again",
	},
	language.BrazilianPortuguese: {
		"keep-inside": "Mantenha o rosto dentro da moldura",
		"move-closer": "Aproxime o rosto",
		"move-back":   "Afaste o rosto",
		"hold-still":  "Fique parado",
		"confirmed":   "Prova de vida confirmada",
		"no-face":     "Nenhum rosto detectado",
		"timeout":     "Tempo esgotado, tente novamente",
	},
}

type Catalog struct {
	tag      language.Tag
	messages map[string]string
}

// Lookup picks the best supported catalog for the given preferences. Each
// preference may be a single tag ("pt-BR") or a full Accept-Language value.
// Empty preferences are skipped; with nothing usable, English is returned.
func Lookup(preferences ...string) Catalog {
	prefs := make([]string, 0, len(preferences))
	for _, p := range preferences {
		if p != "" {
			prefs = append(prefs, p)
		}
	}

	_, idx := language.MatchStrings(matcher, prefs...)
	tag := supported[idx]
	return Catalog{tag: tag, messages: catalogs[tag]}
}

func (c Catalog) Language() string {
	return c.tag.String()
}

// Message falls back to English, then to the key itself.
func (c Catalog) Message(key string) string {
	if msg, ok := c.messages[key]; ok {
		return msg
	}
	if msg, ok := catalogs[language.English][key]; ok {
		return msg
	}
	return key
}
