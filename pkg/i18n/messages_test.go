package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name  string
		prefs []string
		want  string
	}{
		{"no preference", nil, "en"},
		{"empty strings", []string{"", ""}, "en"},
		{"brazilian portuguese", []string{"pt-BR"}, "pt-BR"},
		{"bare portuguese", []string{"pt"}, "pt-BR"},
		{"accept-language header", []string{"pt-BR,pt;q=0.9,en;q=0.8"}, "pt-BR"},
		{"unsupported falls back", []string{"fr"}, "en"},
		{"query param wins over header", []string{"en", "pt-BR"}, "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lookup(tt.prefs...).Language())
		})
	}
}

func TestCatalog_Message(t *testing.T) {
	pt := Lookup("pt-BR")
	assert.Equal(t, "Fique parado", pt.Message("hold-still"))

	en := Lookup()
	assert.Equal(t, "Hold still", en.Message("hold-still"))
	assert.Equal(t, "unknown-key", en.Message("unknown-key"))
}

func TestCatalogs_SameKeys(t *testing.T) {
	en := catalogs[supported[0]]
	for _, tag := range supported[1:] {
		other := catalogs[tag]
		assert.Len(t, other, len(en), tag.String())
		for key := range en {
			assert.Contains(t, other, key, tag.String())
		}
	}
}
