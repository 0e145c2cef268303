package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"accents and trailing space", "São Luís ", "SAO LUIS"},
		{"already normalized", "SAO LUIS", "SAO LUIS"},
		{"lowercase", "rio anil", "RIO ANIL"},
		{"cedilla", "Igarapé Açu", "IGARAPE ACU"},
		{"leading tab", "\tBacanga", "BACANGA"},
		{"sharp s expands", "Straße", "STRASSE"},
		{"ordinal indicator folds to letter", "Nª", "NA"},
		{"symbol dropped then trimmed", "Anil ✓", "ANIL"},
		{"only whitespace", "   ", ""},
		{"apostrophe kept", "Olho D'Água", "OLHO D'AGUA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	inputs := []string{
		"São Luís ", "  paço do lumiar", "Nª Sª", "ﬁlé", "Anil ✓", "Raposa ", "ÀÉÎÕÜ ç", "",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once), "input %q", in)
	}
}
