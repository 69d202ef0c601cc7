package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySignal(t *testing.T) {
	cases := []struct {
		in   string
		want Signal
	}{
		{"atras", SignalBack},
		{"Atrás", SignalBack},
		{"  ATRAS  ", SignalBack},
		{"back", SignalBack},
		{"listo", SignalDone},
		{"Listo", SignalDone},
		{"quiero terminar", SignalCancel},
		{"TERMINAR", SignalCancel},
		{"ya quiero terminar por hoy", SignalCancel},
		{"", SignalNone},
		{"Calle Falsa 123", SignalNone},
		{"listo el pollo", SignalNone},
		{"atrasado", SignalNone},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifySignal(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeKeywordFoldsAccents(t *testing.T) {
	assert.Equal(t, "atras", normalizeKeyword("Atrás"))
	assert.Equal(t, "si", normalizeKeyword("Sí"))
	assert.Equal(t, "numero", normalizeKeyword("NÚMERO"))
}
