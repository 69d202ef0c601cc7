package format

import "testing"

func TestBoldKeywords(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Seleccione CISTERNA", "Seleccione <b>CISTERNA</b>"},
		{"tanque de Reserva listo", "tanque de <b>Reserva</b> listo"},
		{"intermediario e INTERMEDIARIO", "<b>intermediario</b> e <b>INTERMEDIARIO</b>"},
		{"sin palabras clave", "sin palabras clave"},
		{"reservado", "reservado"},
	}
	for _, tc := range cases {
		if got := BoldKeywords(tc.in); got != tc.want {
			t.Fatalf("BoldKeywords(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
