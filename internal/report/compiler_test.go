package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldbot/internal/flow"
)

func tankSession() *flow.Session {
	return &flow.Session{
		ID:       1,
		Branch:   flow.BranchTankService,
		Category: "CISTERNA",
		AltA:     "RESERVA",
		AltB:     "INTERMEDIARIO",
		Fields: map[string]string{
			flow.FieldCode:          "12345",
			flow.FieldOrder:         "1234567",
			flow.FieldAddress:       "Calle Falsa 123",
			flow.FieldStartTime:     "09:00",
			flow.FieldEndTime:       "11:30",
			"measure_main":          "2, 3, 1.5",
			"tapas_inspeccion_main": "40",
			"tapas_acceso_main":     "56",
			"sealing_main":          "masilla",
			"repairs":               "tapas flojas",
			"suggestions":           "desagote previo",
			flow.FieldContact:       "Juan 115555123",
		},
		Photos: []flow.PhotoRef{{FileID: "a"}, {FileID: "b"}},
	}
}

func TestCompileTankService(t *testing.T) {
	rep := Compile(tankSession())

	assert.Equal(t, "Reporte de Servicio: Limpieza y Reparacion de Tanques", rep.Subject)
	require.True(t, strings.HasPrefix(rep.Body, "Detalles del reporte:\n"))

	wantOrder := []string{
		"Código: 12345",
		"Número de Orden: 1234567",
		"Dirección: Calle Falsa 123",
		"Hora de inicio: 09:00",
		"Hora de finalización: 11:30",
		"Servicio seleccionado: Limpieza y Reparacion de Tanques",
		"Tipo de tanque: CISTERNA",
		"Medida principal: 2, 3, 1.5",
		"Tapas inspección: 40",
		"Tapas acceso: 56",
		"Sellado CISTERNA: masilla",
		"Reparaciones CISTERNA: tapas flojas",
		"Sugerencias CISTERNA: desagote previo",
		"Contacto: Juan 115555123",
	}
	last := -1
	for _, line := range wantOrder {
		idx := strings.Index(rep.Body, line)
		require.GreaterOrEqual(t, idx, 0, "missing line %q", line)
		assert.Greater(t, idx, last, "line %q out of order", line)
		last = idx
	}

	// Skipped alternate tiers leave no trace.
	assert.NotContains(t, rep.Body, "RESERVA")
	assert.NotContains(t, rep.Body, "INTERMEDIARIO")
	assert.Len(t, rep.Photos, 2)
}

func TestCompileIncludesAnsweredAlternateTier(t *testing.T) {
	s := tankSession()
	s.Fields["measure_alt1"] = "1, 1, 1"
	s.Fields["sealing_alt1"] = "burlete"
	s.Fields["repair_alt1"] = "revoques"
	s.Fields["suggestions_alt1"] = "ninguna"

	rep := Compile(s)
	assert.Contains(t, rep.Body, "Medida RESERVA: 1, 1, 1")
	assert.Contains(t, rep.Body, "Sellado RESERVA: burlete")
	assert.Contains(t, rep.Body, "Reparaciones RESERVA: revoques")
	assert.NotContains(t, rep.Body, "INTERMEDIARIO")
}

func TestCompileFumigation(t *testing.T) {
	s := &flow.Session{
		ID:     2,
		Branch: flow.BranchFumigation,
		Fields: map[string]string{
			flow.FieldQRNumber:   "0012345",
			flow.FieldQRAddress:  "Av. Siempre Viva 742",
			flow.FieldQRCode:     "777",
			flow.FieldQRType:     "Mensual",
			flow.FieldCode:       "99",
			flow.FieldOrder:      "7654321",
			flow.FieldAddress:    "Av. Siempre Viva 742",
			flow.FieldStartTime:  "08:15",
			flow.FieldEndTime:    "09:45",
			flow.FieldFumigation: "2B y 4A",
			flow.FieldFumObs:     "Revisar sótano",
			flow.FieldContact:    "Pedro 115555999",
		},
	}
	rep := Compile(s)

	assert.Equal(t, "Reporte de Servicio: Fumigaciones", rep.Subject)
	assert.Contains(t, rep.Body, "Orden de trabajo (QR): 0012345")
	assert.Contains(t, rep.Body, "Dirección (QR): Av. Siempre Viva 742")
	assert.Contains(t, rep.Body, "Código de admin (QR): 777")
	assert.Contains(t, rep.Body, "Tipo (QR): Mensual")
	assert.Contains(t, rep.Body, "Unidades con insectos: 2B y 4A")
	assert.Contains(t, rep.Body, "Observaciones: Revisar sótano")

	// QR block precedes the form data, separated by a blank line.
	qrIdx := strings.Index(rep.Body, "Orden de trabajo (QR)")
	codeIdx := strings.Index(rep.Body, "Código: 99")
	assert.Less(t, qrIdx, codeIdx)
	assert.Contains(t, rep.Body, "\n\n")
}

func TestCompileNotices(t *testing.T) {
	s := &flow.Session{
		ID:     3,
		Branch: flow.BranchNotices,
		Fields: map[string]string{
			flow.FieldCode:       "7",
			flow.FieldNoticesAdr: "Moreno 350, Moreno 352",
			flow.FieldStartTime:  "14:00",
			flow.FieldEndTime:    "15:00",
			flow.FieldContact:    "Ana 115555000",
		},
	}
	rep := Compile(s)

	assert.Equal(t, "Reporte de Servicio: Avisos", rep.Subject)
	assert.Contains(t, rep.Body, "Dirección/es: Moreno 350, Moreno 352")
	assert.NotContains(t, rep.Body, "Número de Orden")
	assert.NotContains(t, rep.Body, "Servicio seleccionado")
	assert.NotContains(t, rep.Body, "(QR)")
}

func TestCompileSkipsAbsentFields(t *testing.T) {
	s := &flow.Session{
		ID:     4,
		Branch: flow.BranchBudget,
		Fields: map[string]string{flow.FieldCode: "7"},
	}
	rep := Compile(s)
	assert.Contains(t, rep.Body, "Código: 7")
	assert.NotContains(t, rep.Body, "Dirección:")
	assert.NotContains(t, rep.Body, "Tipo de tanque")
}

func TestAttachmentName(t *testing.T) {
	assert.Equal(t, "foto_1.jpg", AttachmentName(0))
	assert.Equal(t, "foto_3.jpg", AttachmentName(2))
}
