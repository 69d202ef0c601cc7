// Package report compiles a finished interview into the plain-text service
// report and drives its delivery and archival.
package report

import (
	"fmt"
	"strings"

	"fieldbot/internal/flow"
)

// Report is a compiled service report ready for delivery.
type Report struct {
	Subject string
	Body    string
	// Photos are the transport references of the interview attachments, in
	// upload order. Delivery resolves them to bytes and names them foto_N.jpg.
	Photos []flow.PhotoRef
}

// AttachmentName returns the filename for the idx-th (zero-based) photo.
func AttachmentName(idx int) string {
	return fmt.Sprintf("foto_%d.jpg", idx+1)
}

// Compile renders the report for a finished session. Only fields the
// interview actually collected appear; absent fields are skipped silently so
// shortened paths (skipped tiers, branch differences) produce clean output.
func Compile(s *flow.Session) *Report {
	service := s.Branch.DisplayName()
	var lines []string

	line := func(key, label string) {
		if v, ok := s.Field(key); ok {
			lines = append(lines, label+": "+v)
		}
	}

	// Scanned work-order data leads the body, fumigation only.
	if s.Branch == flow.BranchFumigation {
		line(flow.FieldQRNumber, "Orden de trabajo (QR)")
		line(flow.FieldQRAddress, "Dirección (QR)")
		line(flow.FieldQRCode, "Código de admin (QR)")
		line(flow.FieldQRType, "Tipo (QR)")
		lines = append(lines, "")
	}

	line(flow.FieldCode, "Código")

	if s.Branch == flow.BranchNotices {
		line(flow.FieldNoticesAdr, "Dirección/es")
		line(flow.FieldStartTime, "Hora de inicio")
		line(flow.FieldEndTime, "Hora de finalización")
		line(flow.FieldContact, "Contacto")
	} else {
		if s.Branch == flow.BranchFumigation || s.Branch == flow.BranchTankService {
			line(flow.FieldOrder, "Número de Orden")
		}
		line(flow.FieldAddress, "Dirección")
		line(flow.FieldStartTime, "Hora de inicio")
		line(flow.FieldEndTime, "Hora de finalización")
		if service != "" {
			lines = append(lines, "Servicio seleccionado: "+service)
		}
		if s.Branch == flow.BranchTankService || s.Branch == flow.BranchBudget {
			lines = append(lines, tankLines(s)...)
		}
		if s.Branch == flow.BranchFumigation {
			line(flow.FieldFumigation, "Unidades con insectos")
			line(flow.FieldFumObs, "Observaciones")
		}
		line(flow.FieldContact, "Contacto")
	}

	return &Report{
		Subject: "Reporte de Servicio: " + service,
		Body:    "Detalles del reporte:\n" + strings.Join(lines, "\n"),
		Photos:  append([]flow.PhotoRef(nil), s.Photos...),
	}
}

// tankLines renders the tank question block. The main tier keeps the short
// historical labels; alternate tiers carry the category name.
func tankLines(s *flow.Session) []string {
	var lines []string
	line := func(key, label string) {
		if v, ok := s.Field(key); ok {
			lines = append(lines, label+": "+v)
		}
	}

	if s.Category != "" {
		lines = append(lines, "Tipo de tanque: "+s.Category)
	}

	type labeled struct {
		step  string
		label func(cat string) string
	}
	steps := []labeled{
		{"measure", func(cat string) string { return "Medida " + cat }},
		{"tapas_inspeccion", func(cat string) string { return "Tapas inspección " + cat }},
		{"tapas_acceso", func(cat string) string { return "Tapas acceso " + cat }},
		{"sealing", func(cat string) string { return "Sellado " + cat }},
		{"repair", func(cat string) string { return "Reparaciones " + cat }},
		{"suggestions", func(cat string) string { return "Sugerencias " + cat }},
	}
	mainLabels := map[string]string{
		"measure":          "Medida principal",
		"tapas_inspeccion": "Tapas inspección",
		"tapas_acceso":     "Tapas acceso",
	}

	tiers := []struct {
		tier flow.Tier
		cat  string
	}{
		{flow.TierMain, s.Category},
		{flow.TierAlt1, s.AltA},
		{flow.TierAlt2, s.AltB},
	}
	for _, t := range tiers {
		for _, st := range steps {
			label := st.label(t.cat)
			if t.tier == flow.TierMain {
				if short, ok := mainLabels[st.step]; ok {
					label = short
				}
			}
			line(flow.TierFieldKey(st.step, t.tier), label)
		}
	}
	return lines
}
