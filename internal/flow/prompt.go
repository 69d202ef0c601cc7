package flow

import (
	"fmt"
	"strings"
)

// Button is one option of a menu prompt. Data is the payload the transport
// echoes back on a press.
type Button struct {
	Label string
	Data  string
}

// Prompt is the outbound question for a state: plain text, or text plus an
// inline menu when Buttons is non-empty.
type Prompt struct {
	Text    string
	Buttons [][]Button
}

func textPrompt(text string) PromptFunc {
	return func(*Session) Prompt { return Prompt{Text: text} }
}

// displayCategory renders a stored category label the way prompts and report
// labels show it: first letter upper, rest lower ("CISTERNA" -> "Cisterna").
func displayCategory(cat string) string {
	if cat == "" {
		return ""
	}
	return strings.ToUpper(cat[:1]) + strings.ToLower(cat[1:])
}

var backRow = []Button{{Label: "ATRAS", Data: "back"}}

func servicePrompt(*Session) Prompt {
	return Prompt{
		Text: "¿Qué servicio se realizó?",
		Buttons: [][]Button{
			{
				{Label: "Fumigaciones", Data: string(BranchFumigation)},
				{Label: "Limpieza y Reparacion de Tanques", Data: string(BranchTankService)},
			},
			{
				{Label: "Presupuestos", Data: string(BranchBudget)},
				{Label: "Avisos", Data: string(BranchNotices)},
			},
			backRow,
		},
	}
}

func tankTypePrompt(*Session) Prompt {
	row := make([]Button, 0, len(TankCategories))
	for _, c := range TankCategories {
		row = append(row, Button{Label: c, Data: c})
	}
	return Prompt{
		Text:    "Seleccione el tipo de tanque:",
		Buttons: [][]Button{row, backRow},
	}
}

func askTierPrompt(tier Tier) PromptFunc {
	return func(s *Session) Prompt {
		return Prompt{
			Text: fmt.Sprintf("¿Quiere comentar algo sobre %s?", displayCategory(s.tierCategory(tier))),
			Buttons: [][]Button{
				{{Label: "Si", Data: "si"}, {Label: "No", Data: "no"}},
				backRow,
			},
		}
	}
}

func measurePrompt(tier Tier) PromptFunc {
	return func(s *Session) Prompt {
		return Prompt{Text: fmt.Sprintf(
			"Indique la medida del tanque de %s en el siguiente formato:\nALTO, ANCHO, PROFUNDO",
			displayCategory(s.tierCategory(tier)),
		)}
	}
}

func sealingPrompt(tier Tier) PromptFunc {
	return func(s *Session) Prompt {
		return Prompt{Text: fmt.Sprintf(
			"Indique como selló el tanque de %s (EJ: masilla, burlete, etc):",
			displayCategory(s.tierCategory(tier)),
		)}
	}
}

func repairPrompt(tier Tier) PromptFunc {
	return func(s *Session) Prompt {
		return Prompt{Text: fmt.Sprintf(
			"Indique reparaciones a realizar (EJ: tapas, revoques, etc) para %s:",
			displayCategory(s.tierCategory(tier)),
		)}
	}
}

func suggestionsPrompt(tier Tier) PromptFunc {
	return func(s *Session) Prompt {
		return Prompt{Text: fmt.Sprintf(
			"Indique sugerencias p/ la próx limpieza (EJ: desagote) para %s:",
			displayCategory(s.tierCategory(tier)),
		)}
	}
}

func photosPrompt(s *Session) Prompt {
	switch s.Branch {
	case BranchFumigation:
		return Prompt{Text: "Adjunte fotos de ORDEN DE TRABAJO y PORTERO ELECTRICO:"}
	case BranchNotices:
		return Prompt{Text: "Adjunte las fotos de los avisos junto a la chapa con numeración del edificio:\nSi ha terminado, escriba 'Listo'."}
	default:
		return Prompt{Text: "Adjunte fotos de ORDEN DE TRABAJO, FICHA y TANQUES:\nSi ha terminado, escriba 'Listo'."}
	}
}
