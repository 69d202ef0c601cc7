package flow

import "strings"

// Signal classifies reserved keywords that are recognized instead of ordinary
// input. Classification happens once, here, rather than per state handler.
type Signal int

const (
	// SignalNone means the input is ordinary answer text.
	SignalNone Signal = iota
	// SignalBack steps backward through the interview history.
	SignalBack
	// SignalDone terminates sentinel-mode photo collection.
	SignalDone
	// SignalCancel aborts the whole interview and restarts it.
	SignalCancel
)

func (sig Signal) String() string {
	switch sig {
	case SignalBack:
		return "back"
	case SignalDone:
		return "done"
	case SignalCancel:
		return "cancel"
	}
	return "none"
}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u",
)

// normalizeKeyword lowercases, trims and accent-folds user text so that
// "Atrás", "ATRAS" and "atras" classify identically.
func normalizeKeyword(text string) string {
	return accentFolder.Replace(strings.ToLower(strings.TrimSpace(text)))
}

// ClassifySignal maps text to a control signal. Cancel wins over every other
// interpretation and matches as a substring so phrases like "quiero terminar"
// also abort.
func ClassifySignal(text string) Signal {
	norm := normalizeKeyword(text)
	if norm == "" {
		return SignalNone
	}
	if strings.Contains(norm, "terminar") {
		return SignalCancel
	}
	switch norm {
	case "atras", "back":
		return SignalBack
	case "listo":
		return SignalDone
	}
	return SignalNone
}
