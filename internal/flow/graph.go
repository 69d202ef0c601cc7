package flow

// Field keys under which answers are stored. Stable: the report compiler and
// the archive rely on them.
const (
	FieldCode       = "code"
	FieldOrder      = "order"
	FieldAddress    = "address"
	FieldStartTime  = "start_time"
	FieldEndTime    = "end_time"
	FieldFumigation = "fumigated_units"
	FieldFumObs     = "fum_obs"
	FieldContact    = "contact"
	FieldNoticesAdr = "avisos_address"

	// Decoded work-order QR fields, stored by the engine on scan.
	FieldQRNumber  = "qr_number"
	FieldQRAddress = "qr_address"
	FieldQRCode    = "qr_code"
	FieldQRType    = "qr_type"
)

// TierFieldKey returns the field key for a tank question step of a tier.
// The main tier stores repairs and suggestions under unsuffixed keys.
func TierFieldKey(step string, tier Tier) string {
	if tier == TierMain {
		switch step {
		case "repair":
			return "repairs"
		case "suggestions":
			return "suggestions"
		}
	}
	if step == "repair" && tier != TierMain {
		return "repair_" + string(tier)
	}
	return step + "_" + string(tier)
}

// tankSteps is the question order inside every tank tier.
var tankSteps = []string{"measure", "tapas_inspeccion", "tapas_acceso", "sealing", "repair", "suggestions"}

// NewGraph builds the static interview graph.
func NewGraph() *Graph {
	g := &Graph{nodes: make(map[State]*Node)}

	add := func(n *Node) { g.nodes[n.ID] = n }
	static := func(next State) NextFunc {
		return func(*Session, string) State { return next }
	}

	add(&Node{
		ID:       StateCode,
		FieldKey: FieldCode,
		Validate: validateDigits,
		Prompt:   textPrompt("Inserte su código (solo números):"),
		Next:     static(StateService),
	})

	add(&Node{
		ID:     StateService,
		Prompt: servicePrompt,
		Next: func(s *Session, _ string) State {
			switch s.Branch {
			case BranchFumigation:
				return StateScanQR
			case BranchTankService:
				return StateOrder
			case BranchBudget:
				return StateAddress
			case BranchNotices:
				return StateNoticesAddress
			}
			return StateService
		},
	})

	add(&Node{
		ID:     StateScanQR,
		Prompt: textPrompt("Por favor, envíe una foto del código QR para continuar:"),
		Next:   static(StateOrder),
	})

	add(&Node{
		ID:       StateOrder,
		FieldKey: FieldOrder,
		Validate: validateOrder,
		Prompt:   textPrompt("Por favor, ingrese el número de orden (7 dígitos):"),
		Next:     static(StateAddress),
	})

	add(&Node{
		ID:       StateAddress,
		FieldKey: FieldAddress,
		Validate: validateNonEmpty,
		Prompt:   textPrompt("Ingrese la dirección:"),
		Next:     static(StateStartTime),
	})

	add(&Node{
		ID:       StateNoticesAddress,
		FieldKey: FieldNoticesAdr,
		Validate: validateNonEmpty,
		Prompt:   textPrompt("Indique dirección/es donde se entregaron avisos:"),
		Next:     static(StateStartTime),
	})

	add(&Node{
		ID:       StateStartTime,
		FieldKey: FieldStartTime,
		Validate: validateClock,
		Prompt:   textPrompt("¿A qué hora empezaste el trabajo? (HH:MM)"),
		Next:     static(StateEndTime),
	})

	add(&Node{
		ID:       StateEndTime,
		FieldKey: FieldEndTime,
		Validate: validateClock,
		Prompt:   textPrompt("¿A qué hora terminaste el trabajo? (HH:MM)"),
		Next: func(s *Session, _ string) State {
			switch s.Branch {
			case BranchFumigation:
				return StateFumigation
			case BranchNotices:
				return StateContact
			}
			return StateTankType
		},
	})

	add(&Node{
		ID:       StateFumigation,
		FieldKey: FieldFumigation,
		Validate: validateNonEmpty,
		Prompt:   textPrompt("¿Qué unidades contienen insectos?"),
		Next:     static(StateFumObs),
	})

	add(&Node{
		ID:       StateFumObs,
		FieldKey: FieldFumObs,
		Validate: validateNonEmpty,
		Prompt:   textPrompt("Marque las observaciones para la próxima visita:"),
		Next:     static(StateContact),
	})

	add(&Node{
		ID:     StateTankType,
		Prompt: tankTypePrompt,
		Next:   static(tierState("measure", TierMain)),
	})

	addTankTier(g, TierMain, StateAskAlt1)
	addTankTier(g, TierAlt1, StateAskAlt2)
	addTankTier(g, TierAlt2, StateContact)

	// Decision hubs. An unrecognized payload resolves as "no": the interview
	// must keep moving even when the transport delivers a stale button press.
	add(&Node{
		ID:     StateAskAlt1,
		Prompt: askTierPrompt(TierAlt1),
		Next: func(_ *Session, payload string) State {
			if normalizeKeyword(payload) == "si" {
				return tierState("measure", TierAlt1)
			}
			return StateAskAlt2
		},
	})
	add(&Node{
		ID:     StateAskAlt2,
		Prompt: askTierPrompt(TierAlt2),
		Next: func(_ *Session, payload string) State {
			if normalizeKeyword(payload) == "si" {
				return tierState("measure", TierAlt2)
			}
			return StateContact
		},
	})

	add(&Node{
		ID:       StateContact,
		FieldKey: FieldContact,
		Validate: validateNonEmpty,
		Prompt:   textPrompt("Ingrese el Nombre y teléfono del encargado:"),
		Next:     static(StatePhotos),
	})

	add(&Node{
		ID:     StatePhotos,
		Prompt: photosPrompt,
		Next:   static(StateDispatch),
	})

	add(&Node{
		ID:       StateDispatch,
		Terminal: true,
		Prompt:   func(*Session) Prompt { return Prompt{} },
		Next:     func(*Session, string) State { return StateDispatch },
	})

	return g
}

// addTankTier declares the six-question block of a tank tier, chaining each
// step to the next and the last one to the given hub.
func addTankTier(g *Graph, tier Tier, after State) {
	prompts := map[string]PromptFunc{
		"measure":          measurePrompt(tier),
		"tapas_inspeccion": textPrompt("Indique TAPAS INSPECCIÓN (30 40 50 60 80):"),
		"tapas_acceso":     textPrompt("Indique TAPAS ACCESO (4789/50125/49.5 56 56.5 58 54 51.5 62 65):"),
		"sealing":          sealingPrompt(tier),
		"repair":           repairPrompt(tier),
		"suggestions":      suggestionsPrompt(tier),
	}
	for i, step := range tankSteps {
		next := after
		if i+1 < len(tankSteps) {
			next = tierState(tankSteps[i+1], tier)
		}
		n := &Node{
			ID:       tierState(step, tier),
			FieldKey: TierFieldKey(step, tier),
			Validate: validateNonEmpty,
			Prompt:   prompts[step],
			Next:     func(next State) NextFunc { return func(*Session, string) State { return next } }(next),
		}
		g.nodes[n.ID] = n
	}
}

// PreviousState resolves the predecessor of a state for the given session.
// The history stack is authoritative during navigation; this resolver backs
// it up where the static graph has no single answer: entering the free-text
// address states and the shared time block depends on the service branch.
func (g *Graph) PreviousState(id State, s *Session) State {
	switch id {
	case StateCode:
		return StateCode
	case StateAddress:
		// Budget interviews never ask for an order number.
		if s.Branch == BranchBudget {
			return StateService
		}
		return StateOrder
	case StateStartTime:
		if s.Branch == BranchNotices {
			return StateNoticesAddress
		}
		return StateAddress
	case StateOrder:
		if s.Branch == BranchFumigation {
			return StateScanQR
		}
		return StateService
	case StateContact:
		switch s.Branch {
		case BranchFumigation:
			return StateFumObs
		case BranchNotices:
			return StateEndTime
		}
		// The tank path into contact varies with the hub decisions taken;
		// without history the nearest hub is the safe landing point.
		return StateAskAlt2
	case StateAskAlt2:
		return StateAskAlt1
	}
	if prev, ok := staticPrev[id]; ok {
		return prev
	}
	return StateCode
}

var staticPrev = buildStaticPrev()

func buildStaticPrev() map[State]State {
	prev := map[State]State{
		StateService:        StateCode,
		StateScanQR:         StateService,
		StateNoticesAddress: StateService,
		StateEndTime:        StateStartTime,
		StateFumigation:     StateEndTime,
		StateFumObs:         StateFumigation,
		StateTankType:       StateEndTime,
		StateAskAlt1:        tierState("suggestions", TierMain),
		StatePhotos:         StateContact,
		StateDispatch:       StatePhotos,
	}
	entries := map[Tier]State{TierMain: StateTankType, TierAlt1: StateAskAlt1, TierAlt2: StateAskAlt2}
	for tier, entry := range entries {
		prev[tierState(tankSteps[0], tier)] = entry
		for i := 1; i < len(tankSteps); i++ {
			prev[tierState(tankSteps[i], tier)] = tierState(tankSteps[i-1], tier)
		}
	}
	return prev
}
