// Package flow implements the interview conversation engine: a declarative
// state graph, per-conversation sessions with reversible navigation, input
// validation, photo collection, and the hand-off to report dispatch.
package flow

// State identifies a node of the interview state graph.
type State string

const (
	// StateCode is the entry state collecting the technician's numeric code.
	StateCode State = "code"
	// StateService is the service-selection menu that fixes the branch.
	StateService State = "service"
	// StateScanQR waits for a photo of the work-order QR label.
	StateScanQR State = "scan_qr"

	StateOrder     State = "order"
	StateAddress   State = "address"
	StateStartTime State = "start_time"
	StateEndTime   State = "end_time"

	StateFumigation State = "fumigation_units"
	StateFumObs     State = "fum_obs"

	StateTankType State = "tank_type"
	StateAskAlt1  State = "ask_alt1"
	StateAskAlt2  State = "ask_alt2"

	StateNoticesAddress State = "notices_address"

	StateContact State = "contact"
	StatePhotos  State = "photos"
	// StateDispatch is the terminal node; entering it compiles and sends the report.
	StateDispatch State = "dispatch"
)

// Tier distinguishes the up-to-three tank question blocks of a tank interview.
type Tier string

const (
	TierMain Tier = "main"
	TierAlt1 Tier = "alt1"
	TierAlt2 Tier = "alt2"
)

// Tank tier states are generated per tier to keep the graph declarative.
func tierState(step string, tier Tier) State {
	return State(step + "_" + string(tier))
}

// Branch is one of the mutually exclusive service subtrees.
type Branch string

const (
	BranchNone        Branch = ""
	BranchFumigation  Branch = "fumigation"
	BranchTankService Branch = "tank_service"
	BranchBudget      Branch = "budget"
	BranchNotices     Branch = "notices"
)

// DisplayName returns the service name as it appears in prompts and reports.
func (b Branch) DisplayName() string {
	switch b {
	case BranchFumigation:
		return "Fumigaciones"
	case BranchTankService:
		return "Limpieza y Reparacion de Tanques"
	case BranchBudget:
		return "Presupuestos"
	case BranchNotices:
		return "Avisos"
	}
	return ""
}

// Categories of tank a building can have, in the fixed order used to derive
// the alternates once the technician picks one.
var TankCategories = [3]string{"CISTERNA", "RESERVA", "INTERMEDIARIO"}

// Node is a single interview step. Decision and menu nodes carry no FieldKey;
// photo and terminal nodes carry no validator.
type Node struct {
	ID State
	// FieldKey is the session field the node's answer is stored under.
	// Empty for menu, photo and terminal nodes.
	FieldKey string
	// Validate checks a raw text answer. Nil for nodes that do not accept
	// free text (menus, photo collection, terminal).
	Validate ValidateFunc
	// Prompt renders the question for this node against the session.
	Prompt PromptFunc
	// Next resolves the successor once the node's input has been accepted.
	Next NextFunc
	// Terminal marks the dispatch node; entering it ends the session.
	Terminal bool
}

// ValidateFunc checks raw input and returns the value to store, or a
// *ValidationError describing how to re-prompt.
type ValidateFunc func(raw string) (string, error)

// PromptFunc renders a node's outbound prompt from session context.
type PromptFunc func(s *Session) Prompt

// NextFunc resolves the successor state. The event payload is only consulted
// by decision nodes (yes/no hubs, menus); plain question nodes ignore it.
type NextFunc func(s *Session, payload string) State

// Graph is the static interview state graph shared by all sessions.
type Graph struct {
	nodes map[State]*Node
}

// Node returns the node for a state. The graph is closed: asking for an
// unknown state is a programming error and returns nil.
func (g *Graph) Node(id State) *Node {
	return g.nodes[id]
}

// FieldKey returns the data key collected by the given state, if any.
func (g *Graph) FieldKey(id State) (string, bool) {
	n := g.nodes[id]
	if n == nil || n.FieldKey == "" {
		return "", false
	}
	return n.FieldKey, true
}
