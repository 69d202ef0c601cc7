package flow

import (
	"context"
	"errors"
	"log/slog"

	"fieldbot/core/logger"
)

// EventKind discriminates the inbound event types the engine understands.
type EventKind int

const (
	// EventText is free text typed by the technician.
	EventText EventKind = iota
	// EventButton is an inline menu press; Text carries the button payload.
	EventButton
	// EventPhoto is an uploaded photo; Photo carries the transport reference.
	EventPhoto
)

func (k EventKind) String() string {
	switch k {
	case EventButton:
		return "button"
	case EventPhoto:
		return "photo"
	}
	return "text"
}

// Event is one normalized inbound update. The engine is transport-agnostic:
// the Telegram layer translates updates into events and renders prompts back.
type Event struct {
	SessionID int64
	Kind      EventKind
	Text      string
	Photo     PhotoRef
}

// Outbox delivers engine output back to the conversation.
type Outbox interface {
	SendText(ctx context.Context, id int64, text string) error
	SendMenu(ctx context.Context, id int64, p Prompt) error
}

// WorkOrder is the payload of a work-order QR label.
type WorkOrder struct {
	Number  string
	Address string
	Code    string
	Type    string
}

// WorkOrderDecoder extracts a work order from a photographed QR label.
type WorkOrderDecoder interface {
	Decode(ctx context.Context, ref PhotoRef) (WorkOrder, error)
}

// Dispatcher compiles and delivers the finished interview as a report.
type Dispatcher interface {
	Dispatch(ctx context.Context, s *Session) error
}

// Engine drives interview sessions over the state graph.
type Engine struct {
	graph    *Graph
	sessions *Store
	out      Outbox
	reports  Dispatcher
	qr       WorkOrderDecoder
}

// NewEngine wires the engine. The decoder may be nil when QR scanning is
// disabled; the scan step then rejects photos with a configuration notice.
func NewEngine(g *Graph, sessions *Store, out Outbox, reports Dispatcher, qr WorkOrderDecoder) *Engine {
	return &Engine{graph: g, sessions: sessions, out: out, reports: reports, qr: qr}
}

// Sessions exposes the underlying store for admin surfaces.
func (e *Engine) Sessions() *Store { return e.sessions }

// Start begins a fresh interview for the conversation, replacing any session
// already in flight.
func (e *Engine) Start(ctx context.Context, id int64) error {
	s := e.sessions.Create(id)
	logger.Info(ctx, "flow", "session_start", slog.Int64("chat_id", id))
	if err := e.out.SendText(ctx, id, "¡Hola! Bienvenido al asistente de reportes de servicio."); err != nil {
		return err
	}
	return e.render(ctx, s)
}

// Handle processes one inbound event against the conversation's session.
// Conversations without an active session are started implicitly.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	s, ok := e.sessions.Get(ev.SessionID)
	if !ok {
		return e.Start(ctx, ev.SessionID)
	}

	if ev.Kind != EventPhoto {
		switch ClassifySignal(ev.Text) {
		case SignalCancel:
			return e.cancel(ctx, s)
		case SignalBack:
			return e.back(ctx, s)
		case SignalDone:
			return e.finishPhotos(ctx, s)
		}
	}

	node := e.graph.Node(s.Current)
	if node == nil {
		// A session pointing at an unknown state is unrecoverable; restart.
		logger.Error(ctx, "flow", "unknown_state",
			slog.Int64("chat_id", s.ID), slog.String("state", string(s.Current)))
		return e.Start(ctx, s.ID)
	}

	switch s.Current {
	case StateScanQR:
		return e.handleScan(ctx, s, ev)
	case StatePhotos:
		return e.handlePhoto(ctx, s, ev)
	case StateService:
		return e.handleServiceMenu(ctx, s, ev)
	case StateTankType:
		return e.handleTankMenu(ctx, s, ev)
	case StateAskAlt1, StateAskAlt2:
		return e.handleDecision(ctx, s, node, ev)
	}

	return e.handleAnswer(ctx, s, node, ev)
}

// handleAnswer validates free text for a question node and advances on success.
func (e *Engine) handleAnswer(ctx context.Context, s *Session, node *Node, ev Event) error {
	if ev.Kind == EventPhoto {
		return e.reprompt(ctx, s, "Por favor responda la pregunta actual con texto.")
	}
	value, err := node.Validate(ev.Text)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			logger.Debug(ctx, "flow", "input_rejected",
				slog.Int64("chat_id", s.ID), slog.String("state", string(s.Current)))
			return e.out.SendText(ctx, s.ID, verr.Hint)
		}
		return err
	}
	s.Fields[node.FieldKey] = value
	return e.advance(ctx, s, node, "")
}

// handleServiceMenu fixes the interview branch. The branch is immutable for
// the life of the session: arriving back here after navigation keeps it.
func (e *Engine) handleServiceMenu(ctx context.Context, s *Session, ev Event) error {
	if ev.Kind != EventButton {
		return e.reprompt(ctx, s, "Por favor seleccione un servicio con los botones.")
	}
	picked := Branch(ev.Text)
	if picked.DisplayName() == "" {
		return e.reprompt(ctx, s, "Por favor seleccione un servicio con los botones.")
	}
	if s.Branch != BranchNone && s.Branch != picked {
		logger.Debug(ctx, "flow", "branch_repick_rejected",
			slog.Int64("chat_id", s.ID),
			slog.String("branch", string(s.Branch)),
			slog.String("picked", string(picked)))
		return e.reprompt(ctx, s,
			"El servicio ya fue seleccionado: "+s.Branch.DisplayName()+". Escriba 'quiero terminar' para empezar de nuevo.")
	}
	s.Branch = picked
	return e.advance(ctx, s, e.graph.Node(StateService), ev.Text)
}

// handleTankMenu fixes the tank category and derives the alternates.
func (e *Engine) handleTankMenu(ctx context.Context, s *Session, ev Event) error {
	if ev.Kind != EventButton {
		return e.reprompt(ctx, s, "Por favor seleccione el tipo de tanque con los botones.")
	}
	var selected string
	for _, c := range TankCategories {
		if ev.Text == c {
			selected = c
			break
		}
	}
	if selected == "" {
		return e.reprompt(ctx, s, "Por favor seleccione el tipo de tanque con los botones.")
	}
	s.setCategory(selected)
	return e.advance(ctx, s, e.graph.Node(StateTankType), ev.Text)
}

// handleDecision resolves a yes/no hub press.
func (e *Engine) handleDecision(ctx context.Context, s *Session, node *Node, ev Event) error {
	if ev.Kind != EventButton {
		return e.reprompt(ctx, s, "Por favor responda con los botones Si o No.")
	}
	return e.advance(ctx, s, node, ev.Text)
}

// handleScan decodes a work-order QR photo and stores its fields.
func (e *Engine) handleScan(ctx context.Context, s *Session, ev Event) error {
	if ev.Kind != EventPhoto {
		return e.reprompt(ctx, s, "Por favor, envíe una foto del código QR para continuar.")
	}
	if e.qr == nil {
		return e.out.SendText(ctx, s.ID,
			"La lectura de códigos QR no está disponible. Escriba 'quiero terminar' para reiniciar.")
	}
	wo, err := e.qr.Decode(ctx, ev.Photo)
	if err != nil {
		logger.Warn(ctx, "flow", "qr_decode_failed",
			slog.Int64("chat_id", s.ID), slog.String("error", err.Error()))
		return e.out.SendText(ctx, s.ID,
			"No se pudo leer el código QR. Por favor, intente nuevamente con una foto más clara.")
	}
	s.Fields[FieldQRNumber] = wo.Number
	s.Fields[FieldQRAddress] = wo.Address
	s.Fields[FieldQRCode] = wo.Code
	s.Fields[FieldQRType] = wo.Type
	if err := e.out.SendText(ctx, s.ID,
		"Datos del QR:\nNúmero: "+wo.Number+"\nDirección: "+wo.Address+"\nCódigo: "+wo.Code+"\nTipo: "+wo.Type); err != nil {
		return err
	}
	return e.advance(ctx, s, e.graph.Node(StateScanQR), "")
}

// handlePhoto feeds the branch photo policy at the photos node.
func (e *Engine) handlePhoto(ctx context.Context, s *Session, ev Event) error {
	if ev.Kind != EventPhoto {
		return e.reprompt(ctx, s, "Por favor adjunte una foto.")
	}
	res := policyFor(s.Branch).Accept(s, ev.Photo)
	logger.Debug(ctx, "flow", "photo_accepted",
		slog.Int64("chat_id", s.ID), slog.Int("photos", len(s.Photos)))
	switch res.Outcome {
	case photoComplete:
		return e.advance(ctx, s, e.graph.Node(StatePhotos), "")
	case photoRejected:
		return e.out.SendText(ctx, s.ID, res.Message)
	}
	return e.out.SendText(ctx, s.ID, res.Message)
}

// finishPhotos handles the explicit completion keyword. Outside the photos
// node "listo" is ordinary text and falls through to the current validator.
func (e *Engine) finishPhotos(ctx context.Context, s *Session) error {
	if s.Current != StatePhotos {
		node := e.graph.Node(s.Current)
		if node != nil && node.Validate != nil {
			return e.handleAnswer(ctx, s, node, Event{SessionID: s.ID, Kind: EventText, Text: "Listo"})
		}
		return e.reprompt(ctx, s, "")
	}
	res := policyFor(s.Branch).Finish(s)
	if res.Outcome != photoComplete {
		return e.out.SendText(ctx, s.ID, res.Message)
	}
	return e.advance(ctx, s, e.graph.Node(StatePhotos), "")
}

// advance commits a completed step: push history, resolve the successor and
// either render its prompt or dispatch when the graph terminates.
func (e *Engine) advance(ctx context.Context, s *Session, node *Node, payload string) error {
	next := node.Next(s, payload)
	if next == s.Current {
		return e.render(ctx, s)
	}
	s.pushHistory(s.Current)
	s.Current = next
	logger.Debug(ctx, "flow", "transition",
		slog.Int64("chat_id", s.ID),
		slog.String("from", string(node.ID)),
		slog.String("state", string(next)))
	if e.graph.Node(next).Terminal {
		return e.dispatch(ctx, s)
	}
	return e.render(ctx, s)
}

// back abandons the question being asked and returns to the previous one.
// The current state's stored answer, if any, is discarded; the landed state
// keeps its value until the technician supersedes it.
func (e *Engine) back(ctx context.Context, s *Session) error {
	if s.Current == StateCode && len(s.History) == 0 {
		return e.reprompt(ctx, s, "No hay ningún paso anterior.")
	}
	if key, ok := e.graph.FieldKey(s.Current); ok {
		delete(s.Fields, key)
	}
	prev, ok := s.popHistory()
	if !ok {
		prev = e.graph.PreviousState(s.Current, s)
	}
	if prev == StateTankType {
		s.Category, s.AltA, s.AltB = "", "", ""
	}
	s.Current = prev
	logger.Debug(ctx, "flow", "back",
		slog.Int64("chat_id", s.ID), slog.String("state", string(prev)))
	return e.render(ctx, s)
}

// cancel aborts the interview and starts over.
func (e *Engine) cancel(ctx context.Context, s *Session) error {
	logger.Info(ctx, "flow", "session_cancel",
		slog.Int64("chat_id", s.ID), slog.String("state", string(s.Current)))
	if err := e.out.SendText(ctx, s.ID, "Entendido, empecemos de nuevo."); err != nil {
		return err
	}
	return e.Start(ctx, s.ID)
}

// dispatch hands the finished session to the report pipeline and closes it.
// The session is removed in both outcomes; failed deliveries are persisted by
// the dispatcher for operator follow-up.
func (e *Engine) dispatch(ctx context.Context, s *Session) error {
	err := e.reports.Dispatch(ctx, s)
	e.sessions.Delete(s.ID)
	if err != nil {
		logger.Error(ctx, "flow", "dispatch_failed",
			slog.Int64("chat_id", s.ID),
			slog.String("branch", string(s.Branch)),
			slog.String("error", err.Error()))
		return e.out.SendText(ctx, s.ID,
			"Error al enviar correo. El reporte quedó guardado y será reenviado por un operador.")
	}
	logger.Info(ctx, "flow", "dispatch_ok",
		slog.Int64("chat_id", s.ID),
		slog.String("branch", string(s.Branch)),
		slog.Int("photos", len(s.Photos)))
	return e.out.SendText(ctx, s.ID, "Correo enviado exitosamente. ¡Gracias!")
}

// reprompt re-renders the current question, optionally preceded by a notice.
func (e *Engine) reprompt(ctx context.Context, s *Session, notice string) error {
	if notice != "" {
		if err := e.out.SendText(ctx, s.ID, notice); err != nil {
			return err
		}
	}
	return e.render(ctx, s)
}

// render sends the current node's prompt.
func (e *Engine) render(ctx context.Context, s *Session) error {
	node := e.graph.Node(s.Current)
	if node == nil || node.Terminal {
		return nil
	}
	p := node.Prompt(s)
	if len(p.Buttons) > 0 {
		return e.out.SendMenu(ctx, s.ID, p)
	}
	return e.out.SendText(ctx, s.ID, p.Text)
}
