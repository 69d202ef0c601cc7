package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedOutbox struct {
	texts []string
	menus []Prompt
}

func (o *recordedOutbox) SendText(_ context.Context, _ int64, text string) error {
	o.texts = append(o.texts, text)
	return nil
}

func (o *recordedOutbox) SendMenu(_ context.Context, _ int64, p Prompt) error {
	o.menus = append(o.menus, p)
	return nil
}

func (o *recordedOutbox) lastText() string {
	if len(o.texts) == 0 {
		return ""
	}
	return o.texts[len(o.texts)-1]
}

func (o *recordedOutbox) lastMenu() Prompt {
	if len(o.menus) == 0 {
		return Prompt{}
	}
	return o.menus[len(o.menus)-1]
}

type capturedDispatch struct {
	sessions []*Session
	err      error
}

func (d *capturedDispatch) Dispatch(_ context.Context, s *Session) error {
	d.sessions = append(d.sessions, s)
	return d.err
}

type stubDecoder struct {
	wo  WorkOrder
	err error
}

func (d stubDecoder) Decode(context.Context, PhotoRef) (WorkOrder, error) {
	return d.wo, d.err
}

type fixture struct {
	engine   *Engine
	out      *recordedOutbox
	dispatch *capturedDispatch
	sessions *Store
}

func newFixture(t *testing.T, dec WorkOrderDecoder) *fixture {
	t.Helper()
	out := &recordedOutbox{}
	dispatch := &capturedDispatch{}
	sessions := NewStore()
	return &fixture{
		engine:   NewEngine(NewGraph(), sessions, out, dispatch, dec),
		out:      out,
		dispatch: dispatch,
		sessions: sessions,
	}
}

func (f *fixture) text(t *testing.T, id int64, text string) {
	t.Helper()
	require.NoError(t, f.engine.Handle(context.Background(), Event{SessionID: id, Kind: EventText, Text: text}))
}

func (f *fixture) press(t *testing.T, id int64, data string) {
	t.Helper()
	require.NoError(t, f.engine.Handle(context.Background(), Event{SessionID: id, Kind: EventButton, Text: data}))
}

func (f *fixture) photo(t *testing.T, id int64, fileID string) {
	t.Helper()
	require.NoError(t, f.engine.Handle(context.Background(), Event{SessionID: id, Kind: EventPhoto, Photo: PhotoRef{FileID: fileID}}))
}

func TestTankServiceInterview(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.engine.Start(context.Background(), 1))
	assert.Contains(t, f.out.lastText(), "código")

	f.text(t, 1, "12345")
	require.Len(t, f.out.menus, 1)
	assert.Equal(t, "¿Qué servicio se realizó?", f.out.lastMenu().Text)

	f.press(t, 1, string(BranchTankService))
	assert.Contains(t, f.out.lastText(), "número de orden")

	f.text(t, 1, "1234567")
	f.text(t, 1, "Calle Falsa 123")
	f.text(t, 1, "09:00")
	f.text(t, 1, "11:30")
	assert.Equal(t, "Seleccione el tipo de tanque:", f.out.lastMenu().Text)

	f.press(t, 1, "CISTERNA")
	assert.Contains(t, f.out.lastText(), "Cisterna")

	for _, answer := range []string{"2, 3, 1.5", "40", "56", "masilla", "tapas flojas", "desagote previo"} {
		f.text(t, 1, answer)
	}
	assert.Contains(t, f.out.lastMenu().Text, "Reserva")

	f.press(t, 1, "no")
	assert.Contains(t, f.out.lastMenu().Text, "Intermediario")

	f.press(t, 1, "no")
	assert.Contains(t, f.out.lastText(), "encargado")

	f.text(t, 1, "Juan 115555123")
	assert.Contains(t, f.out.lastText(), "Listo")

	f.photo(t, 1, "a")
	f.photo(t, 1, "b")
	f.text(t, 1, "Listo")

	require.Len(t, f.dispatch.sessions, 1)
	s := f.dispatch.sessions[0]
	assert.Equal(t, BranchTankService, s.Branch)
	assert.Equal(t, "CISTERNA", s.Category)
	assert.Equal(t, "RESERVA", s.AltA)
	assert.Equal(t, "INTERMEDIARIO", s.AltB)
	assert.Equal(t, "12345", s.Fields[FieldCode])
	assert.Equal(t, "1234567", s.Fields[FieldOrder])
	assert.Equal(t, "2, 3, 1.5", s.Fields["measure_main"])
	assert.Equal(t, "tapas flojas", s.Fields["repairs"])
	assert.Len(t, s.Photos, 2)

	assert.Contains(t, f.out.lastText(), "exitosamente")
	assert.False(t, f.sessions.InProgress(1))
}

func TestFumigationInterviewWithQR(t *testing.T) {
	dec := stubDecoder{wo: WorkOrder{
		Number: "0012345", Address: "Av. Siempre Viva 742", Code: "777", Type: "Mensual",
	}}
	f := newFixture(t, dec)
	require.NoError(t, f.engine.Start(context.Background(), 2))

	f.text(t, 2, "99")
	f.press(t, 2, string(BranchFumigation))
	assert.Contains(t, f.out.lastText(), "QR")

	f.photo(t, 2, "qr-shot")
	// decoded echo precedes the next question
	assert.Contains(t, f.out.texts[len(f.out.texts)-2], "Av. Siempre Viva 742")
	assert.Contains(t, f.out.lastText(), "orden")

	f.text(t, 2, "7654321")
	f.text(t, 2, "Av. Siempre Viva 742")
	f.text(t, 2, "08:15")
	f.text(t, 2, "09:45")
	assert.Contains(t, f.out.lastText(), "insectos")

	f.text(t, 2, "2B y 4A")
	f.text(t, 2, "Revisar sótano")
	f.text(t, 2, "Pedro 115555999")
	assert.Contains(t, f.out.lastText(), "ORDEN DE TRABAJO")

	f.photo(t, 2, "p1")
	assert.Contains(t, f.out.lastText(), "segunda foto")

	f.photo(t, 2, "p2")
	require.Len(t, f.dispatch.sessions, 1)
	s := f.dispatch.sessions[0]
	assert.Equal(t, "0012345", s.Fields[FieldQRNumber])
	assert.Equal(t, "Mensual", s.Fields[FieldQRType])
	assert.Len(t, s.Photos, 2)
	assert.Contains(t, f.out.lastText(), "exitosamente")
}

func TestQRDecodeFailureKeepsState(t *testing.T) {
	f := newFixture(t, stubDecoder{err: errors.New("not a qr")})
	require.NoError(t, f.engine.Start(context.Background(), 3))
	f.text(t, 3, "1")
	f.press(t, 3, string(BranchFumigation))

	f.photo(t, 3, "blurry")
	assert.Contains(t, f.out.lastText(), "No se pudo leer")

	s, ok := f.sessions.Get(3)
	require.True(t, ok)
	assert.Equal(t, StateScanQR, s.Current)
}

func TestBackRestoresPreviousQuestion(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.engine.Start(context.Background(), 4))
	f.text(t, 4, "42")
	f.press(t, 4, string(BranchTankService))
	f.text(t, 4, "1234567")
	assert.Contains(t, f.out.lastText(), "dirección")

	f.text(t, 4, "atrás")
	assert.Contains(t, f.out.lastText(), "orden")

	s, _ := f.sessions.Get(4)
	assert.Equal(t, StateOrder, s.Current)
	assert.NotContains(t, s.Fields, FieldAddress)
	assert.Equal(t, "1234567", s.Fields[FieldOrder],
		"the re-asked answer stays until superseded")

	f.text(t, 4, "7654321")
	s, _ = f.sessions.Get(4)
	assert.Equal(t, "7654321", s.Fields[FieldOrder])
	assert.Equal(t, StateAddress, s.Current)
}

func TestBackAtEntryIsRefused(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.engine.Start(context.Background(), 5))
	f.text(t, 5, "atras")
	assert.Contains(t, f.out.texts[len(f.out.texts)-2], "anterior")
	assert.Contains(t, f.out.lastText(), "código")
}

func TestBranchIsImmutableAfterBack(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.engine.Start(context.Background(), 6))
	f.text(t, 6, "7")
	f.press(t, 6, string(BranchBudget))
	assert.Contains(t, f.out.lastText(), "dirección")

	f.text(t, 6, "atras")
	require.NotEmpty(t, f.out.menus)

	f.press(t, 6, string(BranchFumigation))
	assert.Contains(t, f.out.lastText(), "ya fue seleccionado")

	s, _ := f.sessions.Get(6)
	assert.Equal(t, BranchBudget, s.Branch)

	f.press(t, 6, string(BranchBudget))
	assert.Contains(t, f.out.lastText(), "dirección")
}

func TestBackClearsTankCategory(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.engine.Start(context.Background(), 7))
	f.text(t, 7, "7")
	f.press(t, 7, string(BranchBudget))
	f.text(t, 7, "Calle 1")
	f.text(t, 7, "08:00")
	f.text(t, 7, "10:00")
	f.press(t, 7, "RESERVA")

	s, _ := f.sessions.Get(7)
	require.Equal(t, "RESERVA", s.Category)
	require.Equal(t, "CISTERNA", s.AltA)

	f.text(t, 7, "atras")
	s, _ = f.sessions.Get(7)
	assert.Equal(t, StateTankType, s.Current)
	assert.Empty(t, s.Category)
	assert.Empty(t, s.AltA)
}

func TestSentinelPhotosRequireAtLeastOne(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.engine.Start(context.Background(), 8))
	f.text(t, 8, "7")
	f.press(t, 8, string(BranchNotices))
	f.text(t, 8, "Moreno 350, Moreno 352")
	f.text(t, 8, "14:00")
	f.text(t, 8, "15:00")
	f.text(t, 8, "Encargada Ana 115555000")
	assert.Contains(t, f.out.lastText(), "Listo")

	f.text(t, 8, "Listo")
	assert.Contains(t, f.out.lastText(), "al menos una foto")
	assert.Empty(t, f.dispatch.sessions)

	f.photo(t, 8, "aviso-1")
	f.text(t, 8, "listo")
	require.Len(t, f.dispatch.sessions, 1)
	assert.Equal(t, BranchNotices, f.dispatch.sessions[0].Branch)
}

func TestPhotosSurviveBack(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.engine.Start(context.Background(), 9))
	f.text(t, 9, "7")
	f.press(t, 9, string(BranchNotices))
	f.text(t, 9, "Moreno 350")
	f.text(t, 9, "14:00")
	f.text(t, 9, "15:00")
	f.text(t, 9, "Ana")
	f.photo(t, 9, "aviso-1")

	f.text(t, 9, "atras")
	s, _ := f.sessions.Get(9)
	assert.Equal(t, StateContact, s.Current)
	assert.Len(t, s.Photos, 1)

	f.text(t, 9, "Ana 115555000")
	f.photo(t, 9, "aviso-2")
	f.text(t, 9, "Listo")
	require.Len(t, f.dispatch.sessions, 1)
	assert.Len(t, f.dispatch.sessions[0].Photos, 2)
}

func TestCancelRestartsInterview(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.engine.Start(context.Background(), 10))
	f.text(t, 10, "7")
	f.press(t, 10, string(BranchTankService))
	f.text(t, 10, "1234567")

	f.text(t, 10, "quiero terminar")
	s, ok := f.sessions.Get(10)
	require.True(t, ok)
	assert.Equal(t, StateCode, s.Current)
	assert.Equal(t, BranchNone, s.Branch)
	assert.Empty(t, s.Fields)
	assert.Contains(t, f.out.lastText(), "código")
}

func TestUnknownDecisionPayloadFallsThrough(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.engine.Start(context.Background(), 11))
	f.text(t, 11, "7")
	f.press(t, 11, string(BranchBudget))
	f.text(t, 11, "Calle 1")
	f.text(t, 11, "08:00")
	f.text(t, 11, "10:00")
	f.press(t, 11, "CISTERNA")
	for i := 0; i < 6; i++ {
		f.text(t, 11, fmt.Sprintf("respuesta %d", i))
	}

	f.press(t, 11, "stale-payload")
	s, _ := f.sessions.Get(11)
	assert.Equal(t, StateAskAlt2, s.Current)
}

func TestValidationRejectionKeepsSession(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.engine.Start(context.Background(), 12))

	f.text(t, 12, "abc")
	assert.Contains(t, f.out.lastText(), "numérico")

	f.text(t, 12, "12345")
	f.press(t, 12, string(BranchTankService))

	f.text(t, 12, "123")
	assert.Contains(t, f.out.lastText(), "7 dígitos")

	f.text(t, 12, "1234567")
	f.text(t, 12, "Calle Falsa 123")

	f.text(t, 12, "25:99")
	assert.Contains(t, f.out.lastText(), "HH:MM")
	s, _ := f.sessions.Get(12)
	assert.Equal(t, StateStartTime, s.Current)
}

func TestDispatchFailureStillClosesSession(t *testing.T) {
	f := newFixture(t, nil)
	f.dispatch.err = errors.New("smtp: connection refused")
	require.NoError(t, f.engine.Start(context.Background(), 13))
	f.text(t, 13, "7")
	f.press(t, 13, string(BranchNotices))
	f.text(t, 13, "Moreno 350")
	f.text(t, 13, "14:00")
	f.text(t, 13, "15:00")
	f.text(t, 13, "Ana")
	f.photo(t, 13, "aviso")
	f.text(t, 13, "Listo")

	assert.Contains(t, f.out.lastText(), "Error al enviar correo")
	assert.False(t, f.sessions.InProgress(13))
}

func TestImplicitStartOnFirstEvent(t *testing.T) {
	f := newFixture(t, nil)
	f.text(t, 14, "hola")
	assert.True(t, f.sessions.InProgress(14))
	assert.Contains(t, f.out.lastText(), "código")
}
