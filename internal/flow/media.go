package flow

// photoOutcome tells the engine what to do after a photo event at the
// photos state.
type photoOutcome int

const (
	// photoWait means collection continues; Message carries the acknowledgment.
	photoWait photoOutcome = iota
	// photoComplete means the required set is assembled and the interview
	// advances past the photos node.
	photoComplete
	// photoRejected means the event was refused; Message carries the reason.
	photoRejected
)

type photoResult struct {
	Outcome photoOutcome
	Message string
}

// photoPolicy decides when photo collection at the photos node is complete.
// Fumigation interviews need an exact pair of photos; every other branch
// collects an open-ended set closed by the technician typing "Listo".
type photoPolicy interface {
	// Accept records one incoming photo.
	Accept(s *Session, ref PhotoRef) photoResult
	// Finish handles an explicit completion keyword.
	Finish(s *Session) photoResult
}

func policyFor(b Branch) photoPolicy {
	if b == BranchFumigation {
		return fixedPairPolicy{}
	}
	return sentinelPolicy{}
}

// fixedPairPolicy collects exactly two photos and advances on its own.
type fixedPairPolicy struct{}

func (fixedPairPolicy) Accept(s *Session, ref PhotoRef) photoResult {
	s.Photos = append(s.Photos, ref)
	if len(s.Photos) < 2 {
		return photoResult{Outcome: photoWait, Message: "Por favor cargue la segunda foto."}
	}
	return photoResult{Outcome: photoComplete}
}

func (fixedPairPolicy) Finish(*Session) photoResult {
	return photoResult{
		Outcome: photoRejected,
		Message: "Por favor cargue las dos fotos para continuar.",
	}
}

// sentinelPolicy collects one or more photos until the technician closes the
// set explicitly.
type sentinelPolicy struct{}

func (sentinelPolicy) Accept(s *Session, ref PhotoRef) photoResult {
	s.Photos = append(s.Photos, ref)
	return photoResult{
		Outcome: photoWait,
		Message: "Foto recibida. Puede enviar más fotos o escriba 'Listo' para continuar.",
	}
}

func (sentinelPolicy) Finish(s *Session) photoResult {
	if len(s.Photos) == 0 {
		return photoResult{
			Outcome: photoRejected,
			Message: "Debe cargar al menos una foto antes de escribir 'Listo'.",
		}
	}
	return photoResult{Outcome: photoComplete}
}
