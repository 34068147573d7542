package event_bus

const (
	ProgrammeSubmittedType EventType = "programme.submitted"
	ProgrammeDeletedType   EventType = "programme.deleted"
	ClaimSubmittedType     EventType = "claim.submitted"
)

// ProgrammeSubmitted is published after the backend accepted a create or update.
type ProgrammeSubmitted struct {
	ProgrammeId string
	DraftId     string
	Updated     bool
}

type ProgrammeDeleted struct {
	ProgrammeId string
}

// ClaimSubmitted is published after a claim was accepted and the cached event patched locally.
type ClaimSubmitted struct {
	EventId          string
	TotalIncome      float64
	TotalExpenditure float64
}
