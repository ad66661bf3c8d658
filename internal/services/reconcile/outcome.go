package reconcile

// Stage терминальное состояние обработки уведомления.
type Stage string

const (
	StageApplied  Stage = "applied"
	StageSkipped  Stage = "skipped"
	StageRejected Stage = "rejected"
)

const (
	ActionMembershipActivated   = "membership_activated"
	ActionRegistrationConfirmed = "registration_confirmed"
)

const (
	ReasonNotVerified      = "not_verified"
	ReasonVerifyError      = "verify_error"
	ReasonMalformed        = "malformed"
	ReasonNoEmail          = "no_email"
	ReasonInvalidAmount    = "invalid_amount"
	ReasonPersistenceError = "persistence_error"
	ReasonDuplicateTxn     = "duplicate_txn"
	ReasonNoMatch          = "no_match"
)

// Outcome итог сверки одного уведомления.
// Для applied заполнены Action и RecordID, для skipped и rejected заполнен Reason.
// Для skipped по статусу платежа Reason содержит исходный статус.
type Outcome struct {
	Stage    Stage  `json:"stage"`
	Action   string `json:"action,omitempty"`
	Reason   string `json:"reason,omitempty"`
	RecordID string `json:"record_id,omitempty"`
}

func applied(action, recordID string) Outcome {
	return Outcome{Stage: StageApplied, Action: action, RecordID: recordID}
}

func skipped(reason string) Outcome {
	return Outcome{Stage: StageSkipped, Reason: reason}
}

func rejected(reason string) Outcome {
	return Outcome{Stage: StageRejected, Reason: reason}
}

// Label короткая метка исхода для метрик и логов.
func (o Outcome) Label() string {
	if o.Stage == StageApplied {
		return o.Action
	}
	return o.Reason
}
