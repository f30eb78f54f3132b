package domain

type StudyStatus string

const (
	StudyDisabled StudyStatus = "disabled"
	StudyEnabled  StudyStatus = "enabled"
	StudyRetired  StudyStatus = "retired"
)

func (s StudyStatus) Valid() bool {
	switch s {
	case StudyDisabled, StudyEnabled, StudyRetired:
		return true
	}
	return false
}

func (s StudyStatus) String() string { return string(s) }

type CentreStatus string

const (
	CentreDisabled CentreStatus = "disabled"
	CentreEnabled  CentreStatus = "enabled"
)

func (s CentreStatus) Valid() bool {
	return s == CentreDisabled || s == CentreEnabled
}

func (s CentreStatus) String() string { return string(s) }

type UserStatus string

const (
	UserRegistered UserStatus = "registered"
	UserActive     UserStatus = "active"
	UserLocked     UserStatus = "locked"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserRegistered, UserActive, UserLocked:
		return true
	}
	return false
}

func (s UserStatus) String() string { return string(s) }

type ShipmentState string

const (
	ShipmentCreated   ShipmentState = "created"
	ShipmentPacked    ShipmentState = "packed"
	ShipmentSent      ShipmentState = "sent"
	ShipmentReceived  ShipmentState = "received"
	ShipmentUnpacked  ShipmentState = "unpacked"
	ShipmentCompleted ShipmentState = "completed"
	ShipmentLost      ShipmentState = "lost"
)

// shipmentTransitions lists the states each state may move to. Moving one
// step back undoes the last step.
var shipmentTransitions = map[ShipmentState][]ShipmentState{
	ShipmentCreated:   {ShipmentPacked},
	ShipmentPacked:    {ShipmentCreated, ShipmentSent},
	ShipmentSent:      {ShipmentPacked, ShipmentReceived, ShipmentLost},
	ShipmentReceived:  {ShipmentSent, ShipmentUnpacked},
	ShipmentUnpacked:  {ShipmentReceived, ShipmentCompleted},
	ShipmentCompleted: {ShipmentUnpacked},
	ShipmentLost:      {ShipmentSent},
}

func (s ShipmentState) Valid() bool {
	_, ok := shipmentTransitions[s]
	return ok
}

func (s ShipmentState) String() string { return string(s) }

// CanTransitionTo reports whether a shipment in state s may move to next.
func (s ShipmentState) CanTransitionTo(next ShipmentState) bool {
	for _, allowed := range shipmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type AnnotationValueType string

const (
	ValueTypeText           AnnotationValueType = "text"
	ValueTypeNumber         AnnotationValueType = "number"
	ValueTypeDateTime       AnnotationValueType = "dateTime"
	ValueTypeSingleSelect   AnnotationValueType = "singleSelect"
	ValueTypeMultipleSelect AnnotationValueType = "multipleSelect"
)

func (t AnnotationValueType) Valid() bool {
	switch t {
	case ValueTypeText, ValueTypeNumber, ValueTypeDateTime, ValueTypeSingleSelect, ValueTypeMultipleSelect:
		return true
	}
	return false
}

func (t AnnotationValueType) IsSelect() bool {
	return t == ValueTypeSingleSelect || t == ValueTypeMultipleSelect
}

func (t AnnotationValueType) String() string { return string(t) }
