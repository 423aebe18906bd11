package models

// TriggerMatch is a stored trigger that may react to a dispatched event,
// together with the automation that owns it.
type TriggerMatch struct {
	Automation *Automation `json:"automation"`
	Trigger    *Trigger    `json:"trigger"`
}
