package model

import "github.com/seion-lab/kintai/pkg/domain/types"

// ScanResult is the structured outcome of a card scan, returned to the
// scanner UI. Field names are part of the wire contract.
type ScanResult struct {
	Success  bool              `json:"success"`
	Action   types.PunchAction `json:"action,omitempty"`
	Time     string            `json:"time,omitempty"`
	Message  string            `json:"message"`
	UserName string            `json:"userName,omitempty"`
}

// NewScanSuccess builds a successful scan result for an applied transition
func NewScanSuccess(action types.PunchAction, userName, formatted string, firstOfDay bool) *ScanResult {
	return &ScanResult{
		Success:  true,
		Action:   action,
		Time:     formatted,
		Message:  PunchMessage(action, userName, formatted, firstOfDay),
		UserName: userName,
	}
}

// NewScanComplete builds the benign failure for an already-complete day
func NewScanComplete(userName string) *ScanResult {
	return &ScanResult{
		Success:  false,
		Action:   types.ActionComplete,
		Message:  PunchMessage(types.ActionComplete, userName, "", false),
		UserName: userName,
	}
}

// NewScanFailure builds a failure result with no action side effects
func NewScanFailure(message string) *ScanResult {
	return &ScanResult{
		Success: false,
		Message: message,
	}
}

// RegistrationFailure classifies why a registration was refused, so the
// transport layer can map it to a status code without parsing messages
type RegistrationFailure string

const (
	RegistrationFailureNone       RegistrationFailure = ""
	RegistrationFailureInvalid    RegistrationFailure = "invalid"
	RegistrationFailureConflict   RegistrationFailure = "conflict"
	RegistrationFailureUnverified RegistrationFailure = "unverified"
	RegistrationFailureInternal   RegistrationFailure = "internal"
)

// RegistrationResult is the structured outcome of a user registration
type RegistrationResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Failure RegistrationFailure `json:"-"`
	User    *User               `json:"-"`
}
