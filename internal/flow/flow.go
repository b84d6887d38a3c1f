// Package flow models the multi-step confirmation sequences that gate
// destructive and sensitive mutations: the three-step delete flow
// (initial → warning → final) and the two-step edit flow
// (change-reason → final confirm). The machines are pure state holders;
// the actual mutation is injected as a commit callback.
//
// Every cancel or close resets all transient captured values (typed
// confirmation name, password, pending reason) so nothing leaks into a
// subsequent attempt.
package flow

import (
	"strings"

	"backoffice/internal/confirm"
	"backoffice/internal/errs"
	"backoffice/pkg/changeset"
)

// DeleteState enumerates the delete confirmation dialog steps.
type DeleteState int

const (
	DeleteInitial DeleteState = iota
	DeleteWarning
	DeleteFinal
	DeleteClosed
)

// DeleteFlow sequences the delete confirmation: two explicit "continue"
// acknowledgements, then name + password entry on the final step.
type DeleteFlow struct {
	state        DeleteState
	expectedName string

	confirmName string
	password    string
	errMsg      string
}

// NewDeleteFlow starts a delete flow for the principal with the given
// display name.
func NewDeleteFlow(expectedName string) *DeleteFlow {
	return &DeleteFlow{state: DeleteInitial, expectedName: expectedName}
}

// State returns the current step.
func (f *DeleteFlow) State() DeleteState { return f.state }

// Err returns the inline error shown on the current step, if any.
func (f *DeleteFlow) Err() string { return f.errMsg }

// Continue advances initial → warning → final.
func (f *DeleteFlow) Continue() {
	switch f.state {
	case DeleteInitial:
		f.state = DeleteWarning
	case DeleteWarning:
		f.state = DeleteFinal
	}
	f.errMsg = ""
}

// Back steps final → warning → initial, clearing anything typed on the
// abandoned step.
func (f *DeleteFlow) Back() {
	switch f.state {
	case DeleteFinal:
		f.state = DeleteWarning
	case DeleteWarning:
		f.state = DeleteInitial
	}
	f.reset()
}

// Cancel closes the dialog from any state and wipes captured input.
func (f *DeleteFlow) Cancel() {
	f.state = DeleteClosed
	f.reset()
}

// Submit runs the final step. The commit callback is invoked only when the
// typed name matches the principal's display name; on any failure the dialog
// stays open on the final step with an inline error. On success the flow
// closes and all captured input is wiped.
func (f *DeleteFlow) Submit(enteredName, password string, commit func(password string) error) error {
	if f.state != DeleteFinal {
		return errs.NewValidation("confirmation has not reached the final step")
	}
	f.confirmName = enteredName
	f.password = password

	if !confirm.Identity(f.expectedName, enteredName) {
		f.errMsg = "name does not match"
		return errs.NewValidation(f.errMsg)
	}

	if err := commit(password); err != nil {
		f.errMsg = err.Error()
		return err
	}

	f.state = DeleteClosed
	f.reset()
	return nil
}

func (f *DeleteFlow) reset() {
	f.confirmName = ""
	f.password = ""
	f.errMsg = ""
}

// EditState enumerates the edit confirmation dialog steps.
type EditState int

const (
	EditIdle EditState = iota
	EditReasonOpen
	EditConfirmOpen
)

// EditFlow sequences an edit: the field diff is acknowledged with a written
// reason, then the mutation is confirmed with a password. A submission with
// no field changes never opens the dialog at all.
type EditFlow struct {
	state   EditState
	changes []changeset.FieldChange
	reason  string
	errMsg  string
}

// NewEditFlow returns an idle edit flow.
func NewEditFlow() *EditFlow {
	return &EditFlow{state: EditIdle}
}

// State returns the current step.
func (f *EditFlow) State() EditState { return f.state }

// Err returns the inline error shown on the current step, if any.
func (f *EditFlow) Err() string { return f.errMsg }

// Reason returns the captured change reason.
func (f *EditFlow) Reason() string { return f.reason }

// Changes returns the pending field diff.
func (f *EditFlow) Changes() []changeset.FieldChange { return f.changes }

// OpenReason moves idle → change-reason-open for a non-empty diff. An empty
// diff is a terminal "no changes to save" condition, not a submission path.
func (f *EditFlow) OpenReason(changes []changeset.FieldChange) error {
	if f.state != EditIdle {
		return errs.NewValidation("an edit confirmation is already in progress")
	}
	if len(changes) == 0 {
		return errs.ErrNoChanges
	}
	f.changes = changes
	f.state = EditReasonOpen
	return nil
}

// SubmitReason captures the justification and advances to the final confirm
// step. A blank reason keeps the reason step open with an inline error.
func (f *EditFlow) SubmitReason(reason string) error {
	if f.state != EditReasonOpen {
		return errs.NewValidation("change-reason step is not open")
	}
	if strings.TrimSpace(reason) == "" {
		f.errMsg = "a change reason is required"
		return errs.NewValidation(f.errMsg)
	}
	f.reason = reason
	f.errMsg = ""
	f.state = EditConfirmOpen
	return nil
}

// Back returns from the final confirm step to the reason step, preserving
// the entered reason.
func (f *EditFlow) Back() {
	if f.state == EditConfirmOpen {
		f.state = EditReasonOpen
		f.errMsg = ""
	}
}

// SubmitConfirm runs the mutation. A ValidationError (password mismatch)
// keeps the final step open with an inline error and preserves the reason so
// the user can retry or go back. Any other failure closes the dialog and
// resets; success closes and resets.
func (f *EditFlow) SubmitConfirm(commit func(reason string) error) error {
	if f.state != EditConfirmOpen {
		return errs.NewValidation("final confirmation step is not open")
	}
	if err := commit(f.reason); err != nil {
		if errs.IsValidation(err) {
			f.errMsg = err.Error()
			return err
		}
		f.Cancel()
		return err
	}
	f.Cancel()
	return nil
}

// Cancel resets the flow to idle and wipes all transient state.
func (f *EditFlow) Cancel() {
	f.state = EditIdle
	f.changes = nil
	f.reason = ""
	f.errMsg = ""
}
