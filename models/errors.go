package models

import "github.com/pkg/errors"

// Workflow errors. Handlers wrap these with details, callers match them with errors.Is.
var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAlreadyProcessed      = errors.New("already processed")
	ErrTemplateNotFound      = errors.New("approval template not found")
	ErrTemplateNotApplicable = errors.New("approval template is not applicable to the task")
	ErrUnresolvableApprover  = errors.New("unresolvable approver")
	ErrEmptyChain            = errors.New("empty approval chain")
	ErrNoPeersFound          = errors.New("no peers found")
	ErrValidation            = errors.New("validation failed")
	ErrTaskBusy              = errors.New("task is locked by another operation")
)
