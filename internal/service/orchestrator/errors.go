package orchestrator

import "errors"

// Every collaborator failure is wrapped into exactly one of these kinds at
// the orchestrator boundary; nothing crosses it unwrapped.
var (
	ErrPersonaNotFound = errors.New("persona could not be resolved")
	ErrProfileNotFound = errors.New("profile could not be resolved")
	ErrValidation      = errors.New("invalid orchestration input")
	ErrGateway         = errors.New("language model gateway failed")
	ErrGatewayTimeout  = errors.New("language model gateway timed out")
	ErrPublish         = errors.New("message publish failed")
	ErrOrchestration   = errors.New("orchestration failed")
)
