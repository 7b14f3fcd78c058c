package provisioning

import "fmt"

// Stage is a state of the install run.
type Stage string

const (
	StagePending            Stage = "pending"
	StageCollectingConfig   Stage = "collecting-config"
	StageInstallingArtifact Stage = "installing-artifact"
	StageProvisioningTenant Stage = "provisioning-tenant"
	StageProvisioningUser   Stage = "provisioning-user"
	StageFinalizing         Stage = "finalizing"
	StageDone               Stage = "done"
	StageAborted            Stage = "aborted"
)

// transitions lists the stages reachable from each stage. Every intermediate
// stage may abort; Done and Aborted are terminal.
var transitions = map[Stage][]Stage{
	StagePending:            {StageCollectingConfig, StageAborted},
	StageCollectingConfig:   {StageInstallingArtifact, StageAborted},
	StageInstallingArtifact: {StageProvisioningTenant, StageAborted},
	StageProvisioningTenant: {StageProvisioningUser, StageAborted},
	StageProvisioningUser:   {StageFinalizing, StageAborted},
	StageFinalizing:         {StageDone, StageAborted},
}

// CanTransition reports whether to is reachable from s in one step.
func (s Stage) CanTransition(to Stage) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageAborted
}

// Label returns a human-readable name for messages.
func (s Stage) Label() string {
	switch s {
	case StageCollectingConfig:
		return "collecting configuration"
	case StageInstallingArtifact:
		return "installing framework"
	case StageProvisioningTenant:
		return "creating master tenant"
	case StageProvisioningUser:
		return "creating super user"
	case StageFinalizing:
		return "finalizing"
	default:
		return string(s)
	}
}

// TransitionError is returned for a move the stage machine does not allow.
type TransitionError struct {
	From, To Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid stage transition %s -> %s", e.From, e.To)
}
