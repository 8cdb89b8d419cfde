package service

import (
	"fmt"
	"strings"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

// StatePolicy decides how account states other than Active and Suspended
// are classified.
type StatePolicy string

const (
	// PolicyPermissive treats every non-Suspended state as Active.
	PolicyPermissive StatePolicy = "permissive"
	// PolicyStrict treats every state other than Active as Suspended.
	PolicyStrict StatePolicy = "strict"
)

func ParseStatePolicy(s string) (StatePolicy, error) {
	switch p := StatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyPermissive, nil
	case PolicyPermissive, PolicyStrict:
		return p, nil
	default:
		return "", fmt.Errorf("unknown account state policy %q", s)
	}
}

// classify maps a lookup result to the logged status and device feedback.
// found is false when the identifier has no identity record.
func classify(rec types.IdentityRecord, found bool, policy StatePolicy) (types.ResolvedStatus, types.Feedback) {
	if !found {
		return types.StatusDenied, types.Feedback{Status: types.OutcomeInvalid}
	}

	state := rec.AccountState.Normalize()
	suspended := state == types.AccountSuspended
	if policy == PolicyStrict && state != types.AccountActive {
		suspended = true
	}

	if suspended {
		return types.StatusSuspended, types.Feedback{Status: types.OutcomeSuspended, Name: rec.DisplayName}
	}
	return types.StatusPresent, types.Feedback{Status: types.OutcomeValid, Name: rec.DisplayName}
}
