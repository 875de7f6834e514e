package workflow

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/response"
)

var (
	genScope      = gen.OneConstOf(domain.ScopeTask, domain.ScopePhase)
	genOpenStatus = gen.OneConstOf(domain.StatusNotStarted, domain.StatusInProgress)
	genAnyStatus  = gen.OneConstOf(domain.StatusNotStarted, domain.StatusInProgress, domain.StatusWaitingForApproval, domain.StatusCompleted)
	genActor      = gen.OneConstOf(admin, worker)
)

func hasCode(err error, code string) bool {
	return response.HasCode(err, code)
}

func TestProperty_OutOfRangeProgressIsRejected(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	outOfRange := gen.OneGenOf(gen.IntRange(-1000, -1), gen.IntRange(101, 1000))

	properties.Property("progress outside [0,100] is a validation error in every state", prop.ForAll(
		func(p int, scope domain.ScopeType, status domain.WorkStatus, actor Actor) bool {
			_, err := Apply(State{Scope: scope, Status: status, Progress: 50}, actor, Action{Kind: ActionSubmit, Progress: p})
			return hasCode(err, response.ErrCodeValidation)
		},
		outOfRange, genScope, genAnyStatus, genActor,
	))

	properties.TestingRun(t)
}

func TestProperty_HundredNeverCompletes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("submitting 100 always yields waiting_for_approval", prop.ForAll(
		func(prev int, scope domain.ScopeType, status domain.WorkStatus, actor Actor) bool {
			out, err := Apply(State{Scope: scope, Status: status, Progress: prev}, actor, Action{Kind: ActionSubmit, Progress: 100})
			return err == nil && out.Status == domain.StatusWaitingForApproval && out.Progress == 100
		},
		gen.IntRange(0, 99), genScope, genOpenStatus, genActor,
	))

	properties.Property("submitting below 100 yields in_progress", prop.ForAll(
		func(prev, next int, scope domain.ScopeType, status domain.WorkStatus) bool {
			out, err := Apply(State{Scope: scope, Status: status, Progress: prev}, worker, Action{Kind: ActionSubmit, Progress: next})
			return err == nil && out.Status == domain.StatusInProgress && out.Progress == next && out.PreviousProgress == prev
		},
		gen.IntRange(0, 99), gen.IntRange(0, 99), genScope, genOpenStatus,
	))

	properties.TestingRun(t)
}

func TestProperty_CompletedIsTerminal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genKind := gen.OneConstOf(ActionSubmit, ActionApprove, ActionReject)

	properties.Property("no action leaves completed", prop.ForAll(
		func(kind ActionKind, p int, scope domain.ScopeType) bool {
			_, err := Apply(
				State{Scope: scope, Status: domain.StatusCompleted, Progress: 100},
				admin,
				Action{Kind: kind, Progress: p, Note: "reason"},
			)
			return hasCode(err, response.ErrCodeInvalidTransition)
		},
		genKind, gen.IntRange(0, 100), genScope,
	))

	properties.TestingRun(t)
}

func TestProperty_ApproveOnlyFromWaiting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("approve succeeds exactly when waiting", prop.ForAll(
		func(status domain.WorkStatus, scope domain.ScopeType) bool {
			out, err := Apply(State{Scope: scope, Status: status, Progress: 100}, admin, Action{Kind: ActionApprove})
			if status == domain.StatusWaitingForApproval {
				return err == nil && out.Status == domain.StatusCompleted && out.StampApproval
			}
			return hasCode(err, response.ErrCodeInvalidTransition)
		},
		genAnyStatus, genScope,
	))

	properties.Property("non-admins can never approve or reject", prop.ForAll(
		func(status domain.WorkStatus, reject bool) bool {
			kind := ActionApprove
			if reject {
				kind = ActionReject
			}
			_, err := Apply(State{Scope: domain.ScopeTask, Status: status, Progress: 100}, worker, Action{Kind: kind, Note: "x"})
			return hasCode(err, response.ErrCodeForbidden)
		},
		genAnyStatus, gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestProperty_RejectNeedsReason(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("blank reasons are validation errors", prop.ForAll(
		func(spaces int, scope domain.ScopeType) bool {
			blank := ""
			for i := 0; i < spaces; i++ {
				blank += " "
			}
			_, err := Apply(State{Scope: scope, Status: domain.StatusWaitingForApproval, Progress: 100}, admin, Action{Kind: ActionReject, Note: blank})
			return hasCode(err, response.ErrCodeValidation)
		},
		gen.IntRange(0, 5), genScope,
	))

	properties.Property("a reason sends work back with the reason as note", prop.ForAll(
		func(reason string, scope domain.ScopeType) bool {
			out, err := Apply(State{Scope: scope, Status: domain.StatusWaitingForApproval, Progress: 100}, admin, Action{Kind: ActionReject, Note: reason})
			return err == nil &&
				out.Status == domain.StatusInProgress &&
				out.AppendRecord &&
				out.RecordNote == reason
		},
		gen.Identifier(), genScope,
	))

	properties.TestingRun(t)
}
