package submission

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mohdshetty/grap/core"
)

type Status string

const (
	StatusNotSubmitted    Status = "Not Submitted"
	StatusDraft           Status = "Draft"
	StatusPending         Status = "Pending"
	StatusApproved        Status = "Approved"
	StatusNeedsCorrection Status = "Needs Correction"
)

var AllStatuses = []Status{StatusNotSubmitted, StatusDraft, StatusPending, StatusApproved, StatusNeedsCorrection}

func (s Status) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// transitions lists the moves out of each status. Re-setting the current status is always allowed.
var transitions = map[Status][]Status{
	StatusNotSubmitted:    {StatusDraft, StatusPending},
	StatusDraft:           {StatusPending},
	StatusPending:         {StatusApproved, StatusNeedsCorrection},
	StatusNeedsCorrection: {StatusDraft, StatusPending},
	StatusApproved:        {StatusPending},
}

// CanTransition reports whether a submission may move from `from` to `to`.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SubmitterStatuses are the statuses an HOD may write along with data.
func SubmitterStatuses() []Status { return []Status{StatusDraft, StatusPending} }

// ReviewerStatuses are the statuses a reviewer may set.
func ReviewerStatuses() []Status { return []Status{StatusPending, StatusApproved, StatusNeedsCorrection} }

func statusIn(s Status, list []Status) bool {
	for _, st := range list {
		if s == st {
			return true
		}
	}
	return false
}

func IsSubmitterStatus(s Status) bool { return statusIn(s, SubmitterStatuses()) }
func IsReviewerStatus(s Status) bool  { return statusIn(s, ReviewerStatuses()) }

// Rule is the role a write is made for. Service checks it against the current status
// in the same critical section as the write.
type Rule int

const (
	RuleNone      Rule = iota // any valid status
	RuleSubmitter             // SubmitterStatuses, following CanTransition
	RuleReviewer              // ReviewerStatuses, following CanTransition
	RuleAdmin                 // any status but Not Submitted, regardless of the current one
)

var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError reports a refused status change on the status field.
func TransitionError(from, to Status) error {
	msg := fmt.Sprintf("a %q submission cannot be set to %q", from, to)
	return core.NewValidationError(ErrInvalidTransition, core.FieldError{Field: "status", Error: msg})
}

func (r Rule) check(from, to Status) error {
	var ok bool
	switch r {
	case RuleSubmitter:
		ok = IsSubmitterStatus(to) && CanTransition(from, to)
	case RuleReviewer:
		ok = IsReviewerStatus(to) && CanTransition(from, to)
	case RuleAdmin:
		ok = to != StatusNotSubmitted
	default:
		ok = true
	}
	if !ok {
		return TransitionError(from, to)
	}
	return nil
}
