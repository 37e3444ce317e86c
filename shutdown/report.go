package shutdown

import (
	"errors"
	"strconv"

	kiterrors "github.com/vinayprograms/gracekit/errors"
)

// Report is the serialisable summary of one shutdown cycle.
type Report struct {
	CycleID    string                      `json:"cycle_id"`
	Status     string                      `json:"status"`
	Registered int                         `json:"registered"`
	Reported   int                         `json:"reported"`
	Stragglers int                         `json:"stragglers"`
	Duration   string                      `json:"duration"`
	Counts     map[kiterrors.ErrorCode]int `json:"counts,omitempty"`
	Errors     []*kiterrors.Error          `json:"errors,omitempty"`
}

// Report converts the result into a Report. Every aggregated error becomes
// a coded error; worker failures carry the worker ID.
func (r *ShutdownResult) Report() Report {
	rep := Report{
		CycleID:    r.CycleID,
		Status:     "clean",
		Registered: r.Registered,
		Reported:   len(r.Results),
		Stragglers: r.Stragglers,
		Duration:   r.TotalDuration.String(),
	}
	if !r.Failed() {
		return rep
	}

	rep.Status = "failed"
	rep.Counts = kiterrors.CountByCode(r.Errors)
	rep.Errors = make([]*kiterrors.Error, 0, len(r.Errors))
	for _, err := range r.Errors {
		rep.Errors = append(rep.Errors, reportError(err))
	}
	return rep
}

func reportError(err error) *kiterrors.Error {
	var we *WorkerError
	if errors.As(err, &we) {
		msg := kiterrors.ErrCodeWorkerFailed.Description()
		if kiterrors.Code(we.Err) == "" {
			return kiterrors.WrapWithCode(we.Err, kiterrors.ErrCodeWorkerFailed, msg, kiterrors.WithWorkerID(we.WorkerID))
		}
		return kiterrors.Wrap(we.Err, msg, kiterrors.WithWorkerID(we.WorkerID))
	}

	var te *TimeoutError
	if errors.As(err, &te) {
		return kiterrors.New(kiterrors.ErrCodeTimeout, te.Error(),
			kiterrors.WithMetadata("remaining", strconv.Itoa(te.Remaining)),
			kiterrors.WithMetadata("timeout", te.Timeout.String()))
	}

	return kiterrors.Wrap(err, kiterrors.Code(err).Description())
}
