package services

import "github.com/sirupsen/logrus"

// EffectResult is the outcome of one best-effort side effect (ledger
// update, badge evaluation, notification fan-out, audit record). A failed
// effect never rolls back or fails the primary mutation.
type EffectResult struct {
	Name string
	Err  error
}

// Effects collects the auxiliary effect outcomes of a mutation, keeping
// them separate from the primary result so callers and tests can assert
// primary success independent of auxiliary failures.
type Effects []EffectResult

func (e *Effects) record(name string, err error) {
	*e = append(*e, EffectResult{Name: name, Err: err})
}

// Failed returns the effects that errored.
func (e Effects) Failed() []EffectResult {
	var failed []EffectResult
	for _, r := range e {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Log writes one structured entry per failed effect.
func (e Effects) Log(log *logrus.Logger, operation string) {
	for _, r := range e.Failed() {
		log.WithFields(logrus.Fields{
			"operation": operation,
			"effect":    r.Name,
		}).WithError(r.Err).Warn("side effect failed")
	}
}
