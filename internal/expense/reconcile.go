package expense

import "github.com/frahmantamala/workforce-portal/internal/ledger"

// Reconcile derives a report status from the statuses of its lines.
//
// Precedence, first match wins:
//  1. every line draft    -> draft
//  2. every line approved -> approved
//  3. any line rejected   -> rejected
//  4. any line submitted  -> submitted
//  5. otherwise           -> draft
//
// An empty report is draft. The result depends only on the multiset of statuses.
func Reconcile(statuses []ledger.Status) ledger.Status {
	counts := make(map[ledger.Status]int, 4)
	for _, s := range statuses {
		counts[s]++
	}
	n := len(statuses)

	switch {
	case counts[ledger.StatusDraft] == n:
		return ledger.StatusDraft
	case counts[ledger.StatusApproved] == n:
		return ledger.StatusApproved
	case counts[ledger.StatusRejected] > 0:
		return ledger.StatusRejected
	case counts[ledger.StatusSubmitted] > 0:
		return ledger.StatusSubmitted
	default:
		return ledger.StatusDraft
	}
}
