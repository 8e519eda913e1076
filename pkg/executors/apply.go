package executors

import (
	"fmt"

	"github.com/yurifrl/kakeibu/pkg/plan"
)

// Apply creates in YNAB every ledger transaction of the plan that is not
// there yet.
func (e *Executor) Apply(p *plan.Plan) ([]Change, error) {
	e.logger.Debug("applying plan", "statements", len(p.Statements))

	budgetID, reports, err := e.reconcile(p)
	if err != nil {
		return nil, err
	}

	changes := make([]Change, 0, len(reports))
	for _, ar := range reports {
		toSync := ar.report.TransactionsToSync()
		e.logger.Info("transactions to create", "count", len(toSync), "account_id", ar.accountID)
		changes = append(changes, Change{AccountID: ar.accountID, ToCreate: len(toSync), InSync: ar.report.InSyncCount()})
		if len(toSync) == 0 {
			continue
		}

		batch, err := ar.report.Payloads(ar.accountID)
		if err != nil {
			return changes, err
		}
		if err := e.transactions.CreateTransactions(budgetID, batch); err != nil {
			return changes, fmt.Errorf("failed to create transactions: %w", err)
		}
		e.logger.Info("created transactions", "count", len(batch), "account_id", ar.accountID)
	}
	return changes, nil
}
