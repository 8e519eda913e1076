package executors

import (
	"fmt"
	"io"
	"os"

	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/charmbracelet/log"

	"github.com/yurifrl/kakeibu/pkg/config"
	"github.com/yurifrl/kakeibu/pkg/importer"
	"github.com/yurifrl/kakeibu/pkg/models"
	"github.com/yurifrl/kakeibu/pkg/plan"
	"github.com/yurifrl/kakeibu/pkg/ynab"
)

// TransactionAPI is the part of the YNAB transaction service the executors use.
type TransactionAPI interface {
	GetTransactionsByAccount(budgetID, accountID string) ([]*ynab.Transaction, error)
	CreateTransactions(budgetID string, payloads []transaction.PayloadTransaction) error
}

type Executor struct {
	logger       *log.Logger
	config       *config.Config
	importer     *importer.Importer
	transactions TransactionAPI
	out          io.Writer
}

func New(logger *log.Logger, config *config.Config, imp *importer.Importer, client *ynab.YNABClient) *Executor {
	return &Executor{
		logger:       logger,
		config:       config,
		importer:     imp,
		transactions: client.Transaction(),
		out:          os.Stdout,
	}
}

// accountReport is the reconciliation of one YNAB account of a plan.
type accountReport struct {
	accountID string
	report    *Report
}

// reconcile imports every statement of the plan as one batch, then compares
// each account's share of the ledger with what YNAB already holds.
func (e *Executor) reconcile(p *plan.Plan) (string, []accountReport, error) {
	budgetID := p.YNAB.BudgetID
	if budgetID == "" {
		budgetID = e.config.YNAB.BudgetID
	}
	if budgetID == "" {
		return "", nil, fmt.Errorf("plan error: no budget_id")
	}

	files, err := p.Files()
	if err != nil {
		return "", nil, err
	}
	batch, err := e.importer.Import(files, func(current, total int) {
		e.logger.Debug("imported statement", "current", current, "total", total)
	})
	if err != nil {
		return "", nil, err
	}

	byFile := make(map[string][]*models.Transaction)
	for _, tx := range batch.Transactions {
		name := tx.Original().FileName
		byFile[name] = append(byFile[name], tx)
	}

	var reports []accountReport
	for _, st := range p.Statements {
		if st.Account == "" {
			e.logger.Warn("statement has no account, not syncing", "file", st.File)
		}
	}
	for accountID, names := range p.Accounts() {
		var local []*models.Transaction
		for _, name := range names {
			local = append(local, byFile[name]...)
		}

		remote, err := e.transactions.GetTransactionsByAccount(budgetID, accountID)
		if err != nil {
			return "", nil, fmt.Errorf("failed to fetch transactions for account %s: %w", accountID, err)
		}

		report := BuildReport(local, remote, e.config.UseCustomID)
		e.logger.Debug("reconciled account", "account_id", accountID, "total", len(report.Items), "in_sync", report.InSyncCount(), "to_add", report.MissingCount())
		reports = append(reports, accountReport{accountID: accountID, report: report})
	}
	sortReports(reports)
	return budgetID, reports, nil
}
