package ynab

import (
	"strings"

	"github.com/brunomvsouza/ynab.go"
	"github.com/brunomvsouza/ynab.go/api"
	"github.com/brunomvsouza/ynab.go/api/account"
	"github.com/brunomvsouza/ynab.go/api/budget"
	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/shopspring/decimal"

	"github.com/yurifrl/kakeibu/pkg/models"
)

// YNABClient wraps the original YNAB client and adds custom functionality
type YNABClient struct {
	client ynab.ClientServicer
}

// TransactionService wraps the original transaction service
type TransactionService struct {
	client   *YNABClient
	original *transaction.Service
}

// Transaction wraps the core YNAB transaction adding CustomID extracted from
// the memo first CSV field.
type Transaction struct {
	*transaction.Transaction
	customID string
}

// NewTransaction wraps a YNAB transaction, reading its custom id from the memo.
func NewTransaction(tx *transaction.Transaction) *Transaction {
	return &Transaction{Transaction: tx, customID: extractCustomID(tx)}
}

// Memo builds the memo pushed with a ledger transaction: the ledger id as
// first CSV field, then the category.
func Memo(tx *models.Transaction) string {
	return tx.ID() + "," + tx.Category()
}

func extractCustomID(tx *transaction.Transaction) string {
	if tx == nil || tx.Memo == nil {
		return ""
	}
	memo := strings.Trim(*tx.Memo, "\"")
	if idx := strings.Index(memo, ","); idx > 0 {
		return memo[:idx]
	}
	return ""
}

// Milliunits converts a ledger amount to YNAB milliunits, expenses negative.
func Milliunits(tx *models.Transaction) int64 {
	return decimal.NewFromFloat(tx.Signed()).Shift(3).Round(0).IntPart()
}

// Payload converts a ledger transaction into a YNAB create payload.
func Payload(accountID string, tx *models.Transaction) (transaction.PayloadTransaction, error) {
	date, err := api.DateFromString(tx.Date())
	if err != nil {
		return transaction.PayloadTransaction{}, err
	}
	payee := tx.ShopName()
	memo := Memo(tx)
	return transaction.PayloadTransaction{
		AccountID: accountID,
		Date:      date,
		Amount:    Milliunits(tx),
		Cleared:   transaction.ClearingStatusCleared,
		Approved:  true,
		PayeeName: &payee,
		Memo:      &memo,
	}, nil
}

func New(token string) *YNABClient {
	return &YNABClient{
		client: ynab.NewClient(token),
	}
}

func (c *YNABClient) Transaction() *TransactionService {
	return &TransactionService{
		client:   c,
		original: c.client.Transaction(),
	}
}

func (c *YNABClient) Budget() *budget.Service {
	return c.client.Budget()
}

func (c *YNABClient) Account() *account.Service {
	return c.client.Account()
}

func (ts *TransactionService) GetTransactionsByAccount(budgetID, accountID string) ([]*Transaction, error) {
	originalTransactions, err := ts.original.GetTransactionsByAccount(budgetID, accountID, nil)
	if err != nil {
		return nil, err
	}

	transactions := make([]*Transaction, 0, len(originalTransactions))
	for _, tx := range originalTransactions {
		transactions = append(transactions, NewTransaction(tx))
	}
	return transactions, nil
}

// CreateTransactions creates multiple transactions in one API call
func (ts *TransactionService) CreateTransactions(budgetID string, payloads []transaction.PayloadTransaction) error {
	if len(payloads) == 0 {
		return nil
	}
	_, err := ts.original.CreateTransactions(budgetID, payloads)
	return err
}

func (t *Transaction) CustomID() string {
	return t.customID
}
