package executors

import (
	"fmt"
	"sort"

	"github.com/brunomvsouza/ynab.go/api/transaction"

	"github.com/yurifrl/kakeibu/pkg/compare"
	"github.com/yurifrl/kakeibu/pkg/models"
	"github.com/yurifrl/kakeibu/pkg/ynab"
)

// Status indicates the reconciliation result for a local transaction.
type Status int

const (
	Synced Status = iota
	ToAdd
)

// Entry links a local transaction with its remote counterpart (if any) and
// records the reconciliation status.
type Entry struct {
	Local  *models.Transaction
	Remote *ynab.Transaction // nil when status == ToAdd
	Status Status
}

// RemoteCustomID returns the remote CustomID when present.
func (e Entry) RemoteCustomID() string {
	if e.Remote == nil {
		return ""
	}
	return e.Remote.CustomID()
}

type Report struct {
	Items  []Entry
	toSync []*models.Transaction
}

// BuildReport matches local transactions against the remote ones, by the
// custom id carried in the memo or by date, payee and amount. A remote
// transaction matches at most one local one.
func BuildReport(local []*models.Transaction, remote []*ynab.Transaction, useCustomID bool) *Report {
	items := make([]Entry, 0, len(local))
	toSync := make([]*models.Transaction, 0)

	var find func(lt *models.Transaction) *ynab.Transaction
	if useCustomID {
		idx := make(map[string]*ynab.Transaction, len(remote))
		for _, rt := range remote {
			if id := rt.CustomID(); id != "" {
				idx[id] = rt
			}
		}
		find = func(lt *models.Transaction) *ynab.Transaction { return idx[lt.ID()] }
	} else {
		used := make(map[*ynab.Transaction]bool, len(remote))
		find = func(lt *models.Transaction) *ynab.Transaction {
			for _, rt := range remote {
				if !used[rt] && compare.Equal(lt, rt) {
					used[rt] = true
					return rt
				}
			}
			return nil
		}
	}

	for _, lt := range local {
		found := find(lt)
		status := ToAdd
		if found != nil {
			status = Synced
		}
		items = append(items, Entry{Local: lt, Remote: found, Status: status})
		if status == ToAdd {
			toSync = append(toSync, lt)
		}
	}

	return &Report{Items: items, toSync: toSync}
}

// InSyncCount returns how many local transactions already exist remotely.
func (r *Report) InSyncCount() int {
	return len(r.Items) - len(r.toSync)
}

// MissingCount returns how many local transactions still need to be created.
func (r *Report) MissingCount() int {
	return len(r.toSync)
}

// TransactionsToSync returns the subset of local transactions missing remotely.
func (r *Report) TransactionsToSync() []*models.Transaction {
	return r.toSync
}

// Payloads converts the transactions that still need syncing into YNAB API payloads.
func (r *Report) Payloads(accountID string) ([]transaction.PayloadTransaction, error) {
	out := make([]transaction.PayloadTransaction, 0, len(r.toSync))
	for _, lt := range r.toSync {
		p, err := ynab.Payload(accountID, lt)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", lt.ID(), err)
		}
		out = append(out, p)
	}
	return out, nil
}

func sortReports(reports []accountReport) {
	sort.Slice(reports, func(i, j int) bool { return reports[i].accountID < reports[j].accountID })
}
