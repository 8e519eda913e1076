package executors

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/yurifrl/kakeibu/pkg/plan"
)

// Change is what applying a plan would do to one account.
type Change struct {
	AccountID string
	ToCreate  int
	InSync    int
}

var (
	syncedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	addedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
)

// Plan reconciles the plan's statements with YNAB and prints a preview. Nothing
// is written to YNAB.
func (e *Executor) Plan(p *plan.Plan) ([]Change, error) {
	e.logger.Debug("planning", "statements", len(p.Statements))

	_, reports, err := e.reconcile(p)
	if err != nil {
		return nil, err
	}

	changes := make([]Change, 0, len(reports))
	for _, ar := range reports {
		fmt.Fprintf(e.out, "account %s\n", ar.accountID)
		for _, m := range ar.report.Items {
			remoteID := "xxxxxxxxxxxxxxxx"
			style, prefix := addedStyle, "+ "
			if m.Status == Synced {
				remoteID = m.RemoteCustomID()
				style, prefix = syncedStyle, "= "
			}
			line := fmt.Sprintf("%s | %-20s | %s | %s | ¥%.0f", m.Local.Date(), m.Local.ShopName(), m.Local.ID(), remoteID, m.Local.Signed())
			fmt.Fprintln(e.out, style.Render(prefix+line))
		}
		changes = append(changes, Change{AccountID: ar.accountID, ToCreate: ar.report.MissingCount(), InSync: ar.report.InSyncCount()})
	}

	for _, c := range changes {
		if c.ToCreate == 0 {
			fmt.Fprintf(e.out, "\nPlan: account %s, all %d transaction(s) are in sync\n", c.AccountID, c.InSync)
		} else {
			fmt.Fprintf(e.out, "\nPlan: account %s, %d transaction(s) will be added, %d already in sync\n", c.AccountID, c.ToCreate, c.InSync)
		}
	}
	return changes, nil
}
