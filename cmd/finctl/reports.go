package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"finora/internal/learning"
	"finora/internal/metrics"
	"finora/internal/models"
	"finora/internal/storage"

	"github.com/google/subcommands"
)

// output holds the writers a command reports to.
type output struct {
	out    io.Writer
	errOut io.Writer
}

func (o output) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(o.errOut, err)
	return subcommands.ExitFailure
}

type summaryCmd struct {
	account
	date string
	output
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print totals, budget status and spending by category" }
func (*summaryCmd) Usage() string {
	return `finctl summary -email <email> [-db <db_path>] [-date <YYYY-MM-DD>]

  Prints income, expenses, net savings, debt and net worth, the state of the
  monthly budget as of -date (defaults to today), and the expense breakdown.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	c.account.SetFlags(f)
	f.StringVar(&c.date, "date", "", "Reference date for the budget (defaults to today)")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref := time.Now()
	if c.date != "" {
		d, err := models.ParseDate("date", c.date)
		if err != nil {
			return c.fail(err)
		}
		ref = d
	}

	db, user, err := c.open(ctx)
	if err != nil {
		return c.fail(err)
	}
	defer db.Close()

	txs, err := db.ListTransactions(ctx, user.ID)
	if err != nil {
		return c.fail(err)
	}
	budget, err := db.GetBudget(ctx, user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		budget, err = nil, nil
	}
	if err != nil {
		return c.fail(err)
	}
	debts, err := db.ListDebts(ctx, user.ID)
	if err != nil {
		return c.fail(err)
	}

	s := metrics.Summarize(txs, budget, debts, ref)
	money := func(v float64) string { return metrics.FormatMoney(v, user.Currency) }

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Account\t%s <%s>\n", user.Name, user.Email)
	fmt.Fprintf(w, "Income\t%s\n", money(s.TotalIncome))
	fmt.Fprintf(w, "Expenses\t%s\n", money(s.TotalExpense))
	fmt.Fprintf(w, "Net savings\t%s\n", money(s.NetSavings))
	fmt.Fprintf(w, "Debt\t%s\n", money(s.TotalDebt))
	fmt.Fprintf(w, "Net worth\t%s\n", money(s.NetWorth))
	if s.Budget != nil {
		fmt.Fprintf(w, "Budget\t%s of %s (%.0f%%)\n", money(s.Budget.Spent), money(s.Budget.Limit), s.Budget.Percent)
		fmt.Fprintf(w, "Safe to spend\t%s/day for %d days\n", money(s.Budget.DailySafeSpend), s.Budget.DaysRemaining)
	}
	for _, share := range s.Breakdown {
		fmt.Fprintf(w, "  %s\t%s\t%.1f%%\n", share.Category, money(share.Amount), share.Percent)
	}
	if err := w.Flush(); err != nil {
		return c.fail(err)
	}
	return subcommands.ExitSuccess
}

type snowballCmd struct {
	account
	output
}

func (*snowballCmd) Name() string     { return "snowball" }
func (*snowballCmd) Synopsis() string { return "print the debt repayment plan, smallest balance first" }
func (*snowballCmd) Usage() string {
	return `finctl snowball -email <email> [-db <db_path>]

  Lists debts in snowball order with their amortized monthly payment.
`
}

func (c *snowballCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, user, err := c.open(ctx)
	if err != nil {
		return c.fail(err)
	}
	defer db.Close()

	debts, err := db.ListDebts(ctx, user.ID)
	if err != nil {
		return c.fail(err)
	}
	if len(debts) == 0 {
		fmt.Fprintln(c.out, "No debts.")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tLoan\tRemaining\tMonthly\tPaid")
	for i, p := range metrics.Snowball(debts) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.0f%%\n", i+1, p.LoanName,
			metrics.FormatMoney(p.RemainingAmount, user.Currency),
			metrics.FormatMoney(p.MonthlyPayment, user.Currency),
			p.PaidPercent)
	}
	fmt.Fprintf(w, "\tTotal\t%s\t\t\n", metrics.FormatMoney(metrics.TotalDebt(debts), user.Currency))
	if err := w.Flush(); err != nil {
		return c.fail(err)
	}
	return subcommands.ExitSuccess
}

type lessonsCmd struct {
	account
	output
}

func (*lessonsCmd) Name() string     { return "lessons" }
func (*lessonsCmd) Synopsis() string { return "print course progress" }
func (*lessonsCmd) Usage() string {
	return `finctl lessons -email <email> [-db <db_path>]

  Lists the lessons of the course, marking the ones completed.
`
}

func (c *lessonsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	catalog, err := learning.DefaultCatalog()
	if err != nil {
		return c.fail(err)
	}
	db, user, err := c.open(ctx)
	if err != nil {
		return c.fail(err)
	}
	defer db.Close()

	progress, err := db.GetProgress(ctx, user.ID)
	if err != nil {
		return c.fail(err)
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	for _, l := range catalog.Lessons() {
		mark := " "
		if progress.HasCompleted(l.ID) {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s]\t%s\t%s\t%d min\n", mark, l.Title, l.Category, l.DurationMinutes)
	}
	fmt.Fprintf(w, "\n%d%% complete, %d points\n",
		metrics.CourseCompletionPercent(len(progress.CompletedLessonIDs), catalog.Len()), progress.QuizScore)
	if err := w.Flush(); err != nil {
		return c.fail(err)
	}
	return subcommands.ExitSuccess
}
