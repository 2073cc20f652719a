package services

import (
	"fmt"
	"regexp"
	"sort"

	"budget/internal/models"
)

var loanNumberRe = regexp.MustCompile(`(?i)loan\s*N\s*(\d+)`)

// ExtractLoanNumber pulls the bank-assigned loan number from a narration
// like "Loan repayment ... Loan N 88214".
func ExtractLoanNumber(narration string) (string, bool) {
	match := loanNumberRe.FindStringSubmatch(narration)
	if match == nil {
		return "", false
	}
	return match[1], true
}

type loanState struct {
	RemainingMinor int64
	Repaid         bool
	LoanNumber     *string
}

type reconcilePlan struct {
	// loanStates holds the post-reconciliation fields for every loan.
	loanStates map[string]loanState
	// links maps repayment/interest transaction ids to their loan.
	links map[string]string

	repaymentsLinked int
	interestLinked   int
	loansUnpaid      int
}

// buildReconcilePlan computes the full reset-and-rematch outcome without
// touching storage: every loan goes back to its disbursement amount with the
// repaid flag and loan number cleared, then disbursements and repayments are
// grouped by (currency, amount) and paired positionally up to the shorter
// list. Positional pairing is a heuristic: two same-amount loans repaid in a
// different order than they were taken out can swap.
func buildReconcilePlan(loans []models.Loan, disbursements, repayments, interest []models.Transaction) reconcilePlan {
	plan := reconcilePlan{
		loanStates: make(map[string]loanState, len(loans)),
		links:      make(map[string]string),
	}

	loansByID := make(map[string]models.Loan, len(loans))
	for _, loan := range loans {
		loansByID[loan.ID] = loan
		plan.loanStates[loan.ID] = loanState{RemainingMinor: loan.RemainingMinor}
	}
	// reset each loan to the amount of its original disbursement
	for _, d := range disbursements {
		if d.LoanID == nil {
			continue
		}
		if _, ok := loansByID[*d.LoanID]; !ok {
			continue
		}
		plan.loanStates[*d.LoanID] = loanState{RemainingMinor: d.AmountMinor}
	}

	disbGroups := groupByCurrencyAmount(disbursements)
	repayGroups := groupByCurrencyAmount(repayments)

	numberToLoan := make(map[string]string)
	for _, key := range sortedGroupKeys(disbGroups) {
		group := disbGroups[key]
		matching := repayGroups[key]
		for i := 0; i < len(group) && i < len(matching); i++ {
			disbursement := group[i]
			repayment := matching[i]
			if disbursement.LoanID == nil {
				continue
			}
			loanID := *disbursement.LoanID
			state, ok := plan.loanStates[loanID]
			if !ok {
				continue
			}
			plan.links[repayment.ID] = loanID
			plan.repaymentsLinked++
			state.Repaid = true
			state.RemainingMinor = 0
			if repayment.Narration != nil {
				if number, ok := ExtractLoanNumber(*repayment.Narration); ok {
					state.LoanNumber = &number
					numberToLoan[number] = loanID
				}
			}
			plan.loanStates[loanID] = state
		}
	}

	for _, t := range interest {
		if t.Narration == nil {
			continue
		}
		number, ok := ExtractLoanNumber(*t.Narration)
		if !ok {
			continue
		}
		loanID, ok := numberToLoan[number]
		if !ok {
			continue
		}
		plan.links[t.ID] = loanID
		plan.interestLinked++
	}

	for _, state := range plan.loanStates {
		if !state.Repaid {
			plan.loansUnpaid++
		}
	}
	return plan
}

func groupByCurrencyAmount(transactions []models.Transaction) map[string][]models.Transaction {
	groups := make(map[string][]models.Transaction)
	for _, t := range transactions {
		key := fmt.Sprintf("%s|%d", t.Currency, t.AmountMinor)
		groups[key] = append(groups[key], t)
	}
	return groups
}

func sortedGroupKeys(groups map[string][]models.Transaction) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
