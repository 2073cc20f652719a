package statement

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"budget/internal/models"
)

// Classification is the result of mapping a narration to a transaction kind.
// Direction is set only when the kind alone does not imply a flow.
type Classification struct {
	Type      models.TransactionType
	Direction *models.Direction
}

// Rule order matters: a loan-interest narration can also contain the word
// "payment", so loan and deposit rules are checked before the generic
// transfer and expense rules.
func Classify(narration, ownerName string) Classification {
	lowered := strings.ToLower(narration)
	switch {
	case containsAny(lowered, "loan interest", "interest accrued", "interest payment"):
		return Classification{Type: models.TypeLoanInterest}
	case containsAny(lowered, "loan disbursement", "disbursement of the loan", "granting of the loan"):
		return Classification{Type: models.TypeLoanDisbursement}
	case containsAny(lowered, "loan repayment", "repayment of the loan", "principal repayment"):
		return Classification{Type: models.TypeLoanRepayment}
	case containsAny(lowered, "deposit placement", "placement of deposit", "transfer to deposit"):
		return Classification{Type: models.TypeDepositPlacement}
	case containsAny(lowered, "withdrawal from deposit", "deposit return"):
		return Classification{Type: models.TypeDepositReturn}
	case containsAny(lowered, "currency exchange", "conversion"):
		return Classification{Type: models.TypeCurrencyExchange}
	case containsAny(lowered, "atm", "cash withdrawal"):
		return Classification{Type: models.TypeATMWithdrawal}
	case containsAny(lowered, "commission", "service fee", "sms fee"):
		return Classification{Type: models.TypeBankFee}
	case containsAny(lowered, "outgoing transfer", "transfer to account"):
		if SamePerson(counterparty(narration), ownerName) {
			return Classification{Type: models.TypeTransfer, Direction: directionPtr(models.DirectionOutflow)}
		}
		return Classification{Type: models.TypeExpense}
	case containsAny(lowered, "incoming transfer", "transfer from account", "transfer received"):
		if SamePerson(counterparty(narration), ownerName) {
			return Classification{Type: models.TypeTransfer, Direction: directionPtr(models.DirectionInflow)}
		}
		return Classification{Type: models.TypeIncome}
	case containsAny(lowered, "salary", "wage payment"):
		return Classification{Type: models.TypeIncome}
	default:
		return Classification{Type: models.TypeExpense}
	}
}

func containsAny(lowered string, phrases ...string) bool {
	for _, phrase := range phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func directionPtr(d models.Direction) *models.Direction {
	return &d
}

var (
	counterpartyRe = regexp.MustCompile(`(?i)(?:beneficiary|sender)\s*:\s*([^;,/]+)`)
	merchantRe     = regexp.MustCompile(`(?i)merchant\s*:\s*([^,;]+)(?:,\s*([^;]+))?`)
	cardRe         = regexp.MustCompile(`(?i)card\s*no\s*:?\s*\**(\d{4})`)
	mccRe          = regexp.MustCompile(`(?i)mcc\s*:?\s*(\d+)`)
	nonLetterRe    = regexp.MustCompile(`[^\p{L}]+`)
)

// counterparty extracts the labeled counter-party name from a transfer
// narration, up to the next delimiter.
func counterparty(narration string) string {
	match := counterpartyRe.FindStringSubmatch(narration)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// SamePerson reports whether two names refer to the same person: both are
// lowercased, stripped to letters and split into token sets; every token of
// the shorter set must appear in the longer one. A single-letter token is an
// initial and matches any token starting with it, so "J. Smith" matches
// "Smith John".
func SamePerson(a, b string) bool {
	tokensA := nameTokens(a)
	tokensB := nameTokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return false
	}
	shorter, longer := tokensA, tokensB
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	for _, token := range shorter {
		if !tokenInSet(token, longer) {
			return false
		}
	}
	return true
}

func nameTokens(name string) []string {
	lowered := strings.ToLower(name)
	fields := strings.Fields(nonLetterRe.ReplaceAllString(lowered, " "))
	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		tokens = append(tokens, field)
	}
	sort.Strings(tokens)
	return tokens
}

func tokenInSet(token string, set []string) bool {
	for _, candidate := range set {
		if token == candidate {
			return true
		}
		if len(token) == 1 && strings.HasPrefix(candidate, token) {
			return true
		}
		if len(candidate) == 1 && strings.HasPrefix(token, candidate) {
			return true
		}
	}
	return false
}

// ExtractMerchant pulls the merchant name and location from a labeled
// narration segment like "Merchant: Carrefour, Tbilisi;".
func ExtractMerchant(narration string) (name, city *string) {
	match := merchantRe.FindStringSubmatch(narration)
	if match == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(match[1])
	if trimmed != "" {
		name = &trimmed
	}
	if match[2] != "" {
		location := strings.TrimSpace(strings.TrimSuffix(match[2], ";"))
		if location != "" {
			city = &location
		}
	}
	return name, city
}

// ExtractCardLastFour pulls the last four card digits from "Card No: ****NNNN".
func ExtractCardLastFour(narration string) *string {
	match := cardRe.FindStringSubmatch(narration)
	if match == nil {
		return nil
	}
	return &match[1]
}

// ExtractMCC pulls the merchant-category code from "MCC: N".
func ExtractMCC(narration string) *int {
	match := mccRe.FindStringSubmatch(narration)
	if match == nil {
		return nil
	}
	code, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	return &code
}
