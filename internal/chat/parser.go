// Package chat turns short free-text messages such as "12 reais groceries"
// into draft transactions, and keeps the session transcript.
package chat

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"calcula/internal/core"
)

var (
	ErrNotUnderstood = errors.New("message not understood")
	ErrNoCategories  = errors.New("no category to file the transaction under")
)

// fallbackDescription is used when neither words nor a category name remain.
const fallbackDescription = "Transaction"

var (
	amountPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:reais?|r\$|real)?`)
	datePattern   = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	wordSplit     = regexp.MustCompile(`[,\s]+`)

	currencyWords = map[string]bool{"reais": true, "real": true, "r$": true}
)

// Parse reads one message. The first number is the amount, a D/M/YYYY
// date overrides today, and the first category whose name appears in the
// text decides both the category and the kind; without one, the first
// expense category is used. The returned transaction has no ID.
func Parse(input string, categories []core.Category, today core.Date) (core.Transaction, error) {
	text := strings.ToLower(strings.TrimSpace(input))

	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return core.Transaction{}, ErrNotUnderstood
	}
	d, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: amount %q", ErrNotUnderstood, m[1])
	}
	amount, err := core.MoneyFromDecimalChecked(d)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrNotUnderstood, err)
	}

	date := today
	if d := datePattern.FindStringSubmatch(text); d != nil {
		date = core.Date(fmt.Sprintf("%s-%s-%s", d[3], pad2(d[2]), pad2(d[1])))
	}

	cat, ok := matchCategory(text, categories)
	if !ok {
		return core.Transaction{}, ErrNoCategories
	}

	return core.Transaction{
		Kind:        cat.Kind,
		Date:        date,
		Category:    cat.ID,
		Description: describe(text, cat),
		Amount:      amount,
	}, nil
}

func matchCategory(text string, categories []core.Category) (core.Category, bool) {
	for _, c := range categories {
		if c.Name != "" && strings.Contains(text, strings.ToLower(c.Name)) {
			return c, true
		}
	}
	for _, c := range categories {
		if c.Kind == core.KindExpense {
			return c, true
		}
	}
	return core.Category{}, false
}

// describe keeps up to three words that are not numbers, currency words
// or pieces of the category name.
func describe(text string, cat core.Category) string {
	name := strings.ToLower(cat.Name)
	var words []string
	for _, w := range wordSplit.Split(text, -1) {
		if w == "" || startsWithDigit(w) || currencyWords[w] || strings.Contains(name, w) {
			continue
		}
		words = append(words, w)
		if len(words) == 3 {
			break
		}
	}

	desc := strings.Join(words, " ")
	if desc == "" {
		desc = cat.Name
	}
	if desc == "" {
		desc = fallbackDescription
	}
	return capitalize(desc)
}

func startsWithDigit(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsDigit(r)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
