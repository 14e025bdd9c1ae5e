package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrAnalysisFailed is returned for every failed trust score request:
// transport errors, bad status codes, empty replies and malformed JSON.
var ErrAnalysisFailed = errors.New("failed to analyze bank statement")

// Analysis is the model's assessment of a bank statement.
// JSON keys follow the reply contract in Rubric.
type Analysis struct {
	TrustScore            int    `json:"trustScore"`
	AccountBalance        string `json:"accountBalance"`
	TransactionRegularity string `json:"transactionRegularity"`
	IncomeStability       string `json:"incomeStability"`
	ExpenseManagement     string `json:"expenseManagement"`
	Recommendation        string `json:"recommendation"`
}

// Details serializes the explanation fields for the customer's
// trust_score_details column.
func (a *Analysis) Details() string {
	b, _ := json.Marshal(struct {
		AccountBalance        string `json:"accountBalance"`
		TransactionRegularity string `json:"transactionRegularity"`
		IncomeStability       string `json:"incomeStability"`
		ExpenseManagement     string `json:"expenseManagement"`
		Recommendation        string `json:"recommendation"`
	}{a.AccountBalance, a.TransactionRegularity, a.IncomeStability, a.ExpenseManagement, a.Recommendation})
	return string(b)
}

var replySchema = mustCompileSchema(map[string]any{
	"type": "object",
	"required": []string{
		"trustScore", "accountBalance", "transactionRegularity",
		"incomeStability", "expenseManagement", "recommendation",
	},
	"properties": map[string]any{
		"trustScore":            map[string]any{"type": "number", "minimum": 0, "maximum": 100},
		"accountBalance":        map[string]any{"type": "string"},
		"transactionRegularity": map[string]any{"type": "string"},
		"incomeStability":       map[string]any{"type": "string"},
		"expenseManagement":     map[string]any{"type": "string"},
		"recommendation":        map[string]any{"type": "string"},
	},
})

func mustCompileSchema(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("analysis.json", bytes.NewReader(b)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("analysis.json")
}

// ParseReply decodes the model's reply. A surrounding ```json or ``` fence
// is ignored. Replies that are not JSON or miss a field wrap ErrAnalysisFailed.
func ParseReply(content string) (*Analysis, error) {
	cleaned := stripFence(content)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrAnalysisFailed)
	}

	var v any
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return nil, fmt.Errorf("%w: reply is not JSON: %v", ErrAnalysisFailed, err)
	}
	if err := replySchema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: reply does not match schema: %v", ErrAnalysisFailed, err)
	}

	var raw struct {
		TrustScore            float64 `json:"trustScore"`
		AccountBalance        string  `json:"accountBalance"`
		TransactionRegularity string  `json:"transactionRegularity"`
		IncomeStability       string  `json:"incomeStability"`
		ExpenseManagement     string  `json:"expenseManagement"`
		Recommendation        string  `json:"recommendation"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	return &Analysis{
		TrustScore:            int(math.Round(raw.TrustScore)),
		AccountBalance:        raw.AccountBalance,
		TransactionRegularity: raw.TransactionRegularity,
		IncomeStability:       raw.IncomeStability,
		ExpenseManagement:     raw.ExpenseManagement,
		Recommendation:        raw.Recommendation,
	}, nil
}

func stripFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
