package advisor

import (
	"context"
	"strings"

	"github.com/livingtrust/livingtrust/pkg/domain"
	"github.com/livingtrust/livingtrust/pkg/ports"
)

// Topic is a canned answer keyed by case-insensitive substrings.
type Topic struct {
	Name     string
	Keywords []string
	Answer   string
}

// Topics are checked in order; the first match wins.
var Topics = []Topic{
	{
		Name:     "definition",
		Keywords: []string{"what is a living trust", "what is living trust", "what is a trust"},
		Answer: "A **Living Trust** is a legal document that:\n\n" +
			"- **Holds your assets** during your lifetime\n" +
			"- **Distributes to beneficiaries** after passing\n" +
			"- **Avoids probate** (court process)\n" +
			"- **Maintains privacy** (not public)\n\n" +
			"Would you like help creating one?",
	},
	{
		Name:     "revocable",
		Keywords: []string{"revocable", "irrevocable"},
		Answer: "**Revocable Trust:**\n- Change anytime\n- You keep control\n- No tax benefits\n\n" +
			"**Irrevocable Trust:**\n- Hard to change\n- May reduce taxes\n- Asset protection\n\n" +
			"Most people start with revocable!",
	},
	{
		Name:     "attorney",
		Keywords: []string{"attorney", "lawyer"},
		Answer: "**Do you need an attorney?**\n\n" +
			"- Simple estates can often use a well-drafted template\n" +
			"- Blended families, business interests or large estates benefit from an attorney review\n" +
			"- Laws differ by state, so a local attorney can confirm signing and notarization rules\n\n" +
			"This is general information, not legal advice.",
	},
	{
		Name:     "cost",
		Keywords: []string{"cost", "price"},
		Answer: "**Typical Costs:**\n\n| Option | Cost |\n|--------|------|\n" +
			"| DIY | $99-299 |\n| Attorney | $1,000-3,000 |\n\n" +
			"Our app can help you get started for less!",
	},
}

// FallbackAnswer is returned when no topic matches.
const FallbackAnswer = "Great question! I'm here to help with your Living Trust needs.\n\n" +
	"Try asking:\n" +
	"- \"What is a Living Trust?\"\n" +
	"- \"Revocable vs Irrevocable?\"\n" +
	"- \"Do I need an attorney?\"\n" +
	"- \"How much does it cost?\""

// Classify returns the first topic whose keyword occurs in question.
func Classify(question string) (Topic, bool) {
	q := strings.ToLower(question)
	for _, t := range Topics {
		for _, k := range t.Keywords {
			if strings.Contains(q, k) {
				return t, true
			}
		}
	}
	return Topic{}, false
}

// Offline is the deterministic advisor used without an API key.
// It never returns an error.
type Offline struct{}

var _ ports.Advisor = Offline{}

func NewOffline() Offline { return Offline{} }

func (Offline) Chat(_ context.Context, req ports.ChatRequest) (*domain.ChatReply, error) {
	answer := FallbackAnswer
	if t, ok := Classify(req.Message); ok {
		answer = t.Answer
	}
	return &domain.ChatReply{Response: answer, Sources: []string{}}, nil
}

func (Offline) Analyze(context.Context, string) (*domain.Analysis, error) {
	return CannedAnalysis(), nil
}

// CannedAnalysis is the fixed review returned in offline mode.
func CannedAnalysis() *domain.Analysis {
	return &domain.Analysis{
		Score: 85,
		Issues: []domain.Issue{
			{
				Severity:   domain.SeverityMedium,
				Text:       "Missing successor trustee signature line",
				Suggestion: "Add signature line for successor trustee",
			},
			{
				Severity:   domain.SeverityLow,
				Text:       "Beneficiary designation could be more specific",
				Suggestion: "Add more details about distribution",
			},
		},
		Recommendations: []string{
			"Add proper notarization statement",
			"Include tax identification number",
			"Consider adding disability provisions",
		},
		Summary: "Your Living Trust is well-structured with minor areas for improvement.",
	}
}
