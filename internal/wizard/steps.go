package wizard

import "github.com/livingtrust/livingtrust/pkg/domain"

// Prompt is the label and example text shown for a draft field.
type Prompt struct {
	Label       string
	Placeholder string
	Multiline   bool
}

var prompts = map[domain.Field]Prompt{
	domain.FieldTrustName:        {Label: "Trust Name *", Placeholder: "e.g., Smith Family Living Trust"},
	domain.FieldTrustType:        {Label: "Trust Type * (revocable/irrevocable)", Placeholder: "revocable"},
	domain.FieldGrantorName:      {Label: "Your Full Legal Name *", Placeholder: "John Doe"},
	domain.FieldGrantorAddress:   {Label: "Your Address *", Placeholder: "123 Main Street, City, State, ZIP"},
	domain.FieldBeneficiaries:    {Label: "Who will inherit from this Trust? *", Placeholder: "- Jane Smith (Daughter)", Multiline: true},
	domain.FieldSuccessorTrustee: {Label: "Who will manage the Trust after you? *", Placeholder: "Name and relationship"},
	domain.FieldAssets:           {Label: "Initial Assets (Optional)", Placeholder: "List any initial assets to include in the trust", Multiline: true},
	domain.FieldNotes:            {Label: "Additional Notes", Placeholder: "Any special instructions or requests", Multiline: true},
}

// PromptFor returns the prompt of a field.
func PromptFor(f domain.Field) Prompt {
	if p, ok := prompts[f]; ok {
		return p
	}
	return Prompt{Label: f.Label()}
}

const successorTrusteeInfo = "A successor trustee takes over managing the trust if you become incapacitated or after your passing. " +
	"This should be someone you trust deeply, like a spouse, adult child, or close family member."

// steps is the wizard table. Validation is data, not code: Next only
// consults Required and Notice.
var steps = []domain.StepSpec{
	{
		Number:   1,
		Phase:    domain.PhaseStep1,
		Title:    "Basic Information",
		Fields:   []domain.Field{domain.FieldTrustName, domain.FieldTrustType},
		Required: domain.FieldTrustName,
		Notice:   "Please enter a Trust Name to continue.",
	},
	{
		Number:   2,
		Phase:    domain.PhaseStep2,
		Title:    "Grantor Information",
		Fields:   []domain.Field{domain.FieldGrantorName, domain.FieldGrantorAddress},
		Required: domain.FieldGrantorName,
		Notice:   "Please enter the Grantor Name to continue.",
	},
	{
		Number:   3,
		Phase:    domain.PhaseStep3,
		Title:    "Beneficiaries",
		Fields:   []domain.Field{domain.FieldBeneficiaries},
		Required: domain.FieldBeneficiaries,
		Notice:   "Please add at least one Beneficiary to continue.",
	},
	{
		Number: 4,
		Phase:  domain.PhaseStep4,
		Title:  "Successor Trustee",
		Fields: []domain.Field{domain.FieldSuccessorTrustee},
		Info:   successorTrusteeInfo,
	},
	{
		Number: 5,
		Phase:  domain.PhaseStep5,
		Title:  "Assets & Review",
		Fields: []domain.Field{domain.FieldAssets, domain.FieldNotes},
	},
}

// Steps returns a copy of the step table.
func Steps() []domain.StepSpec {
	out := make([]domain.StepSpec, len(steps))
	for i, s := range steps {
		s.Fields = append([]domain.Field(nil), s.Fields...)
		out[i] = s
	}
	return out
}

// StepFor returns the spec of a form phase.
func StepFor(p domain.Phase) (domain.StepSpec, bool) {
	n, ok := p.Step()
	if !ok {
		return domain.StepSpec{}, false
	}
	return steps[n-1], true
}
