package domain

import (
	"fmt"
	"strings"
)

// TrustType distinguishes whether the grantor may amend the trust after creation.
type TrustType string

const (
	TrustRevocable   TrustType = "revocable"
	TrustIrrevocable TrustType = "irrevocable"
)

// ParseTrustType normalizes user input into a TrustType.
func ParseTrustType(s string) (TrustType, error) {
	switch TrustType(strings.ToLower(strings.TrimSpace(s))) {
	case TrustRevocable:
		return TrustRevocable, nil
	case TrustIrrevocable:
		return TrustIrrevocable, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTrustType, s)
}

// Field names a single TrustDraft field. Values match the JSON keys.
type Field string

const (
	FieldTrustName        Field = "trustName"
	FieldTrustType        Field = "trustType"
	FieldGrantorName      Field = "grantorName"
	FieldGrantorAddress   Field = "grantorAddress"
	FieldBeneficiaries    Field = "beneficiaries"
	FieldSuccessorTrustee Field = "successorTrustee"
	FieldAssets           Field = "assets"
	FieldNotes            Field = "notes"
)

// Fields lists every draft field in wizard order.
var Fields = []Field{
	FieldTrustName,
	FieldTrustType,
	FieldGrantorName,
	FieldGrantorAddress,
	FieldBeneficiaries,
	FieldSuccessorTrustee,
	FieldAssets,
	FieldNotes,
}

// ParseField resolves a field name, accepting any letter case.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Label is the human-readable name used in prompts and notices.
func (f Field) Label() string {
	switch f {
	case FieldTrustName:
		return "Trust Name"
	case FieldTrustType:
		return "Trust Type"
	case FieldGrantorName:
		return "Grantor Name"
	case FieldGrantorAddress:
		return "Grantor Address"
	case FieldBeneficiaries:
		return "Beneficiaries"
	case FieldSuccessorTrustee:
		return "Successor Trustee"
	case FieldAssets:
		return "Initial Assets"
	case FieldNotes:
		return "Additional Notes"
	}
	return string(f)
}

// TrustDraft is the form built by the wizard.
// It has no identity: the submission gateway assigns one.
type TrustDraft struct {
	TrustName        string    `json:"trustName"`
	TrustType        TrustType `json:"trustType"`
	GrantorName      string    `json:"grantorName"`
	GrantorAddress   string    `json:"grantorAddress"`
	Beneficiaries    string    `json:"beneficiaries"`
	SuccessorTrustee string    `json:"successorTrustee"`
	Assets           string    `json:"assets"`
	Notes            string    `json:"notes"`
}

// NewDraft returns an empty draft with the default trust type.
func NewDraft() TrustDraft {
	return TrustDraft{TrustType: TrustRevocable}
}

// Get returns the raw value of a field.
func (d TrustDraft) Get(f Field) string {
	switch f {
	case FieldTrustName:
		return d.TrustName
	case FieldTrustType:
		return string(d.TrustType)
	case FieldGrantorName:
		return d.GrantorName
	case FieldGrantorAddress:
		return d.GrantorAddress
	case FieldBeneficiaries:
		return d.Beneficiaries
	case FieldSuccessorTrustee:
		return d.SuccessorTrustee
	case FieldAssets:
		return d.Assets
	case FieldNotes:
		return d.Notes
	}
	return ""
}

// Set returns a copy of the draft with a single field replaced.
// Free-text values are stored as given; only the trust type is normalized.
func (d TrustDraft) Set(f Field, value string) (TrustDraft, error) {
	switch f {
	case FieldTrustName:
		d.TrustName = value
	case FieldTrustType:
		tt, err := ParseTrustType(value)
		if err != nil {
			return d, err
		}
		d.TrustType = tt
	case FieldGrantorName:
		d.GrantorName = value
	case FieldGrantorAddress:
		d.GrantorAddress = value
	case FieldBeneficiaries:
		d.Beneficiaries = value
	case FieldSuccessorTrustee:
		d.SuccessorTrustee = value
	case FieldAssets:
		d.Assets = value
	case FieldNotes:
		d.Notes = value
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return d, nil
}

// Filled reports whether a field holds something other than whitespace.
func (d TrustDraft) Filled(f Field) bool {
	return strings.TrimSpace(d.Get(f)) != ""
}

// Values returns the draft as a field-name map.
func (d TrustDraft) Values() map[string]string {
	out := make(map[string]string, len(Fields))
	for _, f := range Fields {
		out[string(f)] = d.Get(f)
	}
	return out
}
