package wizard

import (
	"fmt"
	"strings"

	"github.com/livingtrust/livingtrust/pkg/domain"
)

var summaryRows = []struct {
	label string
	field domain.Field
}{
	{"Trust", domain.FieldTrustName},
	{"Type", domain.FieldTrustType},
	{"Grantor", domain.FieldGrantorName},
	{"Address", domain.FieldGrantorAddress},
	{"Beneficiaries", domain.FieldBeneficiaries},
	{"Successor Trustee", domain.FieldSuccessorTrustee},
	{"Assets", domain.FieldAssets},
	{"Notes", domain.FieldNotes},
}

// Summary renders the draft as shown on the review step, one "Label: value" line per field.
// Blank fields read "Not set".
func Summary(d domain.TrustDraft) string {
	var b strings.Builder
	for _, row := range summaryRows {
		v := strings.TrimSpace(d.Get(row.field))
		if v == "" {
			v = domain.NotSet
		}
		// Multi-line answers are indented under their label.
		v = strings.ReplaceAll(v, "\n", "\n  ")
		fmt.Fprintf(&b, "%s: %s\n", row.label, v)
	}
	return b.String()
}
