// Package graph draws the wizard step machine as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"

	"github.com/livingtrust/livingtrust/pkg/domain"
)

// Overlay contains session state to highlight on the graph.
type Overlay struct {
	Visited []domain.Phase
	Current domain.Phase
}

// OverlayOf builds an Overlay from a session snapshot.
func OverlayOf(s *domain.WizardState) *Overlay {
	if s == nil {
		return nil
	}
	return &Overlay{Visited: s.History, Current: s.Phase}
}

// GenerateMermaid produces a flowchart of the steps, the confirmation
// prompt and the submitted state. Shapes:
//   - form step: [Rectangle]
//   - confirmation: {Rhombus}
//   - submitted: ((Circle))
//
// Forward edges name the required field, if any.
func GenerateMermaid(steps []domain.StepSpec, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, s := range steps {
		fmt.Fprintf(&sb, "    %s[\"%d. %s\"]\n", s.Phase, s.Number, escape(s.Title))
	}
	fmt.Fprintf(&sb, "    %s{\"%s\"}\n", domain.PhaseConfirming, "Create Your Living Trust?")
	fmt.Fprintf(&sb, "    %s((\"Submitted\"))\n", domain.PhaseSubmitted)

	for i, s := range steps {
		to := domain.PhaseConfirming
		if i+1 < len(steps) {
			to = steps[i+1].Phase
		}
		label := "Next"
		if s.Required != "" {
			label = "Next: " + s.Required.Label() + " required"
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", s.Phase, escape(label), to)
		if i > 0 {
			fmt.Fprintf(&sb, "    %s -. \"Back\" .-> %s\n", s.Phase, steps[i-1].Phase)
		}
	}
	if len(steps) > 0 {
		last := steps[len(steps)-1].Phase
		fmt.Fprintf(&sb, "    %s -. \"No\" .-> %s\n", domain.PhaseConfirming, last)
	}
	fmt.Fprintf(&sb, "    %s -- \"Yes\" --> %s\n", domain.PhaseConfirming, domain.PhaseSubmitted)
	fmt.Fprintf(&sb, "    %s -- \"Submission failed\" --> %s\n", domain.PhaseConfirming, domain.PhaseConfirming)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.Phase]bool)
		for _, p := range overlay.Visited {
			if seen[p] || !p.Valid() || p == overlay.Current {
				continue
			}
			seen[p] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", p)
		}
		if overlay.Current.Valid() {
			fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
