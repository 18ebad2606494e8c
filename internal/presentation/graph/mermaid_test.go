package graph_test

import (
	"strings"
	"testing"

	"github.com/livingtrust/livingtrust/internal/presentation/graph"
	"github.com/livingtrust/livingtrust/internal/wizard"
	"github.com/livingtrust/livingtrust/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	got := graph.GenerateMermaid(wizard.Steps(), nil)

	for _, want := range []string{
		"graph TD\n",
		`step1["1. Basic Information"]`,
		`step1 -- "Next: Trust Name required" --> step2`,
		`step4 -- "Next" --> step5`,
		`step2 -. "Back" .-> step1`,
		`step5 -- "Next" --> confirming`,
		`confirming{"Create Your Living Trust?"}`,
		`confirming -- "Yes" --> submitted`,
		`confirming -. "No" .-> step5`,
		`submitted(("Submitted"))`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q\ngot:\n%s", want, got)
		}
	}
	if strings.Contains(got, "classDef") {
		t.Error("no overlay styles expected without an overlay")
	}
	if strings.Contains(got, "step1 -. \"Back\"") {
		t.Error("first step has no back edge")
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	s := domain.NewWizardState("s")
	s.History = []domain.Phase{domain.PhaseStep1, domain.PhaseStep2, domain.PhaseStep1, domain.PhaseStep2, domain.PhaseStep3}
	s.Phase = domain.PhaseStep3

	got := graph.GenerateMermaid(wizard.Steps(), graph.OverlayOf(s))

	if n := strings.Count(got, "class step1 visited;"); n != 1 {
		t.Errorf("visited step1 styled %d times, want 1", n)
	}
	if !strings.Contains(got, "class step2 visited;") {
		t.Error("missing visited style for step2")
	}
	if !strings.Contains(got, "class step3 current;") {
		t.Error("missing current style for step3")
	}
	if strings.Contains(got, "class step3 visited;") {
		t.Error("current phase must not also be styled visited")
	}
}
