package validation

import (
	"math/rand"
	"testing"

	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
)

func exceptionWith(severity models.Severity) Exception {
	return Exception{
		RuleId:   "TEST_RULE",
		Severity: severity,
		Category: models.ExceptionCategoryTax,
	}
}

func TestMakeDecision_SeverityGate(t *testing.T) {
	cases := []struct {
		name       string
		severities []models.Severity
		want       models.Decision
	}{
		{"no exceptions", nil, models.DecisionOkay},
		{"minor only", []models.Severity{models.SeverityMinor, models.SeverityMinor}, models.DecisionOkay},
		{"major forces hold", []models.Severity{models.SeverityMinor, models.SeverityMajor}, models.DecisionHold},
		{"critical forces reject", []models.Severity{models.SeverityMajor, models.SeverityCritical}, models.DecisionReject},
		{"single critical", []models.Severity{models.SeverityCritical}, models.DecisionReject},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var exceptions []Exception
			for _, s := range c.severities {
				exceptions = append(exceptions, exceptionWith(s))
			}
			got := MakeDecision(exceptions)
			if got.Decision != c.want {
				t.Fatalf("decision = %s, want %s", got.Decision, c.want)
			}
		})
	}
}

func TestMakeDecision_IsOrderIndependent(t *testing.T) {
	exceptions := []Exception{
		exceptionWith(models.SeverityMinor),
		exceptionWith(models.SeverityCritical),
		exceptionWith(models.SeverityMajor),
		exceptionWith(models.SeverityMajor),
	}

	want := MakeDecision(exceptions)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]Exception, len(exceptions))
		copy(shuffled, exceptions)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := MakeDecision(shuffled)
		if got.Decision != want.Decision || got.Summary != want.Summary {
			t.Fatalf("shuffle %d changed the outcome: %+v vs %+v", i, got, want)
		}
	}
}

func TestMakeDecision_SummaryAndReasoning(t *testing.T) {
	res := MakeDecision([]Exception{
		exceptionWith(models.SeverityCritical),
		exceptionWith(models.SeverityCritical),
		exceptionWith(models.SeverityMajor),
		exceptionWith(models.SeverityMinor),
	})

	if res.Summary != (Summary{Critical: 2, Major: 1, Minor: 1}) {
		t.Fatalf("summary = %+v", res.Summary)
	}
	if len(res.Reasoning) != 1 || res.Reasoning[0] != "2 critical exception(s) found" {
		t.Fatalf("reasoning = %v", res.Reasoning)
	}
	if len(res.RoutingSuggestions) != 1 || res.RoutingSuggestions[0] != "Route to Compliance Officer" {
		t.Fatalf("routing = %v", res.RoutingSuggestions)
	}
}

func TestMakeDecision_OkayHasEmptyRouting(t *testing.T) {
	res := MakeDecision(nil)
	if res.Decision != models.DecisionOkay {
		t.Fatalf("decision = %s", res.Decision)
	}
	if res.RoutingSuggestions == nil || len(res.RoutingSuggestions) != 0 {
		t.Fatalf("routing must be an empty, non-nil slice, got %v", res.RoutingSuggestions)
	}
	if len(res.Reasoning) != 1 || res.Reasoning[0] != "All validations passed" {
		t.Fatalf("reasoning = %v", res.Reasoning)
	}
}

func TestMakeDecision_HoldReasoning(t *testing.T) {
	res := MakeDecision([]Exception{exceptionWith(models.SeverityMajor)})
	if res.Decision != models.DecisionHold {
		t.Fatalf("decision = %s", res.Decision)
	}
	if res.Reasoning[0] != "1 major exception(s) require resolution" {
		t.Fatalf("reasoning = %v", res.Reasoning)
	}
	if res.RoutingSuggestions[0] != "Route to Procurement / Finance" {
		t.Fatalf("routing = %v", res.RoutingSuggestions)
	}
}
