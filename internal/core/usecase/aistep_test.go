package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
)

func TestRunAIStepNilGeneratorUsesFallback(t *testing.T) {
	value, outcome := runAIStep(
		context.Background(), nil, StepOptions{}, "test", "sys", "user",
		func(string) (int, error) { return 0, errors.New("should not be called") },
		func() int { return 42 },
	)

	if value != 42 || outcome.UsedAI {
		t.Fatalf("value = %d, outcome = %+v", value, outcome)
	}
	if outcome.Reason != "text generation disabled" {
		t.Fatalf("reason = %q", outcome.Reason)
	}
}

func TestRunAIStepTriesModelsInOrder(t *testing.T) {
	gen := &fakeGenerator{
		responses: []string{"", "7"},
		errs:      []error{errors.New("model-a down"), nil},
	}

	value, outcome := runAIStep(
		context.Background(), gen,
		StepOptions{Models: []string{"model-a", "model-b"}},
		"test", "sys", "user",
		strconv.Atoi,
		func() int { return -1 },
	)

	if value != 7 {
		t.Fatalf("value = %d, want second model's output", value)
	}
	if !outcome.UsedAI || outcome.Model != "model-b" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if gen.requests[0].Model != "model-a" || gen.requests[1].Model != "model-b" {
		t.Fatalf("models attempted out of order: %+v", gen.requests)
	}
}

func TestRunAIStepParseFailureAdvancesToNextModel(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"not a number", "9"}}

	value, outcome := runAIStep(
		context.Background(), gen,
		StepOptions{Models: []string{"model-a", "model-b"}},
		"test", "sys", "user",
		strconv.Atoi,
		func() int { return -1 },
	)

	if value != 9 || outcome.Model != "model-b" {
		t.Fatalf("value = %d, outcome = %+v", value, outcome)
	}
}

func TestRunAIStepExhaustionFallsBack(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"x", "y"}}

	value, outcome := runAIStep(
		context.Background(), gen,
		StepOptions{Models: []string{"model-a", "model-b"}},
		"test", "sys", "user",
		strconv.Atoi,
		func() int { return -1 },
	)

	if value != -1 || outcome.UsedAI {
		t.Fatalf("value = %d, outcome = %+v", value, outcome)
	}
	if !strings.Contains(outcome.Reason, "exhausted") {
		t.Fatalf("reason = %q", outcome.Reason)
	}
	if gen.calls != 2 {
		t.Fatalf("calls = %d, want 2 (one per model, no re-retries)", gen.calls)
	}
}

func TestRunAIStepHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &fakeGenerator{responses: []string{"1"}}

	value, outcome := runAIStep(
		ctx, gen, StepOptions{}, "test", "sys", "user",
		strconv.Atoi,
		func() int { return -1 },
	)

	if value != -1 || outcome.UsedAI {
		t.Fatalf("cancelled context still produced a model value: %+v", outcome)
	}
	if gen.calls != 0 {
		t.Fatalf("generator called %d times under a cancelled context", gen.calls)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```JSON\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
