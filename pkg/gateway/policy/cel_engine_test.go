package policy

import (
	"testing"
)

func TestRuleEngine(t *testing.T) {
	// 1. Initialize Engine
	engine, err := NewRuleEngine()
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// 2. Define Rules
	rules := []DynamicRule{
		{
			ID:        "no_gcp_ssh_scopes",
			Condition: "provider == 'gcp' && command.contains('ssh')",
		},
		{
			ID:        "aws_org_reads_only_to_ops",
			Condition: "provider == 'aws' && tokens[1] == 'organizations'",
		},
	}

	// 3. Compile
	if err := engine.Compile(rules); err != nil {
		t.Fatalf("Compilation failed: %v", err)
	}

	// 4. Evaluate Scenario A: AWS organizations read
	matches, err := engine.Evaluate(EvaluationContext{
		Provider: "aws",
		Command:  "aws organizations list-accounts",
		Verb:     "list-accounts",
		Tokens:   []string{"aws", "organizations", "list-accounts"},
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(matches) != 1 || matches[0] != "aws_org_reads_only_to_ops" {
		t.Errorf("Scenario A failed. Expected ['aws_org_reads_only_to_ops'], got %v", matches)
	}

	// 5. Evaluate Scenario B: nothing matches
	matches, err = engine.Evaluate(EvaluationContext{
		Provider: "aws",
		Command:  "aws s3 ls",
		Verb:     "ls",
		Tokens:   []string{"aws", "s3", "ls"},
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Scenario B failed. Expected no matches, got %v", matches)
	}
}

func TestRuleEngineRejectsBrokenCEL(t *testing.T) {
	engine, err := NewRuleEngine()
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	err = engine.Compile([]DynamicRule{
		{ID: "broken", Condition: "provider =="},
	})
	if err == nil {
		t.Fatal("expected compilation error for broken expression")
	}
}
