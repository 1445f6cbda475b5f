package policy

import (
	"strings"
	"testing"
)

func TestCheckRejectsWrongPrefix(t *testing.T) {
	v := NewValidator("aws", AWSTable(), nil)

	cases := []string{
		"ls -la",
		"az vm list",
		"gcloud compute instances list",
		"AWS s3 ls", // case-sensitive
		"awscli s3 ls",
	}
	for _, raw := range cases {
		verdict := v.Check(raw)
		if verdict.Allowed {
			t.Errorf("Check(%q) allowed, want prefix rejection", raw)
		}
		if verdict.Reason != ReasonPrefix {
			t.Errorf("Check(%q) reason = %q, want %q", raw, verdict.Reason, ReasonPrefix)
		}
	}
}

func TestCheckTrimsOuterWhitespaceOnly(t *testing.T) {
	v := NewValidator("aws", AWSTable(), nil)
	verdict := v.Check("   aws s3 ls   ")
	if !verdict.Allowed {
		t.Errorf("outer whitespace should be trimmed, got rejection %q", verdict.Reason)
	}
}

func TestCheckRejectsEmpty(t *testing.T) {
	v := NewValidator("aws", AWSTable(), nil)
	for _, raw := range []string{"", "   ", "\t"} {
		verdict := v.Check(raw)
		if verdict.Allowed || verdict.Reason != ReasonEmpty {
			t.Errorf("Check(%q) = %+v, want empty-command rejection", raw, verdict)
		}
	}
}

func TestCheckRejectsMutatingVerbs(t *testing.T) {
	cases := []struct {
		provider string
		table    Table
		raw      string
	}{
		{"aws", AWSTable(), "aws s3 rb s3://bucket-a"},
		{"aws", AWSTable(), "aws ec2 terminate-instances --instance-ids i-123"},
		{"aws", AWSTable(), "aws iam attach-user-policy --user-name x"},
		{"aws", AWSTable(), "aws dynamodb delete-table --table-name t"},
		{"azure", AzureTable(), "az vm delete --name web01"},
		{"azure", AzureTable(), "az group create --name rg1"},
		{"gcp", GCPTable(), "gcloud compute instances delete web01"},
		{"gcp", GCPTable(), "gcloud projects set-iam-policy proj policy.json"},
		{"gcp", GCPTable(), "gcloud config set project sandbox"},
	}
	for _, tc := range cases {
		v := NewValidator(tc.provider, tc.table, nil)
		verdict := v.Check(tc.raw)
		if verdict.Allowed {
			t.Errorf("Check(%q) allowed a mutating command", tc.raw)
		}
		if verdict.Reason != ReasonMutating {
			t.Errorf("Check(%q) reason = %q, want %q", tc.raw, verdict.Reason, ReasonMutating)
		}
	}
}

func TestCheckFailsClosedOnUnknownVerbs(t *testing.T) {
	// No token recognized as read-only: never allowed-by-default.
	v := NewValidator("aws", AWSTable(), nil)
	verdict := v.Check("aws s3 frobnicate mybucket")
	if verdict.Allowed {
		t.Error("unrecognized verb was allowed; validator must fail closed")
	}
	if verdict.Reason != ReasonMutating {
		t.Errorf("reason = %q, want %q", verdict.Reason, ReasonMutating)
	}
}

func TestCheckRejectsMutatingEvenAfterReadOnlyVerb(t *testing.T) {
	v := NewValidator("aws", AWSTable(), nil)
	verdict := v.Check("aws iam list-users delete-user")
	if verdict.Allowed {
		t.Error("mutating token after a read-only verb should reject")
	}
}

func TestCheckRejectsUnsafeCharacters(t *testing.T) {
	v := NewValidator("aws", AWSTable(), nil)

	cases := []string{
		"aws iam list-users; rm -rf /",
		"aws s3 ls | tee /tmp/x",
		"aws s3 ls `whoami`",
		"aws s3 ls $(whoami)",
		"aws s3 ls > /tmp/out",
		"aws s3 ls && aws s3 rb s3://b",
		"aws s3 ls < /etc/passwd",
	}
	for _, raw := range cases {
		verdict := v.Check(raw)
		if verdict.Allowed {
			t.Errorf("Check(%q) allowed shell metacharacters", raw)
		}
		if verdict.Reason != ReasonUnsafe {
			t.Errorf("Check(%q) reason = %q, want %q", raw, verdict.Reason, ReasonUnsafe)
		}
	}
}

func TestCheckRejectsLeadingFlag(t *testing.T) {
	v := NewValidator("aws", AWSTable(), nil)
	verdict := v.Check("aws --profile prod s3 ls")
	if verdict.Allowed {
		t.Error("flag before sub-command should reject")
	}
}

func TestCheckAllowsReadOnlyCommands(t *testing.T) {
	cases := []struct {
		provider string
		table    Table
		raw      string
		verb     string
	}{
		{"aws", AWSTable(), "aws s3 ls", "ls"},
		{"aws", AWSTable(), "aws ec2 describe-instances", "describe-instances"},
		{"aws", AWSTable(), "aws iam list-users --output json", "list-users"},
		{"aws", AWSTable(), "aws cloudtrail lookup-events", "lookup-events"},
		{"azure", AzureTable(), "az vm list", "list"},
		{"azure", AzureTable(), "az network vnet show --name v1", "show"},
		{"gcp", GCPTable(), "gcloud compute instances list", "list"},
		{"gcp", GCPTable(), "gcloud projects get-iam-policy proj", "get-iam-policy"},
	}
	for _, tc := range cases {
		v := NewValidator(tc.provider, tc.table, nil)
		verdict := v.Check(tc.raw)
		if !verdict.Allowed {
			t.Errorf("Check(%q) rejected: %s", tc.raw, verdict.Reason)
			continue
		}
		if verdict.Verb != tc.verb {
			t.Errorf("Check(%q) verb = %q, want %q", tc.raw, verdict.Verb, tc.verb)
		}
	}
}

func TestCheckKeepsQuotedArgumentsWhole(t *testing.T) {
	v := NewValidator("aws", AWSTable(), nil)
	verdict := v.Check(`aws logs describe-log-groups --log-group-name-prefix "/aws/lambda prod"`)
	if !verdict.Allowed {
		t.Fatalf("quoted read-only command rejected: %s", verdict.Reason)
	}
	want := []string{"aws", "logs", "describe-log-groups", "--log-group-name-prefix", "/aws/lambda prod"}
	if len(verdict.Tokens) != len(want) {
		t.Fatalf("tokens = %q, want %q", verdict.Tokens, want)
	}
	for i := range want {
		if verdict.Tokens[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, verdict.Tokens[i], want[i])
		}
	}
}

func TestCheckScansInsideQuotes(t *testing.T) {
	// Quoting a mutating verb must not hide it from the scan.
	v := NewValidator("aws", AWSTable(), nil)
	verdict := v.Check(`aws iam "delete-user" --user-name bob`)
	if verdict.Allowed {
		t.Error("quoted mutating verb was allowed")
	}
}

func TestCheckRejectsUnbalancedQuoting(t *testing.T) {
	v := NewValidator("aws", AWSTable(), nil)
	verdict := v.Check(`aws s3 ls "s3://bucket`)
	if verdict.Allowed {
		t.Error("unbalanced quote was allowed")
	}
	if verdict.Reason != ReasonQuoting {
		t.Errorf("reason = %q, want %q", verdict.Reason, ReasonQuoting)
	}
}

func TestCheckAppliesDynamicRules(t *testing.T) {
	engine, err := NewRuleEngine()
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := engine.Compile([]DynamicRule{
		{ID: "no-iam", Condition: "provider == 'aws' && tokens[1] == 'iam'"},
	}); err != nil {
		t.Fatalf("Compilation failed: %v", err)
	}

	v := NewValidator("aws", AWSTable(), engine)

	verdict := v.Check("aws iam list-users")
	if verdict.Allowed {
		t.Error("rule-blocked command was allowed")
	}
	if !strings.Contains(verdict.Reason, "no-iam") {
		t.Errorf("reason %q does not cite the blocking rule", verdict.Reason)
	}

	// Rules must not widen the allowlist: a mutating command stays rejected
	// even if no rule matches it.
	verdict = v.Check("aws s3 ls")
	if !verdict.Allowed {
		t.Errorf("unrelated command rejected: %s", verdict.Reason)
	}
}
