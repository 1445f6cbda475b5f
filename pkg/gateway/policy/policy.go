// Package policy decides whether a raw cloud CLI command is safe to execute.
// The decision is an explicit read-only allowlist: anything the tables do not
// recognize as read-only is rejected.
package policy

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// Rejection reasons surfaced to callers.
const (
	ReasonEmpty    = "empty command"
	ReasonPrefix   = "wrong provider prefix"
	ReasonMutating = "mutating command not permitted"
	ReasonUnsafe   = "unsafe characters"
	ReasonQuoting  = "unbalanced quoting"
)

// unsafeSequences are shell-control sequences. The executor never invokes a
// shell, but these have no business in a single cloud CLI command either.
var unsafeSequences = []string{
	";", "|", "&", "`", "$(", ">", "<", "\n", "\r",
}

// Verdict is the validator's answer for one command.
type Verdict struct {
	Allowed bool
	Reason  string
	// Verb is the read-only verb the command matched, set on allow.
	Verb string
	// Tokens is the shell-style tokenization of the command, set on allow.
	// Quoted arguments arrive as single tokens with the quotes stripped;
	// executing anything other than these tokens re-splits the command.
	Tokens []string
}

// Validator checks raw commands against one provider's verb policy plus
// optional operator-defined deny rules. Pure: no side effects, no state
// beyond the immutable tables.
type Validator struct {
	table    Table
	provider string
	rules    *RuleEngine
}

// NewValidator builds a validator for one provider table. rules may be nil.
func NewValidator(provider string, table Table, rules *RuleEngine) *Validator {
	return &Validator{table: table, provider: provider, rules: rules}
}

// Check classifies raw as allowed or rejected. Only outer whitespace is
// trimmed; the provider token match is case-sensitive.
func (v *Validator) Check(raw string) Verdict {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Verdict{Reason: ReasonEmpty}
	}

	for _, seq := range unsafeSequences {
		if strings.Contains(trimmed, seq) {
			return Verdict{Reason: ReasonUnsafe}
		}
	}

	// Shell-style split so a quoted argument stays one token. Plain
	// strings.Fields would hand the executor fragments with literal quote
	// characters attached, silently changing the command that runs.
	tokens, err := shlex.Split(trimmed)
	if err != nil {
		return Verdict{Reason: ReasonQuoting}
	}
	if len(tokens) == 0 {
		return Verdict{Reason: ReasonEmpty}
	}
	if tokens[0] != v.table.Token {
		return Verdict{Reason: ReasonPrefix}
	}
	if len(tokens) < 2 {
		return Verdict{Reason: ReasonMutating}
	}
	if strings.HasPrefix(tokens[1], "-") {
		// "aws --profile x ..." style: a flag before any sub-command hides
		// the verb from the policy scan.
		return Verdict{Reason: ReasonUnsafe}
	}

	// Scan every non-flag token. Any mutating match rejects outright, even
	// after a read-only verb was seen; allow requires at least one read-only
	// match. Unrecognized commands fall through to rejection.
	verb := ""
	for _, tok := range tokens[1:] {
		if strings.HasPrefix(tok, "-") {
			continue
		}
		if v.table.isMutating(tok) {
			return Verdict{Reason: ReasonMutating}
		}
		if verb == "" && v.table.isReadOnly(tok) {
			verb = tok
		}
	}
	if verb == "" {
		return Verdict{Reason: ReasonMutating}
	}

	if v.rules != nil {
		matched, err := v.rules.Evaluate(EvaluationContext{
			Provider: v.provider,
			Command:  trimmed,
			Verb:     verb,
			Tokens:   tokens,
		})
		if err != nil {
			return Verdict{Reason: fmt.Sprintf("rule evaluation failed: %v", err)}
		}
		if len(matched) > 0 {
			return Verdict{Reason: fmt.Sprintf("blocked by rule %s", matched[0])}
		}
	}

	return Verdict{Allowed: true, Verb: verb, Tokens: tokens}
}
