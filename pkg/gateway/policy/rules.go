package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RulesFile is the on-disk rules document.
//
//	rules:
//	  - id: no-aws-iam
//	    condition: "provider == 'aws' && tokens[1] == 'iam'"
//	    description: IAM enumeration reserved for the MFA report
type RulesFile struct {
	Rules []DynamicRule `yaml:"rules"`
}

// LoadRules reads and compiles a YAML rules file into a RuleEngine.
// An empty path yields a nil engine (static allowlist only).
func LoadRules(path string) (*RuleEngine, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var doc RulesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	for i, r := range doc.Rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d in %s has no id", i, path)
		}
		if r.Condition == "" {
			return nil, fmt.Errorf("rule %s has no condition", r.ID)
		}
	}

	engine, err := NewRuleEngine()
	if err != nil {
		return nil, err
	}
	if err := engine.Compile(doc.Rules); err != nil {
		return nil, err
	}
	return engine, nil
}
