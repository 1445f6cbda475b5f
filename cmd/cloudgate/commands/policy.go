package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	gwpolicy "github.com/skyhook-labs/cloudgate/pkg/gateway/policy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect the read-only verb policy",
	Long: `Print the per-provider verb allowlists and, if a rules file is
configured, compile it so broken CEL is caught before deploy.

Example:
  cloudgate policy --rules-file rules.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables := map[string]gwpolicy.Table{
			"aws":   gwpolicy.AWSTable(),
			"azure": gwpolicy.AzureTable(),
			"gcp":   gwpolicy.GCPTable(),
		}

		titleStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF99"))
		dimStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

		for _, name := range []string{"aws", "azure", "gcp"} {
			t := tables[name]
			fmt.Println(titleStyle.Render(fmt.Sprintf("%s (%s)", strings.ToUpper(name), t.Token)))
			fmt.Printf("  read-only verbs:    %s\n", joinSet(t.ReadOnly))
			fmt.Printf("  read-only prefixes: %s\n", strings.Join(t.ReadOnlyPrefixes, " "))
			fmt.Println(dimStyle.Render("  everything unrecognized is rejected"))
			fmt.Println()
		}

		rulesFile := viper.GetString("rules_file")
		if rulesFile == "" {
			fmt.Println(dimStyle.Render("no dynamic rules file configured"))
			return nil
		}

		engine, err := gwpolicy.LoadRules(rulesFile)
		if err != nil {
			return fmt.Errorf("rules file %s does not compile: %w", rulesFile, err)
		}
		fmt.Println(titleStyle.Render("DYNAMIC RULES"))
		fmt.Printf("  %d rule(s) compiled OK from %s\n", engine.Size(), rulesFile)
		return nil
	},
}

func joinSet(m map[string]struct{}) string {
	verbs := make([]string, 0, len(m))
	for v := range m {
		verbs = append(verbs, v)
	}
	sort.Strings(verbs)
	return strings.Join(verbs, " ")
}
