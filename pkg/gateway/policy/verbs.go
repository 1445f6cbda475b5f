package policy

// Verb tables are the authoritative read-only allowlists per provider CLI.
// A verb absent from both sets is treated as mutating: the validator fails
// closed on anything it does not recognize.

// Table is one provider's verb policy. All fields are populated at startup
// and never mutated; concurrent requests share a Table without locking.
type Table struct {
	// Token is the CLI invocation token the command must start with.
	Token string

	ReadOnly         map[string]struct{}
	ReadOnlyPrefixes []string

	Mutating         map[string]struct{}
	MutatingPrefixes []string
}

func set(verbs ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(verbs))
	for _, v := range verbs {
		m[v] = struct{}{}
	}
	return m
}

// globalMutating blocks host-level tokens regardless of provider. These can
// only appear smuggled inside an otherwise valid cloud command.
var globalMutating = set(
	"rm", "sudo", "su", "chmod", "chown", "eval", "exec",
)

// AWSTable covers the aws CLI. Most AWS actions are kebab-cased
// verb-noun pairs, so prefix families carry the bulk of the policy.
func AWSTable() Table {
	return Table{
		Token:    "aws",
		ReadOnly: set("ls", "help", "presign"),
		ReadOnlyPrefixes: []string{
			"describe-", "list-", "get-", "lookup-", "head-", "search-",
		},
		Mutating: set(
			"rb", "mb", "mv", "rm", "cp", "sync", "invoke", "website",
		),
		MutatingPrefixes: []string{
			"create-", "delete-", "put-", "update-", "terminate-", "modify-",
			"set-", "add-", "remove-", "attach-", "detach-", "associate-",
			"disassociate-", "enable-", "disable-", "start-", "stop-",
			"reboot-", "run-", "revoke-", "authorize-", "tag-", "untag-",
			"register-", "deregister-", "replace-", "restore-", "cancel-",
			"release-", "allocate-", "import-", "copy-", "reset-", "rotate-",
		},
	}
}

// AzureTable covers the az CLI. Azure puts a bare verb at the end of a
// command group chain ("az vm list", "az network vnet show").
func AzureTable() Table {
	return Table{
		Token:    "az",
		ReadOnly: set("list", "show", "get", "version", "help", "find", "check-health"),
		ReadOnlyPrefixes: []string{
			"list-", "show-", "get-",
		},
		Mutating: set(
			"create", "delete", "update", "set", "add", "remove", "start",
			"stop", "restart", "deallocate", "attach", "detach", "purge",
			"import", "export", "invoke", "assign", "scale", "upgrade",
			"rotate", "regenerate", "reset", "enable", "disable", "login",
			"logout", "wait", "run-command",
		),
		MutatingPrefixes: []string{
			"create-", "delete-", "update-", "set-", "add-", "remove-",
		},
	}
}

// GCPTable covers the gcloud CLI ("gcloud compute instances list").
func GCPTable() Table {
	return Table{
		Token:    "gcloud",
		ReadOnly: set("list", "describe", "help", "version", "info", "config"),
		ReadOnlyPrefixes: []string{
			"list-", "describe-", "get-",
		},
		Mutating: set(
			"create", "delete", "update", "deploy", "start", "stop", "reset",
			"resize", "move", "patch", "import", "export", "attach", "detach",
			"promote", "failover", "restart", "suspend", "resume", "cancel",
			"login", "revoke", "activate", "ssh", "scp", "copy-files",
			// "gcloud config list" is read-only but "config set" is not.
			"set", "unset",
		),
		MutatingPrefixes: []string{
			"set-", "add-", "remove-", "update-", "delete-", "create-",
			"enable-", "disable-",
		},
	}
}

func (t Table) isReadOnly(token string) bool {
	if _, ok := t.ReadOnly[token]; ok {
		return true
	}
	for _, p := range t.ReadOnlyPrefixes {
		if len(token) > len(p) && token[:len(p)] == p {
			return true
		}
	}
	return false
}

func (t Table) isMutating(token string) bool {
	if _, ok := globalMutating[token]; ok {
		return true
	}
	if _, ok := t.Mutating[token]; ok {
		return true
	}
	for _, p := range t.MutatingPrefixes {
		if len(token) > len(p) && token[:len(p)] == p {
			return true
		}
	}
	return false
}
