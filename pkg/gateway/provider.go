package gateway

import (
	"github.com/skyhook-labs/cloudgate/pkg/config"
	"github.com/skyhook-labs/cloudgate/pkg/gateway/policy"
)

// Provider identifies one supported cloud CLI.
type Provider string

const (
	ProviderAWS   Provider = "aws"
	ProviderAzure Provider = "azure"
	ProviderGCP   Provider = "gcp"
)

// Providers lists all supported providers in routing order.
func Providers() []Provider {
	return []Provider{ProviderAWS, ProviderAzure, ProviderGCP}
}

// Descriptor binds one provider's CLI token, binary and verb policy. Built
// once at startup; gateways share nothing mutable.
type Descriptor struct {
	Provider Provider
	// Token is the invocation word commands must start with ("aws").
	Token string
	// Binary is the executable resolved for that token. Usually the same
	// word, but configurable to an absolute path.
	Binary string
	Table  policy.Table
	// ExtraEnv is injected into every execution (default region/project).
	ExtraEnv []string
	// StatusCommands are the canned read-only argv tails used by doctor
	// checks ("configure list", "account show", ...).
	StatusCommands [][]string
}

// DescriptorFor builds the Descriptor for a provider from configuration.
func DescriptorFor(p Provider, cfg config.Config) Descriptor {
	switch p {
	case ProviderAWS:
		d := Descriptor{
			Provider: p,
			Token:    "aws",
			Binary:   cfg.Binaries.AWS,
			Table:    policy.AWSTable(),
			StatusCommands: [][]string{
				{"--version"},
				{"configure", "list"},
			},
		}
		if cfg.DefaultRegion != "" {
			d.ExtraEnv = append(d.ExtraEnv, "AWS_DEFAULT_REGION="+cfg.DefaultRegion)
		}
		return d
	case ProviderAzure:
		return Descriptor{
			Provider: p,
			Token:    "az",
			Binary:   cfg.Binaries.Azure,
			Table:    policy.AzureTable(),
			StatusCommands: [][]string{
				{"version"},
				{"account", "show"},
			},
		}
	case ProviderGCP:
		d := Descriptor{
			Provider: p,
			Token:    "gcloud",
			Binary:   cfg.Binaries.Gcloud,
			Table:    policy.GCPTable(),
			StatusCommands: [][]string{
				{"--version"},
				{"auth", "list"},
				{"config", "list"},
			},
		}
		if cfg.DefaultProject != "" {
			d.ExtraEnv = append(d.ExtraEnv, "CLOUDSDK_CORE_PROJECT="+cfg.DefaultProject)
		}
		return d
	}
	return Descriptor{}
}
