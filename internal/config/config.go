// Package config loads optional CLI defaults for the speaks-for
// toolkit from a YAML file, with support for environment variable
// expansion (${VAR} or $VAR syntax) so things like a CA directory
// path or a default validity window can be pinned per-deployment
// without repeating flags on every invocation.
//
// # Example Configuration
//
//	defaultValidityDays: 120
//	trustAnchors: ${SPEAKSFOR_CA_DIR}
//	defaultKeyFile: /etc/speaksfor/owner.pem
//
// Flags passed on the command line always override values loaded here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults holds CLI flag defaults read from an optional config file.
// Every field mirrors a flag in cmd/speaks-for or cmd/validate-speaks-for;
// a zero value means "no default, the flag is required".
type Defaults struct {
	// DefaultValidityDays seeds the -d flag for cmd/speaks-for.
	DefaultValidityDays int `yaml:"defaultValidityDays"`

	// TrustAnchors seeds the --ca flag for cmd/validate-speaks-for.
	TrustAnchors string `yaml:"trustAnchors"`

	// DefaultKeyFile seeds the -c flag for cmd/speaks-for.
	DefaultKeyFile string `yaml:"defaultKeyFile"`

	// Verbosity seeds -v/-vv when neither is passed explicitly.
	// One of "", "v", "vv".
	Verbosity string `yaml:"verbosity"`
}

// Load reads and parses path. A missing file is not an error: callers
// pass an empty Defaults and fall back entirely to flags.
func Load(path string) (*Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Defaults{}, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	var d Defaults
	if err := yaml.Unmarshal([]byte(expanded), &d); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &d, nil
}

func (d *Defaults) validate() error {
	switch d.Verbosity {
	case "", "v", "vv":
		// valid
	default:
		return fmt.Errorf("verbosity must be '', 'v', or 'vv', got %q", d.Verbosity)
	}
	if d.DefaultValidityDays < 0 {
		return fmt.Errorf("defaultValidityDays must not be negative")
	}
	return nil
}
