package utils

import (
	"fmt"
	"os"

	"github.com/gtdvccc/invariant-sim/pkg/decimal"
	"github.com/gtdvccc/invariant-sim/pkg/pool/invariant"
	"gopkg.in/yaml.v3"
)

// feeTierConfig - one fee tier as written in the config file.
// Fee is in units of 10^-5, so 10 is 0.01%.
type feeTierConfig struct {
	Fee         uint64 `yaml:"fee"`
	TickSpacing uint16 `yaml:"tickSpacing"`
}

type feeTiersFile struct {
	FeeTiers []feeTierConfig `yaml:"feeTiers"`
}

// LoadFeeTiers reads fee tiers from a YAML file. An empty path returns the mainnet tiers.
//
// Example file:
//
//	feeTiers:
//	  - fee: 10
//	    tickSpacing: 1
//	  - fee: 100
//	    tickSpacing: 10
func LoadFeeTiers(path string) ([]invariant.FeeTier, error) {
	if path == "" {
		return invariant.DefaultFeeTiers(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fee tiers: %w", err)
	}
	return ParseFeeTiers(raw)
}

// ParseFeeTiers decodes the YAML fee tier document
func ParseFeeTiers(raw []byte) ([]invariant.FeeTier, error) {
	var file feeTiersFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fee tiers: %w", err)
	}
	if len(file.FeeTiers) == 0 {
		return nil, fmt.Errorf("no fee tiers configured")
	}
	tiers := make([]invariant.FeeTier, 0, len(file.FeeTiers))
	for i, tier := range file.FeeTiers {
		if tier.TickSpacing == 0 {
			return nil, fmt.Errorf("fee tier %d: %w", i, invariant.ErrZeroSpacing)
		}
		tiers = append(tiers, invariant.FeeTier{
			Fee:         decimal.FromFee(tier.Fee),
			TickSpacing: tier.TickSpacing,
		})
	}
	return tiers, nil
}
