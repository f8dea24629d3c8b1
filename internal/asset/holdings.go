package asset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type holdingsFile struct {
	Holdings []struct {
		Symbol   string `yaml:"symbol"`
		Name     string `yaml:"name"`
		Address  string `yaml:"address"`
		Decimals int    `yaml:"decimals"`
		Balance  string `yaml:"balance"`
	} `yaml:"holdings"`
}

// LoadHoldings reads the wallet registry export: the assets the user
// currently holds. An empty address marks the chain's native asset.
func LoadHoldings(path string) ([]Holding, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read holdings file: %w", err)
	}
	var file holdingsFile
	if err := yaml.Unmarshal(buf, &file); err != nil {
		return nil, fmt.Errorf("parse holdings file: %w", err)
	}
	out := make([]Holding, 0, len(file.Holdings))
	for i, h := range file.Holdings {
		if h.Symbol == "" {
			return nil, fmt.Errorf("holdings entry %d: missing symbol", i)
		}
		if h.Decimals < 0 {
			return nil, fmt.Errorf("holdings entry %d: negative decimals", i)
		}
		out = append(out, Holding{
			Asset: Asset{
				Symbol:   h.Symbol,
				Name:     h.Name,
				Address:  h.Address,
				Decimals: h.Decimals,
			},
			Balance: h.Balance,
		})
	}
	return out, nil
}
