// Package config loads the account keyword configuration and collection
// settings. A missing or malformed config file is never fatal: the built-in
// defaults cover the common DART account naming conventions.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Keywords holds the ordered account-name keyword lists for the three
// canonical metrics. Order is priority order and is preserved as loaded.
type Keywords struct {
	Revenue         []string `yaml:"revenue"`
	OperatingProfit []string `yaml:"operating_profit"`
	NetIncome       []string `yaml:"net_income"`
}

// DefaultKeywords returns the built-in keyword lists, mirroring the account
// names DART filings use most often. 순이익 variants cover quarterly and
// semi-annual report wording.
func DefaultKeywords() Keywords {
	return Keywords{
		Revenue: []string{"매출액", "수익(매출액)", "영업수익", "매출"},
		OperatingProfit: []string{"영업이익", "영업이익(손실)"},
		NetIncome: []string{
			"당기순이익", "당기순이익(손실)",
			"분기순이익", "분기순이익(손실)",
			"반기순이익", "반기순이익(손실)",
		},
	}
}

// LoadKeywords reads keyword lists from a YAML file. Any failure (missing
// file, bad YAML) falls back to DefaultKeywords with a warning; a file that
// omits one of the lists keeps the default for that list only.
func LoadKeywords(path string) Keywords {
	defaults := DefaultKeywords()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Printf("[config] WARNING: cannot read %s: %v (using defaults)\n", path, err)
		}
		return defaults
	}

	var loaded Keywords
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		fmt.Printf("[config] WARNING: cannot parse %s: %v (using defaults)\n", path, err)
		return defaults
	}

	if len(loaded.Revenue) == 0 {
		loaded.Revenue = defaults.Revenue
	}
	if len(loaded.OperatingProfit) == 0 {
		loaded.OperatingProfit = defaults.OperatingProfit
	}
	if len(loaded.NetIncome) == 0 {
		loaded.NetIncome = defaults.NetIncome
	}
	return loaded
}
