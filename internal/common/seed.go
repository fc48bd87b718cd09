package common

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type SeedAccount struct {
	Id       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Contact  string   `yaml:"contact"`
	Currency string   `yaml:"currency"`
	Balance  string   `yaml:"balance"`
	Merchant bool     `yaml:"merchant"`
	UpiIds   []string `yaml:"upi_ids"`
}

type SeedConfig struct {
	Accounts []SeedAccount `yaml:"accounts"`
}

// LoadSeedAccounts reads the account seed file used by the setup command.
// Relative paths resolve against the working directory.
func LoadSeedAccounts(seedFile string) ([]SeedAccount, error) {
	var seedPath string
	if filepath.IsAbs(seedFile) {
		seedPath = seedFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		seedPath = filepath.Join(wd, seedFile)
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", seedFile, err)
	}

	var config SeedConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", seedFile, err)
	}

	for i, account := range config.Accounts {
		if account.Id == "" {
			return nil, fmt.Errorf("account at index %d missing id", i)
		}
		if account.Name == "" {
			return nil, fmt.Errorf("account at index %d missing name", i)
		}
		if account.Balance == "" {
			return nil, fmt.Errorf("account at index %d missing balance", i)
		}
		if len(account.UpiIds) == 0 {
			return nil, fmt.Errorf("account %s has no UPI IDs", account.Id)
		}
	}

	return config.Accounts, nil
}
