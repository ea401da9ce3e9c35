package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/seion-lab/kintai/pkg/domain/types"
)

// SeedConfig is the TOML file format for the seed command
type SeedConfig struct {
	Users []SeedUser `toml:"user"`
}

// SeedUser is one user/card binding to register
type SeedUser struct {
	Name       string `toml:"name"`
	CardUID    string `toml:"card_uid"`
	Department string `toml:"department"`
}

// Validate checks if the seed user has the required fields
func (u *SeedUser) Validate() error {
	if u.Name == "" {
		return goerr.New("seed user name is required", goerr.V("card_uid", u.CardUID))
	}
	if err := types.CardID(u.CardUID).Validate(); err != nil {
		return goerr.Wrap(err, "invalid seed user card", goerr.V("name", u.Name))
	}
	return nil
}

// Validate checks if the seed config is valid
func (c *SeedConfig) Validate() error {
	if len(c.Users) == 0 {
		return goerr.New("seed config has no users")
	}

	cards := make(map[string]bool)
	for i := range c.Users {
		if err := c.Users[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid seed user")
		}
		if cards[c.Users[i].CardUID] {
			return goerr.New("duplicate card in seed config", goerr.V("card_uid", c.Users[i].CardUID))
		}
		cards[c.Users[i].CardUID] = true
	}
	return nil
}

// LoadSeedConfig reads and validates a seed file
func LoadSeedConfig(path string) (*SeedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read seed config", goerr.V("path", path))
	}

	var cfg SeedConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse seed config", goerr.V("path", path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
