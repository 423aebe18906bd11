// Package config provides configuration loading for automation seed files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dukex/formtrigger/pkg/models"
	"gopkg.in/yaml.v3"
)

// SeedFile is the structure of an automations seed file.
type SeedFile struct {
	Automations []*models.Automation `yaml:"automations"`
}

// LoadSeed loads automations from a YAML file. Automations without a status
// are active.
func LoadSeed(filepath string) ([]*models.Automation, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", filepath, err)
	}

	return ParseSeed(data)
}

func ParseSeed(data []byte) ([]*models.Automation, error) {
	var seed SeedFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML seed: %w", err)
	}

	for _, automation := range seed.Automations {
		if automation.Status == "" {
			automation.Status = models.AutomationStatusActive
		}

		for _, trigger := range automation.Triggers {
			if trigger.Options == nil {
				trigger.Options = models.TriggerOptions{}
			}
		}
	}

	return seed.Automations, nil
}
