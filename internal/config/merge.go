package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyEndpoint = "endpoint"
	keyWidget   = "widget"
	keyServer   = "server"
	keyLogging  = "logging"
)

// ShallowMergeYAML loads a YAML file and merges its top-level sections onto
// target. A section present in the file is decoded over the target's current
// section, so keys omitted inside it keep their current values. Unknown
// top-level keys are ignored.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		if err = decodeSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}
	return nil
}

func decodeSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyEndpoint:
		return node.Decode(&target.Endpoint)
	case keyWidget:
		return node.Decode(&target.Widget)
	case keyServer:
		return node.Decode(&target.Server)
	case keyLogging:
		return node.Decode(&target.Logging)
	default:
		return nil
	}
}
