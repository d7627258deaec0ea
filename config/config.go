package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"voidline/peer/application"
)

// LoadTuning はYAMLファイルの値を既定値に上書きして返します。
// path が空なら既定値をそのまま返します。ファイルにないキーは既定値のままです。
func LoadTuning(path string) (application.Tuning, error) {
	tuning := application.DefaultTuning()
	if path == "" {
		return tuning, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return application.Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return application.Tuning{}, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := tuning.Validate(); err != nil {
		return application.Tuning{}, err
	}
	return tuning, nil
}
