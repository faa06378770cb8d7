package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig supplies default writer options from an optional
// .jsontokenrc.yaml in the current directory, so repeated invocations
// don't need to repeat the same flags every time.
type fileConfig struct {
	Pretty              bool `yaml:"pretty"`
	Indent              int  `yaml:"indent"`
	TypographicalSpace   bool `yaml:"typographicalSpace"`
	CompactArrayWrapAfter int `yaml:"compactArrayWrapAfter"`
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileConfig{Indent: 2}, nil
		}
		return nil, err
	}
	cfg := &fileConfig{Indent: 2}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
