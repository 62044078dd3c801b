package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// webUIConfig is the declarative counterpart to web-ui's flags, in the
// teacher's resource-document shape: a kind-tagged envelope around a spec
// block, so the file format has room to grow into other commands later
// without a breaking change to this one.
type webUIConfig struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Spec       struct {
		DataDir    string `yaml:"dataDir"`
		Listen     string `yaml:"listen"`
		SecretFile string `yaml:"secretFile"`
	} `yaml:"spec"`
}

type resolvedWebUIConfig struct {
	DataDir    string
	Listen     string
	SecretFile string
}

func loadWebUIConfig(path string) (resolvedWebUIConfig, error) {
	var out resolvedWebUIConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read file: %w", err)
	}

	var cfg webUIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return out, fmt.Errorf("parse yaml: %w", err)
	}
	if cfg.Kind != "" && cfg.Kind != "WebUI" {
		return out, fmt.Errorf("unsupported config kind %q", cfg.Kind)
	}

	out.DataDir = cfg.Spec.DataDir
	out.Listen = cfg.Spec.Listen
	out.SecretFile = cfg.Spec.SecretFile
	return out, nil
}
