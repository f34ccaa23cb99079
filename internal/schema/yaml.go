package schema

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

type schemaFile struct {
	Fields []Field `yaml:"fields"`
}

// LoadYAML reads a FieldSchema from a YAML file of the form:
//
//	fields:
//	  - name: id_number
//	    kind: pattern
//	    required: true
//	    pattern: "^[A-Z][0-9]{7}$"
func LoadYAML(path string) (*FieldSchema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	var sf schemaFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, fmt.Errorf("parse schema file: %w", err)
	}
	s, err := New(sf.Fields...)
	if err != nil {
		return nil, fmt.Errorf("schema file %s: %w", path, err)
	}
	return s, nil
}
