package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema names, one per embedded schemas/<name>.schema.json.
const (
	SchemaSlot        = "slot"
	SchemaFull        = "full"
	SchemaDelta       = "delta"
	SchemaAutoSlot    = "autoslot"
	SchemaParseLevels = "parse_levels"
	SchemaHello       = "hello"
	SchemaQuery       = "query"
)

// schemaBase is the compiler URL prefix for every embedded schema.
const schemaBase = "mem://schemas/"

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemaSet  map[string]*jsonschema.Schema
	schemaErr  error
)

func loadSchemas() (map[string]*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		ents, err := schemaFS.ReadDir("schemas")
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		var names []string
		for _, e := range ents {
			raw, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
			if err != nil {
				schemaErr = err
				return
			}
			if err := c.AddResource(schemaBase+e.Name(), bytes.NewReader(raw)); err != nil {
				schemaErr = fmt.Errorf("schema %s: %w", e.Name(), err)
				return
			}
			names = append(names, e.Name())
		}
		out := make(map[string]*jsonschema.Schema, len(names))
		for _, n := range names {
			s, err := c.Compile(schemaBase + n)
			if err != nil {
				schemaErr = fmt.Errorf("compile %s: %w", n, err)
				return
			}
			out[strings.TrimSuffix(n, ".schema.json")] = s
		}
		schemaSet = out
	})
	return schemaSet, schemaErr
}

// CheckSchemas compiles the embedded schemas; servers call it at startup.
func CheckSchemas() error {
	_, err := loadSchemas()
	return err
}

// ValidateJSON checks raw against the named schema. Malformed JSON and
// schema violations both wrap ErrInvalidBody.
func ValidateJSON(name string, raw []byte) error {
	set, err := loadSchemas()
	if err != nil {
		return err
	}
	s, ok := set[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// DecodeValidated validates raw and then decodes it into dst.
func DecodeValidated(name string, raw []byte, dst any) error {
	if err := ValidateJSON(name, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// RawSchema returns the embedded schema document for name.
func RawSchema(name string) (json.RawMessage, error) {
	b, err := schemaFS.ReadFile(path.Join("schemas", name+".schema.json"))
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	return json.RawMessage(b), nil
}
