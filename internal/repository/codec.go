package repository

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/forgo/guildhall/internal/model"
)

// CurrentVersion is the layout version written by Encode
const CurrentVersion = 1

// LegacyVersion identifies the unversioned bare-mapping layout
const LegacyVersion = 0

//go:embed schema/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://guildhall.forgo.software/schema/"

var (
	currentSchema = mustCompileSchema("registry.v1.json")
	legacySchema  = mustCompileSchema("registry.legacy.json")
)

func mustCompileSchema(name string) *jsonschema.Schema {
	data, err := schemaFS.ReadFile("schema/" + name)
	if err != nil {
		panic(fmt.Sprintf("read schema %s: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaBaseURL+name, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return c.MustCompile(schemaBaseURL + name)
}

// document is the persisted layout
type document struct {
	Version int            `json:"version"`
	Guilds  model.Registry `json:"guilds"`
}

// Encode serializes the registry in the current layout. Output is canonical:
// guild names are sorted and member order is preserved, so encoding a
// decoded document reproduces it byte for byte.
func Encode(reg model.Registry) ([]byte, error) {
	out := make(model.Registry, len(reg))
	for name, rec := range reg {
		c := rec.Clone()
		if c.Members == nil {
			c.Members = []string{}
		}
		if c.JoinRequests == nil {
			c.JoinRequests = []string{}
		}
		out[name] = c
	}
	return json.Marshal(document{Version: CurrentVersion, Guilds: out})
}

// Decode parses either layout, validates it against its schema, and checks
// the registry invariants. It returns the layout version it found.
func Decode(data []byte) (model.Registry, int, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("malformed JSON: %w", err)
	}
	top, ok := raw.(map[string]any)
	if !ok {
		return nil, 0, fmt.Errorf("registry must be a JSON object, got %T", raw)
	}

	version := LegacyVersion
	if v, ok := top["version"].(float64); ok {
		version = int(v)
	}

	var reg model.Registry
	switch version {
	case CurrentVersion:
		if err := currentSchema.Validate(raw); err != nil {
			return nil, version, fmt.Errorf("schema: %w", err)
		}
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, version, fmt.Errorf("decode document: %w", err)
		}
		reg = doc.Guilds
	case LegacyVersion:
		if err := legacySchema.Validate(raw); err != nil {
			return nil, version, fmt.Errorf("legacy schema: %w", err)
		}
		if err := json.Unmarshal(data, &reg); err != nil {
			return nil, version, fmt.Errorf("decode legacy registry: %w", err)
		}
	default:
		return nil, version, fmt.Errorf("unsupported registry version %d", version)
	}

	if reg == nil {
		reg = model.Registry{}
	}
	for _, rec := range reg {
		if rec.JoinRequests == nil {
			rec.JoinRequests = []string{}
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, version, err
	}
	return reg, version, nil
}
