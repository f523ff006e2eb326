// Package preset loads enhancement parameter presets from YAML or CUE files
// and checks them against an embedded CUE schema.
package preset

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/SyedDaiam9101/conditioning-service/internal/enhance"
)

//go:embed schema.cue
var schemaSource string

var (
	// ErrInvalidPreset wraps schema violations.
	ErrInvalidPreset = errors.New("invalid preset")
	// ErrUnsupportedFormat is returned for files that are neither YAML nor CUE.
	ErrUnsupportedFormat = errors.New("unsupported preset format")
)

// Format is the syntax a preset is written in.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadFile reads the preset at path and applies it over base.
func LoadFile(path string, base enhance.Parameters) (enhance.Parameters, error) {
	format, err := FormatOf(path)
	if err != nil {
		return base, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read preset: %w", err)
	}
	return Parse(data, format, path, base)
}

// Parse validates a preset and applies the fields it sets over base. name is
// only used in error positions.
func Parse(data []byte, format Format, name string, base enhance.Parameters) (enhance.Parameters, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return base, fmt.Errorf("compile preset schema: %w", err)
	}

	var value cue.Value
	switch format {
	case FormatCUE:
		value = ctx.CompileBytes(data, cue.Filename(name))
	case FormatYAML:
		var fields map[string]any
		if err := yaml.Unmarshal(data, &fields); err != nil {
			return base, fmt.Errorf("%w: %s: %v", ErrInvalidPreset, name, err)
		}
		if fields == nil {
			fields = map[string]any{}
		}
		value = ctx.Encode(fields)
	default:
		return base, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := value.Err(); err != nil {
		return base, fmt.Errorf("%w: %s: %s", ErrInvalidPreset, name, details(err))
	}

	unified := schema.LookupPath(cue.ParsePath("#Preset")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return base, fmt.Errorf("%w: %s: %s", ErrInvalidPreset, name, details(err))
	}

	raw, err := unified.MarshalJSON()
	if err != nil {
		return base, fmt.Errorf("%w: %s: %v", ErrInvalidPreset, name, err)
	}
	out := base
	if err := json.Unmarshal(raw, &out); err != nil {
		return base, fmt.Errorf("%w: %s: %v", ErrInvalidPreset, name, err)
	}
	if err := out.Validate(); err != nil {
		return base, fmt.Errorf("%w: %s: %v", ErrInvalidPreset, name, err)
	}
	return out, nil
}

// Marshal renders p as a YAML preset.
func Marshal(p enhance.Parameters) ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func details(err error) string {
	return strings.TrimSpace(cueerrors.Details(err, nil))
}
