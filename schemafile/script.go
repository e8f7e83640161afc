package schemafile

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/dslconfig"
)

// Call is one recorded builder call. "sub" and "subKey" calls replay their
// Steps against the nested builder.
type Call struct {
	Call  string `json:"call" yaml:"call" validate:"required,oneof=set setKey sub subKey"`
	Entry string `json:"entry" yaml:"entry" validate:"required"`
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
	Steps Script `json:"steps,omitempty" yaml:"steps,omitempty" validate:"dive"`
}

// Script is an ordered list of builder calls that can be replayed as a
// configuration callback.
type Script []Call

// ParseScriptYAML decodes and validates a YAML script.
func ParseScriptYAML(data []byte) (Script, error) {
	var sc Script
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&sc); err != nil {
		return nil, fmt.Errorf("schemafile: decode yaml script: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// ParseScriptJSON decodes and validates a JSON script.
func ParseScriptJSON(data []byte) (Script, error) {
	var sc Script
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("schemafile: decode json script: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Validate checks every call, including nested steps.
func (sc Script) Validate() error {
	for i := range sc {
		if err := validate.Struct(&sc[i]); err != nil {
			return fmt.Errorf("schemafile: invalid script: call /%d: %w", i, err)
		}
	}
	return sc.checkKeys("")
}

func (sc Script) checkKeys(path string) error {
	for i, c := range sc {
		at := fmt.Sprintf("%s/%d", path, i)
		keyed := c.Call == "setKey" || c.Call == "subKey"
		if keyed && c.Key == "" {
			return fmt.Errorf("schemafile: invalid script: call %s (%s %q) requires a key", at, c.Call, c.Entry)
		}
		if !keyed && c.Key != "" {
			return fmt.Errorf("schemafile: invalid script: call %s (%s %q) takes no key", at, c.Call, c.Entry)
		}
		if err := c.Steps.checkKeys(at + "/steps"); err != nil {
			return err
		}
	}
	return nil
}

// Callback returns a plain callback replaying the script. Replay stops at the
// first failing call.
func (sc Script) Callback() func(*dslconfig.Builder) error {
	return func(d *dslconfig.Builder) error {
		for _, c := range sc {
			switch c.Call {
			case "set":
				d.Set(c.Entry, c.Value)
			case "setKey":
				d.SetKey(c.Entry, c.Key, c.Value)
			case "sub":
				d.Sub(c.Entry, c.Steps.Callback())
			case "subKey":
				d.SubKey(c.Entry, c.Key, c.Steps.Callback())
			default:
				return fmt.Errorf("schemafile: unknown call %q", c.Call)
			}
			if err := d.Err(); err != nil {
				return err
			}
		}
		return nil
	}
}
