package main

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/value"
)

type renderer struct {
	format  string
	origins bool
}

type originEntry struct {
	Value  any    `json:"value" yaml:"value"`
	Origin string `json:"origin" yaml:"origin"`
}

func newRenderer(format string, origins bool) (renderer, error) {
	switch format {
	case "yaml", "json":
		return renderer{format: format, origins: origins}, nil
	}
	return renderer{}, errors.Build(errors.CodeInvalidArgument).
		WithOp("argconf.output").
		WithMsgf("unknown output format %q (want yaml or json)", format).
		Err()
}

func (r renderer) render(snapshot value.Map) ([]byte, error) {
	var doc any
	if r.origins {
		entries := make(map[string]originEntry, len(snapshot))
		for k, v := range snapshot {
			entries[k] = originEntry{Value: v.Interface(), Origin: v.Origin()}
		}
		doc = entries
	} else {
		plain := make(map[string]any, len(snapshot))
		for k, v := range snapshot {
			plain[k] = v.Interface()
		}
		doc = plain
	}

	if r.format == "json" {
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, "argconf.render", err)
		}
		return append(b, '\n'), nil
	}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "argconf.render", err)
	}
	return b, nil
}
