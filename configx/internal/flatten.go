package internal

import (
	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/value"
)

// flatten writes every leaf of tree into out under a dotted key. Maps nested
// inside arrays stay tables.
func flatten(origin, prefix string, tree map[string]any, out value.Map) error {
	for k, raw := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		if sub, ok := raw.(map[string]any); ok {
			if err := flatten(origin, key, sub, out); err != nil {
				return err
			}
			continue
		}

		v, err := value.From(origin, raw)
		if err != nil {
			return errors.Build(errors.CodeInvalidArgument).
				WithOp("configx.flatten").
				WithKey(key).
				WithErr(err).
				Err()
		}
		out[key] = v
	}
	return nil
}
