package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/log"
	"go.eggybyte.com/argconf/core/value"
)

// FileOptions configures file source behavior.
type FileOptions struct {
	Format   string     // File format: "json", "yaml" or "hcl" (default: from extension)
	Required bool       // Fail when the file does not exist
	Watch    bool       // Signal changes to the file
	Logger   log.Logger // Logger for watch failures
}

// FileSource loads configuration from a file. The origin label is the path.
type FileSource struct {
	path   string
	format string
	opts   FileOptions
	logger log.Logger
}

// NewFileSource creates a new file source.
func NewFileSource(path string, opts FileOptions) *FileSource {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = detectFileFormat(path)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}

	return &FileSource{
		path:   filepath.Clean(path),
		format: format,
		opts:   opts,
		logger: logger,
	}
}

// Name returns the file path.
func (s *FileSource) Name() string {
	return s.path
}

// Collect reads and parses the file. A missing optional file yields an empty map.
func (s *FileSource) Collect() (value.Map, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			if s.opts.Required {
				return nil, errors.Build(errors.CodeNotFound).
					WithOp("configx.FileSource").
					WithMsgf("configuration file %s not found", s.path).
					WithErr(err).
					Err()
			}
			return make(value.Map), nil
		}
		return nil, errors.Wrapf(errors.CodeUnavailable, "configx.FileSource", err, "read %s", s.path)
	}

	tree, err := parseConfigFile(data, s.path, s.format)
	if err != nil {
		return nil, errors.Wrapf(errors.CodeInvalidArgument, "configx.FileSource", err, "parse %s", s.path)
	}

	out := make(value.Map)
	if err := flatten(s.path, "", tree, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Watch signals writes, creations, renames and removals of the file. The
// parent directory is watched so editors that replace files are followed.
func (s *FileSource) Watch(ctx context.Context) (<-chan struct{}, error) {
	if !s.opts.Watch {
		return nil, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, err
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != s.path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					s.logger.Debug("configuration file changed", log.Str("path", s.path), log.Str("op", event.Op.String()))
					notify(ch)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error(err, "file watcher error", log.Str("path", s.path))
			}
		}
	}()

	return ch, nil
}

// detectFileFormat detects file format from extension.
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".hcl":
		return "hcl"
	default:
		return "json"
	}
}

// parseConfigFile parses file content into a tree of plain Go values.
func parseConfigFile(data []byte, filename, format string) (map[string]any, error) {
	switch format {
	case "json":
		return parseJSONConfig(data)
	case "yaml", "yml":
		return parseYAMLConfig(data)
	case "hcl":
		return parseHCLConfig(data, filename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func parseJSONConfig(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tree map[string]any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return normalizeJSON(tree).(map[string]any), nil
}

// normalizeJSON turns json.Number into int64 or float64.
func normalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = normalizeJSON(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeJSON(t[k])
		}
		return t
	}
	return v
}

func parseYAMLConfig(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	if tree == nil {
		tree = make(map[string]any)
	}
	return normalizeYAML(tree).(map[string]any), nil
}

// normalizeYAML converts maps with non-string keys into map[string]any.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k := range t {
			t[k] = normalizeYAML(t[k])
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	}
	return v
}

// parseHCLConfig reads top-level attributes. Nested settings are written as
// object expressions (db = { dsn = "..." }); blocks are not supported.
func parseHCLConfig(data []byte, filename string) (map[string]any, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	tree := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		plain, err := ctyToAny(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		tree[name] = plain
	}
	return tree, nil
}

// ctyToAny converts a known cty value into plain Go values.
func ctyToAny(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		var out []any
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			e, err := ctyToAny(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			e, err := ctyToAny(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = e
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
}
