package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format is a config file encoding, named by its file extension.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
)

// extensions maps every accepted config file extension to its format.
var extensions = map[string]Format{
	"yaml":  FormatYAML,
	"yml":   FormatYAML,
	"toml":  FormatTOML,
	"json":  FormatJSON,
	"jsonc": FormatJSONC,
	"json5": FormatJSONC,
}

const configBaseName = "config"

// Source locates the file position that set a config key.
type Source struct {
	File   string
	Line   int
	Column int
}

// ValidationError reports an invalid config key.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ErrMultipleConfigFiles is returned when a config directory holds more than
// one config file.
var ErrMultipleConfigFiles = errors.New("only one config file is allowed")

type LoadResult struct {
	Config  *Config
	Path    string            // empty when defaults were used
	Format  Format            // empty when defaults were used
	Sources map[string]Source // key path -> position (yaml only)
}

// DefaultConfigDir returns ~/.config/twm.
func DefaultConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "twm"), nil
}

// Load reads the configuration from the standard location.
func Load() (*LoadResult, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadDir(dir)
}

// LoadDir loads the single config.<ext> file in dir. Defaults are used when
// there is none.
func LoadDir(dir string) (*LoadResult, error) {
	path, err := FindConfigFile(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Sources: map[string]Source{}}, nil
	}
	return LoadFromPath(path)
}

// FindConfigFile returns the config file in dir, or "" when there is none.
// More than one candidate is an error.
func FindConfigFile(dir string) (string, error) {
	var found []string
	for ext := range extensions {
		path := filepath.Join(dir, configBaseName+"."+ext)
		exists, err := pathExists(path)
		if err != nil {
			return "", err
		}
		if exists {
			found = append(found, path)
		}
	}

	switch len(found) {
	case 0:
		return "", nil
	case 1:
		return found[0], nil
	default:
		sort.Strings(found)
		return "", fmt.Errorf("%w, found %d: %s", ErrMultipleConfigFiles, len(found), strings.Join(found, ", "))
	}
}

// FormatForPath returns the format implied by path's extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	format, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
	return format, nil
}

// LoadFromPath decodes path over the defaults and validates the result.
// Unknown keys are rejected in every format.
func LoadFromPath(path string) (*LoadResult, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	sources := map[string]Source{}

	switch format {
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		sources = collectSources(&doc, path)
		err = decodeStrictYAML(data, cfg)
	case FormatTOML:
		err = decodeStrictTOML(data, cfg)
	case FormatJSON:
		err = decodeStrictJSON(data, cfg)
	case FormatJSONC:
		err = decodeStrictJSON(jsonc.ToJSON(data), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, attachSourceContext(err, sources)
	}

	return &LoadResult{
		Config:  cfg,
		Path:    path,
		Format:  format,
		Sources: sources,
	}, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

func decodeStrictTOML(data []byte, out any) error {
	md, err := toml.Decode(string(data), out)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeStrictJSON(data []byte, out any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// Encode writes cfg to w in format.
func Encode(w io.Writer, cfg *Config, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(cfg)
	case FormatJSON, FormatJSONC:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func collectSources(doc *yaml.Node, file string) map[string]Source {
	out := make(map[string]Source)
	if doc == nil {
		return out
	}
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	collectSourcesRec(node, file, "", out)
	return out
}

func collectSourcesRec(node *yaml.Node, file string, prefix string, out map[string]Source) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			valNode := node.Content[i+1]
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			out[path] = Source{File: file, Line: valNode.Line, Column: valNode.Column}
			collectSourcesRec(valNode, file, path, out)
		}
	case yaml.SequenceNode:
		if prefix != "" {
			out[prefix] = Source{File: file, Line: node.Line, Column: node.Column}
		}
		for i, item := range node.Content {
			path := fmt.Sprintf("%s[%d]", prefix, i)
			out[path] = Source{File: file, Line: item.Line, Column: item.Column}
			collectSourcesRec(item, file, path, out)
		}
	}
}

func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}
