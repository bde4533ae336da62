// Package batch parses YAML/JSON files listing named expressions and
// evaluates them in order.
//
// A batch file is a mapping with an "expressions" sequence. Each item is
// either a bare expression string or a single-key mapping of name to
// expression:
//
//	precision: 4
//	expressions:
//	  - "2 + 3 * 4"
//	  - area: "3.5 * 3.5"
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxSourceSize is the maximum batch file size in bytes (1 MB).
const MaxSourceSize = 1024 * 1024

// MaxEntries is the maximum number of expressions in one file.
const MaxEntries = 10000

// Entry is a single named expression.
type Entry struct {
	Name       string
	Expression string
	Line       int
}

// File is a parsed batch file.
type File struct {
	Path      string
	Precision int // 0 when unset
	Entries   []Entry
}

// ParseError represents an error encountered while parsing a batch file.
type ParseError struct {
	Message  string
	Location string // e.g., "line 4"
}

func (e *ParseError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Location, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Parse parses a YAML or JSON batch definition.
func Parse(source []byte) (*File, error) {
	if len(source) > MaxSourceSize {
		return nil, &ParseError{Message: fmt.Sprintf("batch source size %d exceeds maximum %d bytes", len(source), MaxSourceSize)}
	}

	var raw yaml.Node
	if err := yaml.Unmarshal(source, &raw); err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	if raw.Kind != yaml.DocumentNode || len(raw.Content) == 0 {
		return nil, &ParseError{Message: "empty batch definition"}
	}

	root := raw.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Message: "batch definition must be a mapping", Location: lineOf(root)}
	}

	file := &File{}
	seen := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		val := root.Content[i+1]

		switch key.Value {
		case "precision":
			p, err := strconv.Atoi(val.Value)
			if val.Kind != yaml.ScalarNode || err != nil || p < 1 || p > 17 {
				return nil, &ParseError{Message: "precision must be an integer between 1 and 17", Location: lineOf(val)}
			}
			file.Precision = p
		case "expressions":
			entries, err := parseEntries(val)
			if err != nil {
				return nil, err
			}
			file.Entries = entries
			seen = true
		default:
			return nil, &ParseError{Message: fmt.Sprintf("unknown key %q", key.Value), Location: lineOf(key)}
		}
	}

	if !seen {
		return nil, &ParseError{Message: "missing \"expressions\" list"}
	}
	return file, nil
}

func parseEntries(node *yaml.Node) ([]Entry, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, &ParseError{Message: "expressions must be a list", Location: lineOf(node)}
	}
	if len(node.Content) > MaxEntries {
		return nil, &ParseError{Message: fmt.Sprintf("too many expressions: %d (max %d)", len(node.Content), MaxEntries)}
	}

	entries := make([]Entry, 0, len(node.Content))
	names := make(map[string]bool)
	for i, item := range node.Content {
		var e Entry
		switch item.Kind {
		case yaml.ScalarNode:
			e = Entry{Name: fmt.Sprintf("#%d", i+1), Expression: item.Value, Line: item.Line}
		case yaml.MappingNode:
			if len(item.Content) != 2 {
				return nil, &ParseError{Message: "named expression must have exactly one key", Location: lineOf(item)}
			}
			nameNode, exprNode := item.Content[0], item.Content[1]
			if exprNode.Kind != yaml.ScalarNode {
				return nil, &ParseError{Message: fmt.Sprintf("expression %q must be a string", nameNode.Value), Location: lineOf(exprNode)}
			}
			if names[nameNode.Value] {
				return nil, &ParseError{Message: fmt.Sprintf("duplicate name %q", nameNode.Value), Location: lineOf(nameNode)}
			}
			names[nameNode.Value] = true
			e = Entry{Name: nameNode.Value, Expression: exprNode.Value, Line: exprNode.Line}
		default:
			return nil, &ParseError{Message: "expression must be a string or a name: expression mapping", Location: lineOf(item)}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ParseFile reads and parses a batch file from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// FindFiles expands paths into batch files. Directories contribute their
// .yaml, .yml and .json entries in name order; other paths are kept as given.
func FindFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading batch path: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading batch directory: %w", err)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if ext == ".yaml" || ext == ".yml" || ext == ".json" {
				found = append(found, filepath.Join(p, entry.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func lineOf(n *yaml.Node) string {
	if n == nil || n.Line == 0 {
		return ""
	}
	return fmt.Sprintf("line %d", n.Line)
}
