package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"gopkg.in/yaml.v3"

	"github.com/DeanBeanBEER-WARE/interact/internal/rule"
)

// Error code constants for file loading, unified across commands.
// Rule-level diagnostics carry their own E2xx codes from internal/rule.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeLoadFailed  = "E004" // Parse/load failed
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeNotAList    = "E008" // Top-level value is not a list
)

// LoadError is an error that occurred while loading a rule file.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadDeclarations reads a rule file into the raw declaration list.
//
// The format is chosen by extension: .yaml/.yml/.json parse as YAML
// (JSON is a YAML subset), .cue builds through the CUE evaluator. The
// top level must be a list of rule objects, either directly or under a
// "rules" field; anything else is fatal, matching the engine's
// not-a-list contract. Unknown fields inside a rule are ignored.
func LoadDeclarations(path string) ([]rule.Declaration, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rule file not found: %s", path), Err: err}
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json":
		return loadYAML(path)
	case ".cue":
		return loadCUE(path)
	default:
		return nil, &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("unsupported rule file extension %q (want .yaml, .yml, .json, or .cue)", filepath.Ext(path)),
		}
	}
}

func loadYAML(path string) ([]rule.Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "read rule file", Err: err}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "parse rule file", Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &LoadError{Code: ErrCodeNotAList, Message: "rule file is empty", Err: rule.ErrNotAList}
	}

	root := doc.Content[0]
	if root.Kind == yaml.MappingNode {
		// Allow a single top-level "rules" key.
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value == "rules" {
				root = root.Content[i+1]
				break
			}
		}
	}
	if root.Kind != yaml.SequenceNode {
		return nil, &LoadError{
			Code:    ErrCodeNotAList,
			Message: "top-level value must be a list of rules",
			Err:     rule.ErrNotAList,
		}
	}

	decls := []rule.Declaration{}
	if err := root.Decode(&decls); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "decode rule list", Err: err}
	}
	return decls, nil
}

func loadCUE(path string) ([]rule.Declaration, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{path}, &load.Config{})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "loading CUE file", Err: inst.Err}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: "building CUE value", Err: err}
	}

	list := value
	if list.Kind() != cue.ListKind {
		list = value.LookupPath(cue.ParsePath("rules"))
	}
	if !list.Exists() || list.Kind() != cue.ListKind {
		return nil, &LoadError{
			Code:    ErrCodeNotAList,
			Message: "top-level value must be a list of rules (or carry one under \"rules\")",
			Err:     rule.ErrNotAList,
		}
	}

	iter, err := list.List()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: "iterating rule list", Err: err}
	}
	decls := []rule.Declaration{}
	for iter.Next() {
		var d rule.Declaration
		if err := iter.Value().Decode(&d); err != nil {
			return nil, &LoadError{
				Code:    ErrCodeBuildFailed,
				Message: fmt.Sprintf("decode rule %d", len(decls)),
				Err:     err,
			}
		}
		decls = append(decls, d)
	}
	return decls, nil
}
