package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/reqgraph/internal/ir"
)

// LoadStage identifies the step of LoadOntologyDir that failed.
type LoadStage string

const (
	StageNotFound LoadStage = "not_found"
	StageScan     LoadStage = "scan"
	StageNoFiles  LoadStage = "no_files"
	StageLoad     LoadStage = "load"
	StageBuild    LoadStage = "build"
	StageCompile  LoadStage = "compile"
)

// LoadError reports why an ontology directory could not be loaded.
type LoadError struct {
	Stage LoadStage
	Dir   string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load ontology %s: %v", e.Dir, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loaded is a compiled ontology directory.
type Loaded struct {
	Spec      *ir.OntologySpec
	FileCount int
}

// LoadOntologyDir loads every CUE file in dir as one instance and compiles
// it with CompileOntology.
func LoadOntologyDir(dir string) (*Loaded, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Stage: StageNotFound, Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{Stage: StageNotFound, Dir: dir, Err: fmt.Errorf("not a directory")}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Stage: StageScan, Dir: dir, Err: err}
	}
	if len(files) == 0 {
		return nil, &LoadError{Stage: StageNoFiles, Dir: dir, Err: fmt.Errorf("no CUE files found")}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Stage: StageLoad, Dir: dir, Err: fmt.Errorf("no CUE instances loaded")}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Stage: StageLoad, Dir: dir, Err: inst.Err}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Stage: StageBuild, Dir: dir, Err: formatCUEError(err)}
	}

	spec, err := CompileOntology(value)
	if err != nil {
		return nil, &LoadError{Stage: StageCompile, Dir: dir, Err: err}
	}
	return &Loaded{Spec: spec, FileCount: len(files)}, nil
}

// FindCUEFiles returns the .cue files directly inside dir, sorted by name.
// Subdirectories are separate CUE packages and are skipped.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}
