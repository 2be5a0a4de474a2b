package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func loadStage(t *testing.T, err error) LoadStage {
	t.Helper()
	var le *LoadError
	require.True(t, errors.As(err, &le), "expected *LoadError, got %T", err)
	return le.Stage
}

func TestLoadOntologyDirMergesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "classes.cue", `
name: "split"
classes: {
	"core.Device": {}
	"core.Widget": parents: ["core.Device"]
}
`)
	writeFile(t, dir, "individuals.cue", `
individuals: X: class: "core.Widget"
`)
	writeFile(t, dir, "notes.txt", "ignored")

	loaded, err := LoadOntologyDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.FileCount)
	assert.Equal(t, "split", loaded.Spec.Name)
	assert.Len(t, loaded.Spec.Classes, 2)
	require.Len(t, loaded.Spec.Individuals, 1)
	assert.Equal(t, "X", loaded.Spec.Individuals[0].Name)
}

func TestLoadOntologyDirErrors(t *testing.T) {
	_, err := LoadOntologyDir(filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, StageNotFound, loadStage(t, err))

	file := filepath.Join(t.TempDir(), "x.cue")
	require.NoError(t, os.WriteFile(file, []byte("a: 1"), 0o644))
	_, err = LoadOntologyDir(file)
	assert.Equal(t, StageNotFound, loadStage(t, err))

	_, err = LoadOntologyDir(t.TempDir())
	assert.Equal(t, StageNoFiles, loadStage(t, err))

	conflict := t.TempDir()
	writeFile(t, conflict, "a.cue", `name: "a"`)
	writeFile(t, conflict, "b.cue", `name: "b"`)
	_, err = LoadOntologyDir(conflict)
	assert.Contains(t, []LoadStage{StageBuild, StageCompile}, loadStage(t, err))

	broken := t.TempDir()
	writeFile(t, broken, "a.cue", `name: {`)
	_, err = LoadOntologyDir(broken)
	assert.Equal(t, StageLoad, loadStage(t, err))

	empty := t.TempDir()
	writeFile(t, empty, "a.cue", `name: "nothing"`)
	_, err = LoadOntologyDir(empty)
	assert.Equal(t, StageCompile, loadStage(t, err))
}
