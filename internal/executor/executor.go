// Package executor applies plan operations to the filesystem.
package executor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pders01/extraction-plan/internal/execlog"
	"github.com/pders01/extraction-plan/internal/models"
	"github.com/pders01/extraction-plan/internal/plan"
)

// Sentinel failures of the operation contract. They are logged and turn
// into a false result; they never abort a run.
var (
	ErrNoTarget       = errors.New("no target location")
	ErrNoContent      = errors.New("no content to write")
	ErrTargetMissing  = errors.New("target does not exist")
	ErrContentMissing = errors.New("current content not found in target")
	ErrUnsupported    = errors.New("unsupported operation type")
)

type handler func(path string, op models.Operation) error

// Executor dispatches operations to their handlers
type Executor struct {
	workdir  string
	log      *execlog.Log
	handlers map[models.OperationKind]handler
}

// New returns an executor resolving relative targets against workdir
func New(workdir string, log *execlog.Log) *Executor {
	e := &Executor{workdir: workdir, log: log}
	e.handlers = map[models.OperationKind]handler{
		models.KindCreate:      e.create,
		models.KindAdd:         e.add,
		models.KindModify:      e.modify,
		models.KindDelete:      e.delete,
		models.KindRestructure: e.restructure,
	}
	return e
}

// Execute applies op and reports whether it succeeded. Every failure is
// logged here; none is returned.
func (e *Executor) Execute(op models.Operation) bool {
	target := op.TargetPath()
	if err := e.dispatch(op); err != nil {
		e.log.Errorf("Operation %d (%s %s) failed: %v", op.Number, op.Kind, target, err)
		return false
	}
	e.log.Infof("Operation %d (%s %s) succeeded", op.Number, op.Kind, target)
	return true
}

func (e *Executor) dispatch(op models.Operation) error {
	h, ok := e.handlers[op.Kind]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnsupported, op.Kind)
	}
	target := op.TargetPath()
	if target == "" {
		return ErrNoTarget
	}
	return h(plan.Resolve(e.workdir, target), op)
}

// content is the text CREATE and ADD write: the content to add of a safe
// operation, or the proposed content of an approved risky one
func content(op models.Operation) *string {
	if op.Safe != nil {
		return op.Safe.ContentToAdd
	}
	if op.Risky != nil {
		return op.Risky.ProposedContent
	}
	return nil
}

func (e *Executor) create(path string, op models.Operation) error {
	text := content(op)
	if text == nil || *text == "" {
		return ErrNoContent
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(*text), 0644)
}

func (e *Executor) add(path string, op models.Operation) error {
	text := content(op)
	if text == nil || *text == "" {
		return ErrNoContent
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return e.create(path, op)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString("\n" + *text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// modify replaces every occurrence of the current content with the
// proposed content. The file is only rewritten when the current content
// is found verbatim, and the rewrite replaces the file in one rename.
func (e *Executor) modify(path string, op models.Operation) error {
	if op.Risky == nil || op.Risky.CurrentContent == nil || *op.Risky.CurrentContent == "" {
		return fmt.Errorf("%w: no current content given", ErrContentMissing)
	}
	if op.Risky.ProposedContent == nil {
		return fmt.Errorf("%w: no proposed content given", ErrNoContent)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrTargetMissing
	}
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	current := *op.Risky.CurrentContent
	if !strings.Contains(string(data), current) {
		return ErrContentMissing
	}
	updated := strings.ReplaceAll(string(data), current, *op.Risky.ProposedContent)

	return replaceFile(path, []byte(updated), info.Mode().Perm())
}

func (e *Executor) delete(path string, op models.Operation) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrTargetMissing
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

func (e *Executor) restructure(path string, op models.Operation) error {
	e.log.Warnf("RESTRUCTURE of %s is not implemented; operation %d skipped", op.TargetPath(), op.Number)
	return fmt.Errorf("%w %q", ErrUnsupported, models.KindRestructure)
}

// replaceFile writes data next to path and renames it into place
func replaceFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
