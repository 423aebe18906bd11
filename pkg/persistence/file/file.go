// Package file provides a file-based persistence implementation storing one
// JSON document per automation and per log entry.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dukex/formtrigger/pkg/persistence"
)

const (
	automationsDir = "automations"
	logsDir        = "logs"
)

var _ persistence.Persistence = (*Persistence)(nil)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root string
	mu   sync.RWMutex
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	return &Persistence{root: strings.Replace(root, "file://", "", 1)}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// validName rejects ids that would escape their directory.
func validName(id string) bool {
	return id != "" && id != "." && id != ".." && filepath.Base(id) == id && !strings.ContainsAny(id, `/\`)
}

func (fp *Persistence) path(dir, id string) string {
	return filepath.Join(fp.root, dir, id+".json")
}

// read decodes the document id of dir into v. found is false when the
// document does not exist.
func (fp *Persistence) read(dir, id string, v any) (found bool, err error) {
	if !validName(id) {
		return false, nil
	}

	body, err := os.ReadFile(fp.path(dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s/%s: %w", dir, id, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s/%s: %w", dir, id, err)
	}

	return true, nil
}

func (fp *Persistence) write(dir, id string, v any) error {
	if !validName(id) {
		return fmt.Errorf("invalid document id %q", id)
	}

	if err := os.MkdirAll(filepath.Join(fp.root, dir), 0o750); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", dir, id, err)
	}

	if err := os.WriteFile(fp.path(dir, id), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", dir, id, err)
	}

	return nil
}

// remove deletes a document. found is false when it did not exist.
func (fp *Persistence) remove(dir, id string) (found bool, err error) {
	if !validName(id) {
		return false, nil
	}

	if err := os.Remove(fp.path(dir, id)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to delete %s/%s: %w", dir, id, err)
	}

	return true, nil
}

// ids lists the document ids stored in dir.
func (fp *Persistence) ids(dir string) ([]string, error) {
	files, err := fs.Glob(os.DirFS(filepath.Join(fp.root, dir)), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	ids := make([]string, 0, len(files))
	for _, file := range files {
		ids = append(ids, strings.TrimSuffix(file, ".json"))
	}

	return ids, nil
}
