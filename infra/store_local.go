package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps one JSON file per workflow under <dataDir>/workflows.
type LocalStore struct {
	dir string
}

// NewLocalStore returns a store rooted at dataDir. Empty means DefaultDataDir.
func NewLocalStore(dataDir string) *LocalStore {
	return &LocalStore{dir: WorkflowsDir(dataDir)}
}

func (l *LocalStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid workflow id %q", id)
	}
	return filepath.Join(l.dir, id+".json"), nil
}

func (l *LocalStore) Save(ctx context.Context, w StoredWorkflow) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	w = prepare(w)
	p, err := l.path(w.ID)
	if err != nil {
		return "", err
	}
	if err := ensureDir(l.dir); err != nil {
		return "", fmt.Errorf("create workflows dir: %w", err)
	}
	b, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode workflow %s: %w", w.ID, err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, p); err != nil {
		return "", err
	}
	return w.ID, nil
}

func (l *LocalStore) Get(ctx context.Context, id string) (StoredWorkflow, error) {
	select {
	case <-ctx.Done():
		return StoredWorkflow{}, ctx.Err()
	default:
	}
	p, err := l.path(id)
	if err != nil {
		return StoredWorkflow{}, err
	}
	return readStored(p)
}

func readStored(p string) (StoredWorkflow, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return StoredWorkflow{}, ErrNotFound
		}
		return StoredWorkflow{}, err
	}
	var w StoredWorkflow
	if err := json.Unmarshal(b, &w); err != nil {
		return StoredWorkflow{}, fmt.Errorf("decode %s: %w", filepath.Base(p), err)
	}
	return w, nil
}

func (l *LocalStore) List(ctx context.Context) ([]Summary, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, err
	}
	out := []Summary{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		w, err := readStored(filepath.Join(l.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, w.Summary())
	}
	sortSummaries(out)
	return out, nil
}

func (l *LocalStore) Delete(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	p, err := l.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

var _ DocumentStore = (*LocalStore)(nil)
