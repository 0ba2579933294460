// Package infra holds the storage collaborators of the CLI and the HTTP
// server. The build pipeline itself never persists anything.
package infra

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Tsinling0525/flowsmith/model"
)

var ErrNotFound = errors.New("workflow not found")

// StoredWorkflow is a built document with the outcome of its validation.
type StoredWorkflow struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Score     int             `json:"score"`
	IsValid   bool            `json:"isValid"`
	CreatedAt time.Time       `json:"createdAt"`
	Document  *model.Document `json:"workflow"`
}

// Summary is the listing form of a StoredWorkflow.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	IsValid   bool      `json:"isValid"`
	Nodes     int       `json:"nodes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (w StoredWorkflow) Summary() Summary {
	s := Summary{ID: w.ID, Name: w.Name, Score: w.Score, IsValid: w.IsValid, CreatedAt: w.CreatedAt}
	if w.Document != nil {
		s.Nodes = len(w.Document.Nodes)
	}
	return s
}

// DocumentStore keeps built workflows by id.
type DocumentStore interface {
	// Save stores w and returns its id. An empty id is taken from the
	// document, or generated.
	Save(ctx context.Context, w StoredWorkflow) (string, error)
	Get(ctx context.Context, id string) (StoredWorkflow, error)
	// List returns summaries, newest first.
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}

// prepare fills the id, name and timestamp of w before it is stored.
func prepare(w StoredWorkflow) StoredWorkflow {
	if w.ID == "" && w.Document != nil {
		w.ID = w.Document.ID
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Name == "" && w.Document != nil {
		w.Name = w.Document.Name
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	return w
}

func sortSummaries(out []Summary) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
}

// OpenStore returns the store for a configured driver: "memory" or "local".
func OpenStore(driver, dataDir string) (DocumentStore, error) {
	switch driver {
	case "", "memory":
		return NewMemStore(), nil
	case "local":
		return NewLocalStore(dataDir), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}
