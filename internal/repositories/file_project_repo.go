package repositories

import (
	"context"
	"encoding/json"
	"sync"

	"measurebook/internal/models"

	"github.com/rs/zerolog"
)

// fileProjectRepo keeps every project in one JSON array file. Each call reads
// the whole file; each write rewrites it atomically.
type fileProjectRepo struct {
	path string
	log  zerolog.Logger

	// mu serialises read-rewrite cycles within this process so writes to
	// different projects do not overwrite each other.
	mu sync.Mutex
}

func NewFileProjectRepo(path string, logger zerolog.Logger) ProjectRepository {
	return &fileProjectRepo{
		path: path,
		log:  logger.With().Str("repo", "file_projects").Str("path", path).Logger(),
	}
}

func (r *fileProjectRepo) load() ([]*models.Project, error) {
	var projects []*models.Project
	_, err := readJSONFile(r.path, func(data []byte) error {
		return json.Unmarshal(data, &projects)
	})
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		p.Normalize()
	}
	return projects, nil
}

// readAll is the read path: an unreadable or corrupt file is logged and
// treated as an empty collection.
func (r *fileProjectRepo) readAll() []*models.Project {
	projects, err := r.load()
	if err != nil {
		r.log.Error().Err(err).Msg("read error, using empty project list")
		return []*models.Project{}
	}
	if projects == nil {
		projects = []*models.Project{}
	}
	return projects
}

func (r *fileProjectRepo) Get(_ context.Context, id int64) (*models.Project, error) {
	for _, p := range r.readAll() {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fileProjectRepo) List(_ context.Context) ([]*models.Project, error) {
	return r.readAll(), nil
}

// Put replaces the project with the same id or appends it. A corrupt file is
// reported rather than overwritten with a one-project array.
func (r *fileProjectRepo) Put(_ context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.load()
	if err != nil {
		return err
	}

	replaced := false
	for i, p := range projects {
		if p.ID == project.ID {
			projects[i] = project
			replaced = true
			break
		}
	}
	if !replaced {
		projects = append(projects, project)
	}
	return writeJSONAtomic(r.path, projects)
}

func (r *fileProjectRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.load()
	if err != nil {
		return err
	}

	kept := make([]*models.Project, 0, len(projects))
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(projects) {
		return nil
	}
	return writeJSONAtomic(r.path, kept)
}
