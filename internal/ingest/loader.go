package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sqlpilot-ai/vecmem/internal/domain"
)

// filePattern matches the knowledge-base export files. Other files in
// the directory are ignored.
const filePattern = "semantic_*.json"

// Loader reads knowledge documents from a local directory.
type Loader struct {
	dataPath string
}

// NewLoader creates a Loader for the given knowledge-base directory.
func NewLoader(dataPath string) *Loader {
	return &Loader{dataPath: dataPath}
}

// ListFiles returns the matching document paths in lexical order.
// A missing directory is an error; a directory with no matching files
// is an empty (valid) corpus.
func (l *Loader) ListFiles() ([]string, error) {
	info, err := os.Stat(l.dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeNotFound,
				fmt.Sprintf("knowledge base directory %s", l.dataPath), domain.ErrDataDirNotFound)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", l.dataPath, err)
	}
	if !info.IsDir() {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeNotFound,
			fmt.Sprintf("%s is not a directory", l.dataPath), domain.ErrDataDirNotFound)
	}

	matches, err := filepath.Glob(filepath.Join(l.dataPath, filePattern))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", l.dataPath, err)
	}

	sort.Strings(matches)
	return matches, nil
}

// LoadDocument parses one knowledge document file.
func (l *Loader) LoadDocument(path string) (*domain.KnowledgeDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc domain.KnowledgeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &doc, nil
}
