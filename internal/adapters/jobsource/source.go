// Package jobsource loads job postings and the candidate profile that runs
// score against.
package jobsource

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/okian/autoapply/internal/domain/model"
)

//go:embed jobs.json
var embeddedJobs []byte

//go:embed schema.json
var postingsSchema string

var compiledSchema = mustCompileSchema()

// Source provides the postings a run scores.
type Source interface {
	Load(ctx context.Context) ([]model.JobPosting, error)
}

// FileSource reads a JSON array of postings from disk on every Load.
type FileSource struct {
	path string
}

// NewFileSource returns a Source backed by path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load implements Source. Every failure wraps ErrSourceUnavailable.
func (s *FileSource) Load(ctx context.Context) ([]model.JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	jobs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return jobs, nil
}

// Parse validates data against the postings schema and decodes it.
func Parse(data []byte) ([]model.JobPosting, error) {
	result, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, strings.Join(msgs, "; "))
	}

	var jobs []model.JobPosting
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return jobs, nil
}

// EmbeddedSource serves the built-in fixture.
type EmbeddedSource struct{}

// Load implements Source.
func (EmbeddedSource) Load(context.Context) ([]model.JobPosting, error) {
	return Embedded(), nil
}

// Embedded returns a fresh copy of the built-in postings.
func Embedded() []model.JobPosting {
	jobs, err := Parse(embeddedJobs)
	if err != nil {
		panic(fmt.Sprintf("jobsource: embedded fixture: %v", err))
	}
	return jobs
}

// New returns a FileSource for path, or the embedded fixture when path is empty.
func New(path string) Source {
	if path == "" {
		return EmbeddedSource{}
	}
	return NewFileSource(path)
}

func mustCompileSchema() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(postingsSchema))
	if err != nil {
		panic(fmt.Sprintf("jobsource: postings schema: %v", err))
	}
	return schema
}
