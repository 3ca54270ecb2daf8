package directory

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

// Source is the on-disk shape of the reference data file.
type Source struct {
	Workers         []WorkerEntry     `yaml:"workers"`
	ComplaintTypes  []ComplaintEntry  `yaml:"complaint_types"`
	ResolutionHints map[string]string `yaml:"resolution_hints"`
	Accounts        []Account         `yaml:"accounts"`
}

// WorkerEntry is one worker row. Category accepts "supervisor" as an alias
// of technician.
type WorkerEntry struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	License         string `yaml:"license"`
	Category        string `yaml:"category"`
	ExperienceYears int    `yaml:"experience_years"`
}

// ComplaintEntry is one complaint type row.
type ComplaintEntry struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Placeholder string `yaml:"placeholder"`
}

// Account is a demo credential seeded into the credential store.
type Account struct {
	Role     string `yaml:"role"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Bundle is everything built from a Source.
type Bundle struct {
	Workers  *Directory
	Catalog  *Catalog
	Accounts []Account
}

// LoadFile reads and builds the reference data at path.
func LoadFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open directory source: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a YAML source and builds the bundle.
func Load(r io.Reader) (*Bundle, error) {
	var src Source
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&src); err != nil {
		return nil, fmt.Errorf("decode directory source: %w", err)
	}
	return src.Build()
}

// Build validates the source and indexes it.
func (s Source) Build() (*Bundle, error) {
	workers := make([]domain.Worker, 0, len(s.Workers))
	for _, entry := range s.Workers {
		category, ok := domain.ParseWorkerCategory(entry.Category)
		if !ok {
			return nil, fmt.Errorf("worker %s: unknown category %q", entry.ID, entry.Category)
		}
		workers = append(workers, domain.Worker{
			ID:              entry.ID,
			Name:            entry.Name,
			LicenseNumber:   entry.License,
			Category:        category,
			ExperienceYears: entry.ExperienceYears,
		})
	}
	dir, err := NewDirectory(workers)
	if err != nil {
		return nil, err
	}

	types := make([]ComplaintType, 0, len(s.ComplaintTypes))
	for _, entry := range s.ComplaintTypes {
		types = append(types, ComplaintType(entry))
	}
	hints := make(map[domain.TaskPriority]string, len(s.ResolutionHints))
	for k, v := range s.ResolutionHints {
		hints[domain.TaskPriority(k)] = v
	}
	catalog, err := NewCatalog(types, hints)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(s.Accounts))
	for _, acc := range s.Accounts {
		if _, ok := domain.ParseRole(acc.Role); !ok {
			return nil, fmt.Errorf("account %s: unknown role %q", acc.Email, acc.Role)
		}
		if acc.Email == "" || acc.Password == "" {
			return nil, fmt.Errorf("account for role %s needs email and password", acc.Role)
		}
		key := acc.Role + "|" + acc.Email
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate account %s (%s)", acc.Email, acc.Role)
		}
		seen[key] = struct{}{}
	}

	return &Bundle{Workers: dir, Catalog: catalog, Accounts: append([]Account(nil), s.Accounts...)}, nil
}
