package directory

import (
	"strings"
	"testing"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

const sample = `
workers:
  - {id: EMP001, name: Amit, license: EL-1, category: electrician, experience_years: 8}
  - {id: EMP003, name: Sunil, license: TS-3, category: supervisor, experience_years: 15}
  - {id: EMP005, name: Rajesh, license: EL-5, category: electrician, experience_years: 12}
complaint_types:
  - {id: power-outage, label: Power Outage, placeholder: Affected area...}
  - {id: other, label: Other}
resolution_hints:
  high: 4-8 hours
  low: 48-72 hours
accounts:
  - {role: admin, email: admin@demo.com, password: admin123}
`

func TestLoadBuildsDirectory(t *testing.T) {
	b, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	w, ok := b.Workers.FindByID("EMP003")
	if !ok {
		t.Fatal("EMP003 not found")
	}
	if w.Category != domain.WorkerCategoryTechnician {
		t.Errorf("supervisor should map to technician, got %s", w.Category)
	}
	if _, ok := b.Workers.FindByID("EMP999"); ok {
		t.Error("unexpected worker EMP999")
	}

	electricians := b.Workers.ListByCategory(domain.WorkerCategoryElectrician)
	if len(electricians) != 2 || electricians[0].ID != "EMP001" || electricians[1].ID != "EMP005" {
		t.Errorf("electricians not in insertion order: %+v", electricians)
	}
	if got := b.Workers.ListByCategory(domain.WorkerCategoryEngineer); len(got) != 0 {
		t.Errorf("expected no engineers, got %d", len(got))
	}
	if len(b.Workers.All()) != 3 {
		t.Errorf("expected 3 workers")
	}
	if len(b.Accounts) != 1 || b.Accounts[0].Email != "admin@demo.com" {
		t.Errorf("unexpected accounts %+v", b.Accounts)
	}
}

func TestListByCategoryReturnsCopy(t *testing.T) {
	b, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	list := b.Workers.ListByCategory(domain.WorkerCategoryElectrician)
	list[0].Name = "changed"
	if w, _ := b.Workers.FindByID("EMP001"); w.Name != "Amit" {
		t.Error("directory mutated through returned slice")
	}
	if again := b.Workers.ListByCategory(domain.WorkerCategoryElectrician); again[0].Name != "Amit" {
		t.Error("category index mutated through returned slice")
	}
}

func TestCatalog(t *testing.T) {
	b, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if hint, ok := b.Catalog.ResolutionHint(domain.TaskPriorityHigh); !ok || hint != "4-8 hours" {
		t.Errorf("high hint = %q, %v", hint, ok)
	}
	if _, ok := b.Catalog.ResolutionHint(domain.TaskPriorityMedium); ok {
		t.Error("medium hint should be absent")
	}
	if got := b.Catalog.Placeholder("power-outage"); got != "Affected area..." {
		t.Errorf("placeholder = %q", got)
	}
	if got := b.Catalog.Placeholder("other"); got != DefaultPlaceholder {
		t.Errorf("empty placeholder should fall back, got %q", got)
	}
	if got := b.Catalog.Placeholder("nope"); got != DefaultPlaceholder {
		t.Errorf("unknown type should fall back, got %q", got)
	}
	types := b.Catalog.Types()
	if len(types) != 2 || types[0].ID != "power-outage" {
		t.Errorf("unexpected types %+v", types)
	}
}

func TestLoadRejectsBadSources(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "duplicate worker",
			src: `workers:
  - {id: EMP001, name: A, category: electrician}
  - {id: EMP001, name: B, category: lineman}`,
			want: "duplicate worker id",
		},
		{
			name: "unknown category",
			src: `workers:
  - {id: EMP001, name: A, category: plumber}`,
			want: "unknown category",
		},
		{
			name: "unknown priority",
			src: `resolution_hints:
  urgent: 1 hour`,
			want: "unknown priority",
		},
		{
			name: "unknown role",
			src: `accounts:
  - {role: root, email: a@b.co, password: x}`,
			want: "unknown role",
		},
		{
			name: "unknown field",
			src:  `shifts: []`,
			want: "decode directory source",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.src))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestShippedSourceLoads(t *testing.T) {
	b, err := LoadFile("../../configs/directory.yaml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(b.Workers.All()) != 12 {
		t.Errorf("expected 12 workers, got %d", len(b.Workers.All()))
	}
	for _, c := range []domain.WorkerCategory{
		domain.WorkerCategoryElectrician, domain.WorkerCategoryLineman,
		domain.WorkerCategoryTechnician, domain.WorkerCategoryEngineer,
	} {
		if n := len(b.Workers.ListByCategory(c)); n != 3 {
			t.Errorf("%s: expected 3 workers, got %d", c, n)
		}
	}
	if hint, _ := b.Catalog.ResolutionHint(domain.TaskPriorityHigh); hint != "4-8 hours" {
		t.Errorf("high hint = %q", hint)
	}
	if len(b.Accounts) != 3 {
		t.Errorf("expected 3 demo accounts, got %d", len(b.Accounts))
	}
}
