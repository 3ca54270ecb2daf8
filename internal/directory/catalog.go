package directory

import (
	"fmt"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

// DefaultPlaceholder is shown for a type without its own prompt.
const DefaultPlaceholder = "Please describe your issue in detail..."

// ComplaintType is one selectable complaint category.
type ComplaintType struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
}

// Catalog maps complaint types to their prompts and priorities to the
// resolution time promised on the receipt.
type Catalog struct {
	types       []ComplaintType
	byID        map[string]ComplaintType
	resolutions map[domain.TaskPriority]string
}

// NewCatalog validates and indexes the catalog.
func NewCatalog(types []ComplaintType, resolutions map[domain.TaskPriority]string) (*Catalog, error) {
	c := &Catalog{
		types:       make([]ComplaintType, 0, len(types)),
		byID:        make(map[string]ComplaintType, len(types)),
		resolutions: make(map[domain.TaskPriority]string, len(resolutions)),
	}
	for _, t := range types {
		if t.ID == "" {
			return nil, fmt.Errorf("complaint type %q has no id", t.Label)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate complaint type %s", t.ID)
		}
		c.byID[t.ID] = t
		c.types = append(c.types, t)
	}
	for p, hint := range resolutions {
		if !p.Valid() {
			return nil, fmt.Errorf("unknown priority %q in resolution hints", p)
		}
		c.resolutions[p] = hint
	}
	return c, nil
}

// Types lists complaint types in declared order.
func (c *Catalog) Types() []ComplaintType {
	return append([]ComplaintType(nil), c.types...)
}

// Type looks up a complaint type.
func (c *Catalog) Type(id string) (ComplaintType, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Placeholder returns the description prompt for a complaint type.
func (c *Catalog) Placeholder(id string) string {
	if t, ok := c.byID[id]; ok && t.Placeholder != "" {
		return t.Placeholder
	}
	return DefaultPlaceholder
}

// ResolutionHint returns the expected resolution window for a priority.
func (c *Catalog) ResolutionHint(p domain.TaskPriority) (string, bool) {
	hint, ok := c.resolutions[p]
	return hint, ok
}
