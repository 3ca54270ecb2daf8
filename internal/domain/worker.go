package domain

import "strings"

// WorkerCategory enumerates field worker trades.
type WorkerCategory string

const (
	WorkerCategoryElectrician WorkerCategory = "electrician"
	WorkerCategoryLineman     WorkerCategory = "lineman"
	WorkerCategoryTechnician  WorkerCategory = "technician"
	WorkerCategoryEngineer    WorkerCategory = "engineer"
)

// ParseWorkerCategory maps a label onto the canonical category.
// "supervisor" is the admin dashboard's name for technicians.
func ParseWorkerCategory(label string) (WorkerCategory, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "electrician":
		return WorkerCategoryElectrician, true
	case "lineman":
		return WorkerCategoryLineman, true
	case "technician", "supervisor":
		return WorkerCategoryTechnician, true
	case "engineer":
		return WorkerCategoryEngineer, true
	}
	return "", false
}

// Worker is static reference data for a field worker.
type Worker struct {
	ID              string
	Name            string
	LicenseNumber   string
	Category        WorkerCategory
	ExperienceYears int
}
