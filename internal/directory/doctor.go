// Package directory provides read-only access to the doctor registry.
package directory

import (
	"context"
	"errors"
)

// Doctor is a registry entry. Timings is a free-text schedule description
// maintained by clinic staff; it may be empty.
type Doctor struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Location   string `json:"location"`
	Timings    string `json:"timings,omitempty"`
}

// ErrDoctorNotFound is returned when a doctor id has no registry entry.
var ErrDoctorNotFound = errors.New("directory: doctor not found")

// Repository looks up doctors by search criteria or id.
type Repository interface {
	// Search filters by city and by doctor name or department. A doctor
	// name, when present, filters instead of the department.
	Search(ctx context.Context, city, department, doctorName string) ([]Doctor, error)
	GetByID(ctx context.Context, id int64) (*Doctor, error)
}
