package domain

import (
	"errors"
	"strings"

	"github.com/listly/listly-backend/internal/weburl"
)

// Validate checks the create form in the order the user sees the messages
// and normalizes the request in place.
func (r *CreateProjectRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrUnauthenticated
	}

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrNameRequired
	}

	if strings.TrimSpace(r.TargetURL) == "" {
		return ErrURLRequired
	}
	normalized, err := weburl.NormalizePublic(r.TargetURL)
	if errors.Is(err, weburl.ErrPrivateHost) {
		return ErrPrivateURL
	}
	if err != nil {
		return ErrInvalidURL
	}
	r.TargetURL = normalized
	r.Description = strings.TrimSpace(r.Description)

	r.DataTypes = NormalizeDataTypes(r.DataTypes)
	if len(r.DataTypes) == 0 {
		return ErrNoDataTypes
	}
	return nil
}

// NormalizeDataTypes drops unknown names and duplicates and returns the
// remaining types in form order.
func NormalizeDataTypes(in []DataType) []DataType {
	seen := make(map[DataType]bool, len(in))
	for _, dt := range in {
		seen[DataType(strings.ToLower(strings.TrimSpace(string(dt))))] = true
	}

	out := make([]DataType, 0, len(seen))
	for _, dt := range AllDataTypes {
		if seen[dt] {
			out = append(out, dt)
		}
	}
	return out
}

// Has reports whether dt is among types.
func Has(types []DataType, dt DataType) bool {
	for _, t := range types {
		if t == dt {
			return true
		}
	}
	return false
}
