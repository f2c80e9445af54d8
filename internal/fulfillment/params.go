package fulfillment

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"soundcraft/internal/services"
	"soundcraft/internal/variables"
)

// ParameterSet is an immutable snapshot of validated variable assignments.
// A ParameterSet always holds every Tier I value; optional tiers may be
// absent and resolve to their catalog defaults.
type ParameterSet struct {
	values map[string]string
}

// NewParameterSet validates completeness and copies the provided values.
// Values must already be in canonical (validated) form. The error carries
// the services.ErrIncomplete marker and the missing identifier listing.
func NewParameterSet(values map[string]string) (ParameterSet, error) {
	missing := missingRequired(values)
	if len(missing) > 0 {
		return ParameterSet{}, &IncompleteError{Missing: missing}
	}
	cp := make(map[string]string, len(values))
	for id, value := range values {
		if _, ok := variables.Lookup(id); !ok {
			return ParameterSet{}, services.Wrap(services.ErrValidation, "fulfillment", "parameter set",
				fmt.Sprintf("unknown variable %q", id), nil)
		}
		cp[id] = value
	}
	return ParameterSet{values: cp}, nil
}

// Get returns the assigned value for id, if any.
func (p ParameterSet) Get(id string) (string, bool) {
	value, ok := p.values[id]
	return value, ok
}

// Resolve returns the assigned value or, for optional variables, the catalog
// default. The second return reports whether the value was explicitly
// assigned.
func (p ParameterSet) Resolve(id string) (string, bool) {
	if value, ok := p.values[id]; ok {
		return value, true
	}
	if def, ok := variables.Lookup(id); ok {
		return def.Default, false
	}
	return "", false
}

// ResolveInt resolves a KindInt variable to its numeric value.
func (p ParameterSet) ResolveInt(id string) (int, error) {
	value, _ := p.Resolve(id)
	if value == "" {
		return 0, fmt.Errorf("variable %s has no value", id)
	}
	return strconv.Atoi(value)
}

// IDs returns the assigned identifiers in sorted order.
func (p ParameterSet) IDs() []string {
	ids := make([]string, 0, len(p.values))
	for id := range p.values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of explicit assignments.
func (p ParameterSet) Len() int { return len(p.values) }

func missingRequired(values map[string]string) []string {
	var missing []string
	for _, id := range variables.RequiredIDs() {
		if strings.TrimSpace(values[id]) == "" {
			missing = append(missing, id)
		}
	}
	return missing
}

// IncompleteError reports the Tier I identifiers still unfulfilled. The
// listing is ordered by catalog position so collaborators can present it
// programmatically.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("incomplete parameter set: missing %s", strings.Join(e.Missing, ", "))
}

// Unwrap ties the structured error to the services.ErrIncomplete marker.
func (e *IncompleteError) Unwrap() error { return services.ErrIncomplete }
