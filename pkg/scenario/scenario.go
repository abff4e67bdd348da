// Package scenario holds named UM test programs and the registry that looks
// them up.
package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/akhildatla/umlab/pkg/um"
)

// Builder appends a program to s. It may only call encoders and append to s;
// encoding failures are reported through s.Err.
type Builder func(s *um.Stream)

// Scenario is one fixture: a program plus the text fed to it on stdin and the
// text it must print. An empty Input or Output means the file is omitted.
type Scenario struct {
	Name   string
	Input  string
	Output string
	Build  Builder
}

// Program builds a fresh stream for the scenario.
func (sc Scenario) Program() (*um.Stream, error) {
	s := um.NewStream()
	sc.Build(s)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	return s, nil
}

var (
	ErrDuplicate = errors.New("duplicate scenario name")
	ErrInvalid   = errors.New("invalid scenario")
)

// Registry is an immutable, ordered set of scenarios.
type Registry struct {
	list   []Scenario
	byName map[string]int
}

// NewRegistry builds a registry. Names must be unique and usable as file
// names, and every scenario needs a builder.
func NewRegistry(scs ...Scenario) (*Registry, error) {
	r := &Registry{
		list:   make([]Scenario, 0, len(scs)),
		byName: make(map[string]int, len(scs)),
	}
	for _, sc := range scs {
		if err := validate(sc); err != nil {
			return nil, err
		}
		if _, ok := r.byName[sc.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, sc.Name)
		}
		r.byName[sc.Name] = len(r.list)
		r.list = append(r.list, sc)
	}
	return r, nil
}

func validate(sc Scenario) error {
	switch {
	case sc.Name == "", sc.Name == ".", sc.Name == "..":
		return fmt.Errorf("%w: bad name %q", ErrInvalid, sc.Name)
	case strings.ContainsAny(sc.Name, `/\`+"\x00"):
		return fmt.Errorf("%w: name %q contains a path separator", ErrInvalid, sc.Name)
	case sc.Build == nil:
		return fmt.Errorf("%w: %s has no builder", ErrInvalid, sc.Name)
	}
	return nil
}

// Lookup returns the scenario called name.
func (r *Registry) Lookup(name string) (Scenario, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Scenario{}, false
	}
	return r.list[i], true
}

// All returns the scenarios in registration order.
func (r *Registry) All() []Scenario {
	out := make([]Scenario, len(r.list))
	copy(out, r.list)
	return out
}

// Names returns the scenario names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.list))
	for i, sc := range r.list {
		names[i] = sc.Name
	}
	return names
}

// Len returns the number of scenarios.
func (r *Registry) Len() int {
	return len(r.list)
}
