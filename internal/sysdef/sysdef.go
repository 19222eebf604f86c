// Package sysdef holds the declarative signal-path topology for an observing
// system: which polarizations exist, which part types chain together into a
// full hookup, and which named ports each part type exposes on its sky-facing
// ("up") and back-end ("down") sides.
package sysdef

import (
	"sort"
	"strings"

	tcmerrors "github.com/arrayops/telescopecm/pkg/errors"
)

// Side designates one end of a part: "up" faces the sky, "down" faces the
// back-end electronics.
type Side string

const (
	Up   Side = "up"
	Down Side = "down"
)

// Opposite maps up to down and back.
func (s Side) Opposite() Side {
	if s == Up {
		return Down
	}
	return Up
}

// PortTable lists the ordered port names a part type exposes per side and
// polarization.
type PortTable struct {
	Up   map[string][]string `yaml:"up"`
	Down map[string][]string `yaml:"down"`
}

func (pt PortTable) side(side Side) map[string][]string {
	if side == Up {
		return pt.Up
	}
	return pt.Down
}

// Document is the parsed topology definition for one or more observing
// systems. It is loaded once and shared read-only.
type Document struct {
	PolarizationDefs map[string][]string  `yaml:"polarization_defs" validate:"required,min=1"`
	HookupDefs       map[string][]string  `yaml:"hookup_defs" validate:"required,min=1"`
	CheckingOrder    []string             `yaml:"checking_order,omitempty"`
	Components       map[string]PortTable `yaml:"components" validate:"required,min=1"`
	DefaultType      string               `yaml:"default_type" validate:"required,topology_name"`
}

// Definition is the resolved topology for one hookup type.
type Definition struct {
	Type          string
	Polarizations []string
	Hookup        []string
	CheckingOrder []string

	doc *Document
}

// New resolves a Definition from the document. An empty hookupType selects
// the document's default type.
func New(doc *Document, hookupType string) (*Definition, error) {
	if doc == nil {
		return nil, tcmerrors.NewValidationError("sysdef", "document is nil", nil)
	}
	if hookupType == "" {
		hookupType = doc.DefaultType
	}

	pols, ok := doc.PolarizationDefs[hookupType]
	if !ok {
		return nil, tcmerrors.NewUnknownTopologyError(hookupType)
	}
	hookup, ok := doc.HookupDefs[hookupType]
	if !ok {
		return nil, tcmerrors.NewUnknownTopologyError(hookupType)
	}

	return &Definition{
		Type:          hookupType,
		Polarizations: append([]string(nil), pols...),
		Hookup:        append([]string(nil), hookup...),
		CheckingOrder: checkingOrder(doc),
		doc:           doc,
	}, nil
}

// checkingOrder returns the declared classification order, or a derived one
// with the default type first followed by the remaining topologies sorted.
func checkingOrder(doc *Document) []string {
	if len(doc.CheckingOrder) > 0 {
		return append([]string(nil), doc.CheckingOrder...)
	}
	order := []string{doc.DefaultType}
	var rest []string
	for name := range doc.HookupDefs {
		if name != doc.DefaultType {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// PortList returns the ordered port names available on the given side of a
// part type for a polarization.
func (d *Definition) PortList(partType string, side Side, pol string) ([]string, error) {
	partType = strings.ToLower(partType)
	pol = strings.ToLower(pol)

	component, ok := d.doc.Components[partType]
	if !ok {
		return nil, tcmerrors.NewUnknownPartTypeError(partType, string(side), pol)
	}
	ports, ok := component.side(side)[pol]
	if !ok {
		return nil, tcmerrors.NewUnknownPartTypeError(partType, string(side), pol)
	}
	return ports, nil
}

// FullConnectionPath returns the ordered part-type chain defining a complete
// hookup for the named topology.
func (d *Definition) FullConnectionPath(topology string) ([]string, error) {
	path, ok := d.doc.HookupDefs[topology]
	if !ok {
		return nil, tcmerrors.NewUnknownTopologyError(topology)
	}
	return path, nil
}

// ThroughPort determines which port on the opposite side of a part the
// signal exits through, given the port it arrives on. First match wins:
//
//  1. a single opposite-side port is unambiguous;
//  2. equal port counts on both sides are positionally matched;
//  3. an identically named opposite-side port passes through;
//  4. the first opposite-side port sharing the polarization's initial letter;
//  5. otherwise there is no through port and the empty string is returned,
//     which ends a hookup walk at this part without error.
func (d *Definition) ThroughPort(port string, side Side, pol, partType string) (string, error) {
	port = strings.ToLower(port)
	pol = strings.ToLower(pol)

	sidePorts, err := d.PortList(partType, side, pol)
	if err != nil {
		return "", err
	}
	oppPorts, err := d.PortList(partType, side.Opposite(), pol)
	if err != nil {
		return "", err
	}

	if len(oppPorts) == 1 {
		return oppPorts[0], nil
	}

	if len(sidePorts) == len(oppPorts) {
		for i, p := range sidePorts {
			if p == port {
				return oppPorts[i], nil
			}
		}
	}

	for _, p := range oppPorts {
		if p == port {
			return p, nil
		}
	}

	if pol != "" {
		initial := pol[:1]
		for _, p := range oppPorts {
			if strings.HasPrefix(p, initial) {
				return p, nil
			}
		}
	}

	return "", nil
}
