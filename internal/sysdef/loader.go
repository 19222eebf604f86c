package sysdef

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	tcmerrors "github.com/arrayops/telescopecm/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	topologyNamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})

		_ = v.RegisterValidation("topology_name", func(fl validator.FieldLevel) bool {
			return topologyNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// Load reads a topology definition document from disk, validates it, and
// returns the resulting model. The document is YAML; a JSON file parses the
// same way.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tcmerrors.NewParseError(path, 0, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, tcmerrors.NewParseError(path, extractLine(err), err)
	}

	if err := ValidateDocument(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// ValidateDocument performs schema and cross-key validation of the topology
// document: the default type must be fully defined, every checking-order
// entry must name a known topology, and every part type in a hookup chain
// must carry a port table covering that topology's polarizations.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return tcmerrors.NewValidationError("sysdef", "document is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(doc); err != nil {
		return convertValidationError(err)
	}

	if _, ok := doc.PolarizationDefs[doc.DefaultType]; !ok {
		return tcmerrors.NewValidationError("polarization_defs", fmt.Sprintf("no polarizations for default type %q", doc.DefaultType), nil)
	}
	if _, ok := doc.HookupDefs[doc.DefaultType]; !ok {
		return tcmerrors.NewValidationError("hookup_defs", fmt.Sprintf("no hookup chain for default type %q", doc.DefaultType), nil)
	}

	for _, name := range doc.CheckingOrder {
		if _, ok := doc.HookupDefs[name]; !ok {
			return tcmerrors.NewValidationError("checking_order", fmt.Sprintf("references unknown topology %q", name), nil)
		}
	}

	for topology, chain := range doc.HookupDefs {
		pols, ok := doc.PolarizationDefs[topology]
		if !ok {
			return tcmerrors.NewValidationError("polarization_defs", fmt.Sprintf("no polarizations for topology %q", topology), nil)
		}
		if len(chain) < 2 {
			return tcmerrors.NewValidationError("hookup_defs", fmt.Sprintf("topology %q needs at least two part types", topology), nil)
		}
		for _, partType := range chain {
			component, ok := doc.Components[partType]
			if !ok {
				return tcmerrors.NewValidationError("components", fmt.Sprintf("topology %q references undefined part type %q", topology, partType), nil)
			}
			for _, pol := range pols {
				if len(component.Up[pol]) == 0 && len(component.Down[pol]) == 0 {
					return tcmerrors.NewValidationError("components",
						fmt.Sprintf("part type %q has no ports for polarization %q", partType, pol), nil)
				}
			}
		}
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return tcmerrors.NewValidationError(field, msg, err)
	}

	return tcmerrors.NewValidationError("sysdef", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
