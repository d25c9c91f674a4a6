package loader

import (
	"fmt"
	"strings"
)

// ValidationError collects all validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks compiled themes for usable content.
func validate(themes Themes) error {
	ve := &ValidationError{}

	for name, def := range themes {
		if len(def.Biomes) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("theme %q has no biomes", name))
		}
		if len(def.Lighting) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("theme %q has no lighting options", name))
		}
		if len(def.Creatures) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("theme %q has no creatures", name))
		}
		if def.DefaultHP <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("theme %q default_hp must be positive", name))
		}
		for kind, hp := range def.HitPoints {
			if hp <= 0 {
				ve.Errors = append(ve.Errors, fmt.Sprintf("theme %q hit_points[%s] must be positive", name, kind))
			}
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
