package tools

import (
	"errors"
	"fmt"
)

// ErrInvalidArguments marks a schema validation failure. The registry reports
// it to the LLM as a tool error result so the model can retry with corrected
// arguments; it is never surfaced raw to the user.
var ErrInvalidArguments = errors.New("invalid tool arguments")

// ValidateArgs checks argument names and JSON types against the declared
// schema. Validation happens at the registry boundary, not inside handlers,
// so handler code stays free of parameter-shape checks.
func ValidateArgs(schema InputSchema, args map[string]any) error {
	for _, name := range schema.Required {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("%w: missing required argument %q", ErrInvalidArguments, name)
		}
	}

	for name, value := range args {
		prop, ok := schema.Properties[name]
		if !ok {
			return fmt.Errorf("%w: unknown argument %q", ErrInvalidArguments, name)
		}
		if err := checkType(name, &prop, value); err != nil {
			return err
		}
	}

	return nil
}

// checkType validates a single argument value against its declared property.
// JSON numbers arrive as float64 regardless of integer-ness.
func checkType(name string, prop *Property, value any) error {
	if value == nil {
		return fmt.Errorf("%w: argument %q is null", ErrInvalidArguments, name)
	}

	switch prop.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: argument %q must be a string", ErrInvalidArguments, name)
		}
		if len(prop.Enum) > 0 && !containsString(prop.Enum, s) {
			return fmt.Errorf("%w: argument %q must be one of %v", ErrInvalidArguments, name, prop.Enum)
		}
	case "number":
		switch value.(type) {
		case float64, float32, int, int64:
		default:
			return fmt.Errorf("%w: argument %q must be a number", ErrInvalidArguments, name)
		}
	case "integer":
		switch v := value.(type) {
		case int, int64:
		case float64:
			if v != float64(int64(v)) {
				return fmt.Errorf("%w: argument %q must be an integer", ErrInvalidArguments, name)
			}
		default:
			return fmt.Errorf("%w: argument %q must be an integer", ErrInvalidArguments, name)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: argument %q must be a boolean", ErrInvalidArguments, name)
		}
	case "array":
		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("%w: argument %q must be an array", ErrInvalidArguments, name)
		}
		if prop.Items != nil {
			for i := range items {
				if err := checkType(fmt.Sprintf("%s[%d]", name, i), prop.Items, items[i]); err != nil {
					return err
				}
			}
		}
	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: argument %q must be an object", ErrInvalidArguments, name)
		}
		for childName, childValue := range obj {
			childProp, ok := prop.Properties[childName]
			if !ok || childProp == nil {
				continue // Nested objects are open by default
			}
			if err := checkType(name+"."+childName, childProp, childValue); err != nil {
				return err
			}
		}
	default:
		// Unconstrained property types accept anything.
	}

	return nil
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
