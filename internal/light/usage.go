package light

import (
	"fmt"
	"strings"
)

// Usage renders the usage line for one command, using its canonical name.
func Usage(prefix string, def *Definition) string {
	return strings.TrimSpace(fmt.Sprintf("usage: %s %s %s", prefix, def.Name, def.Usage))
}

// TopLevelUsage renders the usage line listing every keyword of s.
func TopLevelUsage(prefix string, s *Schema) string {
	return fmt.Sprintf("usage: %s (%s)", prefix, strings.Join(s.Keywords(), ", "))
}
