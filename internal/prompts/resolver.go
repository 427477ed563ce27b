package prompts

// AgentsFile is the embedded file holding the default template per agent role.
const AgentsFile = "agents.json"

// Set is a frozen role -> template mapping, resolved once at the start of a
// run. Overrides win over the embedded defaults; the set never changes while a
// run is in flight.
type Set struct {
	templates map[string]string
}

// Resolve builds a Set from the embedded defaults and operator overrides.
// Override keys that have no embedded default are accepted as-is, so new roles
// can be introduced by configuration alone.
func Resolve(overrides map[string]string) (*Set, error) {
	defaults, err := loadFile(AgentsFile)
	if err != nil {
		return nil, err
	}

	templates := make(map[string]string, len(defaults)+len(overrides))
	for key, tmpl := range defaults {
		templates[key] = tmpl
	}
	for key, tmpl := range overrides {
		if tmpl == "" {
			continue // empty override means "use the default"
		}
		templates[key] = tmpl
	}

	return &Set{templates: templates}, nil
}

// Template returns the template for a role key and whether one exists.
func (s *Set) Template(key string) (string, bool) {
	tmpl, ok := s.templates[key]
	return tmpl, ok
}

// Render resolves the role's template and substitutes the given inputs.
// Unknown placeholders remain literal.
func (s *Set) Render(key string, inputs map[string]string) (string, bool) {
	tmpl, ok := s.templates[key]
	if !ok {
		return "", false
	}
	return Format(tmpl, inputs), true
}
