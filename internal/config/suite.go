package config

import (
	"mockspec/internal/expectation"
)

// Suite is the merged result of a set of expectation files.
type Suite struct {
	Settings *Settings
	Files    []string

	definitions map[string]*expectation.Definition
	order       []string
}

func newSuite(settings *Settings, files []string) *Suite {
	return &Suite{
		Settings:    settings,
		Files:       files,
		definitions: make(map[string]*expectation.Definition),
	}
}

// add folds part into the definition of its endpoint.
func (s *Suite) add(part *expectation.Part) error {
	previous, exists := s.definitions[part.Endpoint()]
	def, err := part.Build(previous)
	if err != nil {
		return err
	}
	if !exists {
		s.order = append(s.order, part.Endpoint())
	}
	s.definitions[part.Endpoint()] = def
	return nil
}

// Definition returns the merged definition of endpoint.
func (s *Suite) Definition(endpoint string) (*expectation.Definition, bool) {
	def, ok := s.definitions[endpoint]
	return def, ok
}

// Definitions returns the merged definitions in first-authored order.
func (s *Suite) Definitions() []*expectation.Definition {
	out := make([]*expectation.Definition, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.definitions[name])
	}
	return out
}
