package agent

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lendwell/underwriter/pkg/config"
)

// PersonaLoader eagerly loads every agent's persona file at construction
// time, so a missing or unreadable file fails fast at startup rather than
// mid-run. Persona text is immutable afterward.
type PersonaLoader struct {
	personas map[string]string // agent name -> persona text
}

// LoadPersonas reads every AgentSpec.PersonaFile under configDir once.
// Agents with no PersonaFile get an empty persona (CustomInstructions
// alone carries their prompt).
func LoadPersonas(configDir string, agents map[string]*config.AgentSpec) (*PersonaLoader, error) {
	personas := make(map[string]string, len(agents))

	for name, spec := range agents {
		if spec.PersonaFile == "" {
			continue
		}
		path := filepath.Join(configDir, spec.PersonaFile)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading persona file for agent %q: %w", name, err)
		}
		personas[name] = string(data)
	}

	return &PersonaLoader{personas: personas}, nil
}

// Get returns the persona text for the given agent name, or "" if none was
// configured.
func (p *PersonaLoader) Get(agentName string) string {
	return p.personas[agentName]
}
