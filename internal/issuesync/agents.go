package issuesync

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultOrganization = "PR-CYBR"

// Mapping routes agent identifiers to repositories within one organization.
type Mapping struct {
	Organization string            `yaml:"organization"`
	Agents       map[string]string `yaml:"agents"`
}

// DefaultMapping returns an empty mapping for the default organization.
// Every task falls back to its own repo field.
func DefaultMapping() *Mapping {
	return &Mapping{Organization: defaultOrganization}
}

// LoadMapping reads an agents.yaml file.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent mapping: %w", err)
	}
	var mapping Mapping
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parse agent mapping %s: %w", path, err)
	}
	if mapping.Organization == "" {
		mapping.Organization = defaultOrganization
	}
	return &mapping, nil
}

// RepoFor resolves the repository for an agent, falling back to the task's
// own repo field when the agent is unmapped.
func (m *Mapping) RepoFor(agentID, fallback string) (string, error) {
	if repo, ok := m.Agents[agentID]; ok && strings.TrimSpace(repo) != "" {
		return repo, nil
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("unknown agent id %q", agentID)
}
