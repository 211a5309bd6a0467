package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/phanxgames/projectmap"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// snapshotFile is the on-disk form of a board snapshot. Subscriptions are a
// flat list grouped by project_id on load.
type snapshotFile struct {
	Selected      string                    `yaml:"selected"`
	Projects      []projectRecord           `yaml:"projects"`
	Zones         []projectmap.Zone         `yaml:"zones"`
	Subscriptions []projectmap.Subscription `yaml:"subscriptions"`
}

// projectRecord is a project as written in a snapshot file, where rules may
// be a list or a single paragraph.
type projectRecord projectmap.Project

func (p *projectRecord) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return value.Decode((*projectmap.Project)(p))
	}
	var rules ruleList
	rest := *value
	rest.Content = nil
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if k.Value == "rules" {
			if err := v.Decode(&rules); err != nil {
				return err
			}
			continue
		}
		rest.Content = append(rest.Content, k, v)
	}
	var proj projectmap.Project
	if err := rest.Decode(&proj); err != nil {
		return err
	}
	proj.Rules = rules
	*p = projectRecord(proj)
	return nil
}

// ruleList accepts rules as a paragraph ("A. B.") or a list. A one-entry list
// is treated as a paragraph too.
type ruleList []string

func (r *ruleList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*r = projectmap.SplitRules(s)
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		if len(list) == 1 {
			list = projectmap.SplitRules(list[0])
		}
		*r = list
	default:
		return fmt.Errorf("line %d: rules must be a string or a list", value.Line)
	}
	return nil
}

func loadSnapshot(path string) (projectmap.Snapshot, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return projectmap.Snapshot{}, "", fmt.Errorf("read snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

// decodeSnapshot parses a snapshot document and returns it with the
// selection it names.
func decodeSnapshot(data []byte) (projectmap.Snapshot, string, error) {
	var f snapshotFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return projectmap.Snapshot{}, "", fmt.Errorf("decode snapshot: %w", err)
	}
	projects := lo.Map(f.Projects, func(p projectRecord, _ int) projectmap.Project {
		return projectmap.Project(p)
	})
	snap := projectmap.Snapshot{
		Projects:      projects,
		Zones:         f.Zones,
		Subscriptions: projectmap.GroupSubscriptions(f.Subscriptions),
	}
	return snap, strings.TrimSpace(f.Selected), nil
}

// loadCatalog reads a tag catalog. An empty path yields a nil catalog, which
// colors every tag with the default.
func loadCatalog(path string) (*projectmap.TagCatalog, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag catalog: %w", err)
	}
	return projectmap.LoadTagCatalog(data)
}
