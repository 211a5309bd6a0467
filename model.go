package projectmap

import (
	"strings"

	"github.com/samber/lo"
)

// Project is a single entity placed on the map grid. ID is the stable key the
// board diffs on; ProjectKey correlates subscriptions and lives in a separate
// namespace.
type Project struct {
	ID          string   `yaml:"id" json:"id"`
	ProjectKey  int      `yaml:"project_id" json:"project_id"`
	X           float64  `yaml:"x" json:"x"`
	Y           float64  `yaml:"y" json:"y"`
	Name        string   `yaml:"name" json:"name"`
	State       string   `yaml:"state" json:"state"`
	Tags        []string `yaml:"tags" json:"tags"`
	Description string   `yaml:"description" json:"description"`
	Difficulty  float64  `yaml:"difficulty" json:"difficulty"`
	Duration    string   `yaml:"duration" json:"duration"`
	Rules       []string `yaml:"rules" json:"rules"`
}

// PrimaryTag returns the first tag, which decides the frame color, or "" when
// the project has no tags.
func (p Project) PrimaryTag() string {
	if len(p.Tags) == 0 {
		return ""
	}
	return p.Tags[0]
}

// Zone is a rectangular overlay region in grid units, centered on (X, Y).
type Zone struct {
	ID     int     `yaml:"id" json:"id"`
	Name   string  `yaml:"name" json:"name"`
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
	Color  string  `yaml:"color" json:"color"`
}

// Subscription links a user to a project. Badges built from subscriptions are
// derived per project and never diffed by their own key.
type Subscription struct {
	ID         int    `yaml:"id" json:"id"`
	ProjectKey int    `yaml:"project_id" json:"project_id"`
	Login      string `yaml:"login" json:"login"`
	AvatarURL  string `yaml:"profile_pic" json:"profile_pic"`
}

// Snapshot is one complete, ready-to-render dataset handed to Board.Sync.
type Snapshot struct {
	Projects      []Project
	Zones         []Zone
	Subscriptions map[int][]Subscription
}

// SubscriptionsFor returns the subscriptions for a project key, in input order.
func (s Snapshot) SubscriptionsFor(projectKey int) []Subscription {
	return s.Subscriptions[projectKey]
}

// SplitRules splits free-form rule text on sentence boundaries (". ") and
// drops fragments that are empty after trimming.
func SplitRules(src string) []string {
	return lo.Filter(strings.Split(src, ". "), func(r string, _ int) bool {
		return strings.TrimSpace(r) != ""
	})
}

// GroupSubscriptions groups subscriptions by project key, preserving input
// order within each group.
func GroupSubscriptions(subs []Subscription) map[int][]Subscription {
	return lo.GroupBy(subs, func(s Subscription) int {
		return s.ProjectKey
	})
}
