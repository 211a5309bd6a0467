package projectmap

import (
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Board render layers. Zones always draw beneath projects.
const (
	ZoneLayer    uint8 = 0
	ProjectLayer uint8 = 1
)

// BoardConfig holds the fixed geometry of project and zone nodes.
type BoardConfig struct {
	NodeSize     float64 // side of the square project frame
	CornerRadius float64 // frame corner radius
	LabelInset   float64 // gap between frame edge and the label box

	MaxTags    int
	TagWidth   float64
	TagHeight  float64
	TagSpacing float64
	TagRadius  float64

	MaxAvatars       int
	OverflowFontSize float64

	ZoneRadius       float64
	GlowStdDeviation float64
	HoverDuration    float32 // seconds; 0 switches hover styles instantly
}

// DefaultBoardConfig returns the standard project map geometry.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		NodeSize:         120,
		CornerRadius:     15,
		LabelInset:       10,
		MaxTags:          3,
		TagWidth:         40,
		TagHeight:        16,
		TagSpacing:       2,
		TagRadius:        8,
		MaxAvatars:       DefaultMaxAvatars,
		OverflowFontSize: 12,
		ZoneRadius:       10,
		GlowStdDeviation: 3,
		HoverDuration:    HoverDuration,
	}
}

// SyncResult lists the keys touched by one Board.Sync, each sorted
// ascending. Updated includes newly added keys.
type SyncResult struct {
	Added   []string
	Updated []string
	Removed []string

	ZonesAdded   []int
	ZonesUpdated []int
	ZonesRemoved []int
}

// Changed reports whether any node was added or removed.
func (r SyncResult) Changed() bool {
	return len(r.Added)+len(r.Removed)+len(r.ZonesAdded)+len(r.ZonesRemoved) > 0
}

// Board keeps a scene subtree in step with project and zone snapshots. It is
// the only owner of its top-level nodes: one per live project ID and one per
// live zone ID, all under World.
type Board struct {
	scene     *Scene
	projector Projector
	cfg       BoardConfig

	catalog  *TagCatalog
	measurer TextMeasurer
	metrics  *SyncMetrics
	logger   zerolog.Logger

	glow *GlowFilter

	world        *Node
	zoneLayer    *Node
	projectLayer *Node

	projects map[string]*projectNode
	zones    map[int]*zoneNode
	selected string

	onActivate func(Project)
}

// NewBoard creates a board whose world container is attached to the scene
// root. Zero fields in cfg take their DefaultBoardConfig values.
func NewBoard(s *Scene, p Projector, cfg BoardConfig) *Board {
	cfg = cfg.withDefaults()
	b := &Board{
		scene:     s,
		projector: p,
		cfg:       cfg,
		catalog:   NewTagCatalog(),
		logger:    zerolog.Nop(),
		glow:      &GlowFilter{ID: "glow", StdDeviation: cfg.GlowStdDeviation},
		projects:  make(map[string]*projectNode),
		zones:     make(map[int]*zoneNode),
	}
	b.world = NewContainer("world")
	b.zoneLayer = NewContainer("zones")
	b.zoneLayer.RenderLayer = ZoneLayer
	b.projectLayer = NewContainer("projects")
	b.projectLayer.RenderLayer = ProjectLayer
	b.world.AddChild(b.zoneLayer)
	b.world.AddChild(b.projectLayer)
	if s != nil {
		s.Root().AddChild(b.world)
	}
	return b
}

func (c BoardConfig) withDefaults() BoardConfig {
	d := DefaultBoardConfig()
	pick := func(v *float64, def float64) {
		if *v <= 0 || math.IsNaN(*v) {
			*v = def
		}
	}
	pick(&c.NodeSize, d.NodeSize)
	pick(&c.CornerRadius, d.CornerRadius)
	pick(&c.LabelInset, d.LabelInset)
	pick(&c.TagWidth, d.TagWidth)
	pick(&c.TagHeight, d.TagHeight)
	pick(&c.TagSpacing, d.TagSpacing)
	pick(&c.TagRadius, d.TagRadius)
	pick(&c.OverflowFontSize, d.OverflowFontSize)
	pick(&c.ZoneRadius, d.ZoneRadius)
	pick(&c.GlowStdDeviation, d.GlowStdDeviation)
	if c.MaxTags <= 0 {
		c.MaxTags = d.MaxTags
	}
	if c.MaxAvatars <= 0 {
		c.MaxAvatars = d.MaxAvatars
	}
	if c.HoverDuration < 0 {
		c.HoverDuration = 0
	}
	return c
}

// SetCatalog sets the tag colors used from the next Sync on. nil restores
// the empty catalog, in which every tag gets DefaultTagColor.
func (b *Board) SetCatalog(c *TagCatalog) {
	if c == nil {
		c = NewTagCatalog()
	}
	b.catalog = c
}

// SetMeasurer sets the text measurer used for labels and tag fitting.
func (b *Board) SetMeasurer(m TextMeasurer) { b.measurer = m }

// SetMetrics enables sync metrics. nil disables them.
func (b *Board) SetMetrics(m *SyncMetrics) { b.metrics = m }

// SetLogger sets the logger used for sync summaries.
func (b *Board) SetLogger(l zerolog.Logger) { b.logger = l }

// SetProjector changes the viewport geometry used from the next Sync on.
func (b *Board) SetProjector(p Projector) { b.projector = p }

// Projector returns the current viewport geometry.
func (b *Board) Projector() Projector { return b.projector }

// OnActivate sets the callback fired when a project node is clicked.
func (b *Board) OnActivate(fn func(Project)) { b.onActivate = fn }

// Config returns the board geometry.
func (b *Board) Config() BoardConfig { return b.cfg }

// Glow returns the shared glow filter referenced by every project frame.
func (b *Board) Glow() *GlowFilter { return b.glow }

// World returns the container holding every board node. Zoom and pan apply
// to it.
func (b *Board) World() *Node { return b.world }

// Selected returns the selection passed to the last Sync.
func (b *Board) Selected() string { return b.selected }

// Len returns the number of live project and zone nodes.
func (b *Board) Len() (projects, zones int) {
	return len(b.projects), len(b.zones)
}

// Node returns the top-level node for a project ID, or nil.
func (b *Board) Node(id string) *Node {
	if pn, ok := b.projects[id]; ok {
		return pn.root
	}
	return nil
}

// ZoneNode returns the node for a zone ID, or nil.
func (b *Board) ZoneNode(id int) *Node {
	if zn, ok := b.zones[id]; ok {
		return zn.rect
	}
	return nil
}

// ProjectIDs returns the live project IDs in ascending order.
func (b *Board) ProjectIDs() []string {
	ids := lo.Keys(b.projects)
	slices.Sort(ids)
	return ids
}

// Sync reconciles the board with snap. Nodes whose key left the snapshot are
// disposed first, then new keys get fresh nodes, then every live key is
// updated from its record. Nodes for surviving keys keep their identity.
// When an ID appears more than once, the first record wins. The result does
// not depend on snapshot order.
func (b *Board) Sync(snap Snapshot, selectedID string) SyncResult {
	start := time.Now()
	b.selected = selectedID

	var res SyncResult
	res.ZonesRemoved, res.ZonesAdded, res.ZonesUpdated = b.syncZones(snap.Zones)
	res.Removed, res.Added, res.Updated = b.syncProjects(snap)

	elapsed := time.Since(start)
	b.metrics.ObserveSync(res, len(b.projects), len(b.zones), elapsed)
	b.logger.Debug().
		Int("added", len(res.Added)).
		Int("updated", len(res.Updated)).
		Int("removed", len(res.Removed)).
		Int("zones_added", len(res.ZonesAdded)).
		Int("zones_removed", len(res.ZonesRemoved)).
		Bool("changed", res.Changed()).
		Str("selected", selectedID).
		Dur("took", elapsed).
		Msg("sync")
	return res
}

// Update advances hover transitions by dt seconds.
func (b *Board) Update(dt float32) {
	for _, pn := range b.projects {
		if pn.tween != nil {
			pn.tween.Update(dt)
			if pn.tween.Done {
				pn.tween = nil
			}
		}
	}
}

// Clear removes every node, leaving the board reusable.
func (b *Board) Clear() SyncResult {
	return b.Sync(Snapshot{}, "")
}

func (b *Board) syncProjects(snap Snapshot) (removed, added, updated []string) {
	next := make(map[string]Project, len(snap.Projects))
	for _, p := range snap.Projects {
		if _, dup := next[p.ID]; dup {
			b.logger.Warn().Str("id", p.ID).Msg("duplicate project id ignored")
			continue
		}
		next[p.ID] = p
	}

	removed, _ = lo.Difference(lo.Keys(b.projects), lo.Keys(next))
	slices.Sort(removed)
	for _, id := range removed {
		b.projects[id].dispose()
		delete(b.projects, id)
	}

	updated = lo.Keys(next)
	slices.Sort(updated)
	for _, id := range updated {
		pn, ok := b.projects[id]
		if !ok {
			pn = b.newProjectNode(id)
			b.projects[id] = pn
			added = append(added, id)
		}
		b.updateProject(pn, next[id], snap.SubscriptionsFor(next[id].ProjectKey))
	}
	return removed, added, updated
}

func (b *Board) syncZones(zones []Zone) (removed, added, updated []int) {
	next := make(map[int]Zone, len(zones))
	for _, z := range zones {
		if _, dup := next[z.ID]; dup {
			b.logger.Warn().Int("id", z.ID).Msg("duplicate zone id ignored")
			continue
		}
		next[z.ID] = z
	}

	removed, _ = lo.Difference(lo.Keys(b.zones), lo.Keys(next))
	slices.Sort(removed)
	for _, id := range removed {
		b.zones[id].rect.Dispose()
		delete(b.zones, id)
	}

	updated = lo.Keys(next)
	slices.Sort(updated)
	for _, id := range updated {
		zn, ok := b.zones[id]
		if !ok {
			zn = b.newZoneNode(id)
			b.zones[id] = zn
			added = append(added, id)
		}
		b.updateZone(zn, next[id])
	}
	return removed, added, updated
}

func zoneKey(id int) string {
	return "zone:" + strconv.Itoa(id)
}
