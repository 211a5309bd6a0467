package projectmap

import (
	"github.com/samber/lo"
	"github.com/tanema/gween/ease"
)

// Frame highlight colors.
var (
	selectedStroke   = ParseHexColor("#FFD700")
	unselectedStroke = ColorWhite
)

// Frame opacities and stroke widths.
const (
	frameFillAlpha         = 0.3
	frameHoverFillAlpha    = 0.8
	frameStrokeAlpha       = 0.5
	frameStrokeWidth       = 2.0
	selectedStrokeWidth    = 4.0
	subscriberPlateAlpha   = 0.2
	subscriberPlateYOffset = AvatarBadgeBox / 2
)

// projectNode is the owned node group of one project: a container at the
// projected point holding the frame, label, tag badges, and subscriber
// cluster. Child coordinates are relative to the frame center.
type projectNode struct {
	root  *Node
	frame *Node
	label *Node
	tags  *Node
	subs  *Node

	badges  map[string]*tagBadge
	cluster AvatarCluster

	data     Project
	fill     Color
	selected bool
	hovered  bool
	tween    *TweenGroup
}

// tagBadge is one rounded tag pill and its fitted text.
type tagBadge struct {
	group *Node
	rect  *Node
	text  *Node
}

// newProjectNode builds the static structure for a new project key.
func (b *Board) newProjectNode(id string) *projectNode {
	half := b.cfg.NodeSize / 2
	pn := &projectNode{badges: make(map[string]*tagBadge)}

	pn.root = NewContainer("project:" + id)
	pn.root.Key = id
	pn.root.RenderLayer = ProjectLayer

	// The whole group is one hit target, so pills and the avatar plate that
	// stick out of the frame activate and hover the project too.
	pn.root.Interactable = true
	pn.root.HitShape = projectHitShape{pn}
	pn.root.OnClick = func(ClickContext) {
		if b.onActivate != nil {
			b.onActivate(pn.data)
		}
	}
	pn.root.OnPointerEnter = func(PointerContext) { b.setHover(pn, true) }
	pn.root.OnPointerLeave = func(PointerContext) { b.setHover(pn, false) }

	pn.frame = NewRect("frame", b.cfg.NodeSize, b.cfg.NodeSize, RectStyle{})
	pn.frame.Key = id
	pn.frame.SetPosition(-half, -half)
	pn.frame.RenderLayer = ProjectLayer

	box := b.cfg.NodeSize - 2*b.cfg.LabelInset
	pn.label = NewText("label", "", LabelFontSize, b.measurer)
	pn.label.Key = id
	pn.label.RenderLayer = ProjectLayer
	pn.label.SetPosition(-half+b.cfg.LabelInset, -half+b.cfg.LabelInset)
	pn.label.TextBlock.Bold = true
	pn.label.TextBlock.Align = TextAlignCenter
	pn.label.TextBlock.WrapWidth = box
	pn.label.TextBlock.BoxHeight = box

	pn.tags = NewContainer("tags")
	pn.tags.RenderLayer = ProjectLayer
	pn.tags.SetPosition(-half-b.cfg.TagWidth/3, -half)

	pn.subs = NewContainer("subscribers")
	pn.subs.RenderLayer = ProjectLayer
	pn.subs.SetPosition(half-AvatarAnchor, -half-subscriberPlateYOffset)

	pn.root.AddChild(pn.frame)
	pn.root.AddChild(pn.subs)
	pn.root.AddChild(pn.label)
	pn.root.AddChild(pn.tags)
	b.projectLayer.AddChild(pn.root)
	return pn
}

// projectHitShape covers the frame, every tag pill, and the subscriber
// plate, in project root coordinates.
type projectHitShape struct {
	pn *projectNode
}

func (h projectHitShape) Contains(x, y float64) bool {
	pn := h.pn
	if childContains(pn.frame, x, y, 0, 0) {
		return true
	}
	for _, tb := range pn.badges {
		if childContains(tb.rect, x, y, pn.tags.X+tb.group.X, pn.tags.Y+tb.group.Y) {
			return true
		}
	}
	for _, c := range pn.subs.children {
		if c.Type == NodeTypeRect && childContains(c, x, y, pn.subs.X, pn.subs.Y) {
			return true
		}
	}
	return false
}

// childContains tests (x, y) against an unscaled rect whose parent sits at
// (ox, oy) in the same space.
func childContains(n *Node, x, y, ox, oy float64) bool {
	lx, ly := x-ox-n.X, y-oy-n.Y
	return lx >= 0 && lx <= n.Width && ly >= 0 && ly <= n.Height
}

func (pn *projectNode) dispose() {
	if pn.tween != nil {
		pn.tween.Cancel()
		pn.tween = nil
	}
	pn.root.Dispose()
}

// updateProject applies one record to an existing node group.
func (b *Board) updateProject(pn *projectNode, p Project, subs []Subscription) {
	pn.data = p
	pn.root.UserData = p

	x, y := b.projector.Project(p.X, p.Y)
	pn.root.Name = "project:" + p.ID
	pn.root.SetPosition(finiteOr(x, 0), finiteOr(y, 0))

	b.updateLabel(pn, p.Name)
	b.updateTags(pn, p.Tags)
	b.updateSubscribers(pn, subs)

	pn.fill = ParseHexColor(b.catalog.ColorOf(p.PrimaryTag()))
	pn.selected = p.ID == b.selected
	if pn.tween != nil {
		pn.tween.Cancel()
		pn.tween = nil
	}
	pn.frame.Style = b.frameStyle(pn)
}

// frameStyle derives the frame look from selection and hover state.
func (b *Board) frameStyle(pn *projectNode) RectStyle {
	st := RectStyle{
		Fill:        pn.fill.WithAlpha(frameFillAlpha),
		Stroke:      unselectedStroke.WithAlpha(frameStrokeAlpha),
		StrokeWidth: frameStrokeWidth,
		Radius:      b.cfg.CornerRadius,
		Glow:        b.glow,
	}
	if pn.selected {
		st.Stroke = selectedStroke.WithAlpha(1)
		st.StrokeWidth = selectedStrokeWidth
	}
	if pn.hovered {
		st.Fill.A = frameHoverFillAlpha
		st.Stroke.A = 1
		st.Shadow = true
	}
	return st
}

// setHover toggles the visual hover emphasis. It never touches project data.
func (b *Board) setHover(pn *projectNode, on bool) {
	if pn.hovered == on || pn.root.IsDisposed() {
		return
	}
	pn.hovered = on
	if pn.tween != nil {
		pn.tween.Cancel()
	}
	pn.tween = TweenRectStyle(pn.frame, b.frameStyle(pn), b.cfg.HoverDuration, ease.OutQuad)
	if pn.tween.Done {
		pn.tween = nil
	}
}

func (b *Board) updateLabel(pn *projectNode, name string) {
	tb := pn.label.TextBlock
	tb.Measurer = b.measurer
	tb.SetContent(name)
	tb.SetFontSize(NodeLabelSize(name))
	tb.Invalidate()
}

// updateTags reconciles the tag pills of one project, keyed by tag name:
// at most MaxTags distinct tags, each stacked by its index.
func (b *Board) updateTags(pn *projectNode, tags []string) {
	shown := lo.Uniq(tags)
	if len(shown) > b.cfg.MaxTags {
		shown = shown[:b.cfg.MaxTags]
	}

	for name, tb := range pn.badges {
		if !lo.Contains(shown, name) {
			tb.group.Dispose()
			delete(pn.badges, name)
		}
	}

	for i, name := range shown {
		tb, ok := pn.badges[name]
		if !ok {
			tb = b.newTagBadge(name)
			pn.badges[name] = tb
			pn.tags.AddChild(tb.group)
		}
		tb.group.SetZIndex(i)
		tb.group.SetPosition(0, float64(i)*(b.cfg.TagHeight+b.cfg.TagSpacing))
		b.styleTagBadge(tb, name)
	}
}

func (b *Board) newTagBadge(name string) *tagBadge {
	tb := &tagBadge{}
	tb.group = NewContainer("tag:" + name)
	tb.group.Key = name
	tb.group.RenderLayer = ProjectLayer

	tb.rect = NewRect("pill", b.cfg.TagWidth, b.cfg.TagHeight, RectStyle{})
	tb.rect.RenderLayer = ProjectLayer

	tb.text = NewText("text", "", TagFontSize, b.measurer)
	tb.text.RenderLayer = ProjectLayer
	tb.text.TextBlock.Bold = true
	tb.text.TextBlock.Align = TextAlignCenter
	tb.text.TextBlock.WrapWidth = b.cfg.TagWidth
	tb.text.TextBlock.BoxHeight = b.cfg.TagHeight

	tb.group.AddChild(tb.rect)
	tb.group.AddChild(tb.text)
	return tb
}

func (b *Board) styleTagBadge(tb *tagBadge, name string) {
	hex := b.catalog.ColorOf(name)
	tb.rect.Style = RectStyle{
		Fill:        ParseHexColor(hex),
		Stroke:      ColorWhite,
		StrokeWidth: 1,
		Radius:      b.cfg.TagRadius,
	}

	fit := FitTagLabel(b.measurer, name, b.cfg.TagWidth-4, TagFontSize)
	t := tb.text.TextBlock
	t.Measurer = b.measurer
	t.Color = ParseHexColor(ContrastOf(hex))
	t.SetContent(fit.Text)
	t.SetFontSize(fit.FontSize)
	t.Invalidate()
}

// updateSubscribers rebuilds the avatar cluster when its layout changed.
func (b *Board) updateSubscribers(pn *projectNode, subs []Subscription) {
	c := LayoutAvatars(subs, b.cfg.MaxAvatars)
	if c.Equal(pn.cluster) && (pn.subs.NumChildren() > 0) == !c.Empty() {
		return
	}
	pn.cluster = c
	pn.subs.DisposeChildren()
	if c.Empty() {
		return
	}

	plate := NewRect("plate", c.PlateWidth, c.PlateHeight, RectStyle{
		Fill:   ColorWhite.WithAlpha(subscriberPlateAlpha),
		Radius: c.PlateHeight / 2,
	})
	plate.RenderLayer = ProjectLayer
	plate.SetPosition(c.PlateX, 0)
	pn.subs.AddChild(plate)

	for i, badge := range c.Badges {
		img := NewImage("avatar", badge.Ref, AvatarSize, AvatarSize)
		img.Key = badge.Login
		img.RenderLayer = ProjectLayer
		img.ClipCircle = true
		img.FallbackRef = DefaultAvatarRef
		img.SetPosition(badge.X, badge.Y)
		img.ZIndex = i
		pn.subs.AddChild(img)
	}

	if c.Overflow > 0 {
		label := NewText("overflow", c.OverflowLabel(), b.cfg.OverflowFontSize, b.measurer)
		label.RenderLayer = ProjectLayer
		label.TextBlock.Bold = true
		w, h := label.TextBlock.Measure()
		label.SetPosition(c.OverflowX-w/2, c.OverflowY-h/2)
		pn.subs.AddChild(label)
	}
}
