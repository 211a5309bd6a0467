package projectmap

// Zone overlay opacities.
const (
	zoneFillAlpha   = 0.1
	zoneStrokeAlpha = 0.5
	zoneStrokeWidth = 2.0
)

// zoneNode is the single rect drawn for a zone.
type zoneNode struct {
	rect *Node
	data Zone
}

func (b *Board) newZoneNode(id int) *zoneNode {
	r := NewRect(zoneKey(id), 1, 1, RectStyle{})
	r.Key = zoneKey(id)
	r.RenderLayer = ZoneLayer
	b.zoneLayer.AddChild(r)
	return &zoneNode{rect: r}
}

// updateZone places the padded zone rectangle and colors it from the zone's
// own hex color.
func (b *Board) updateZone(zn *zoneNode, z Zone) {
	zn.data = z
	zn.rect.UserData = z
	if z.Name != "" {
		zn.rect.Name = z.Name
	}

	r := b.projector.ZoneRect(z, b.cfg.NodeSize)
	zn.rect.SetPosition(r.X, r.Y)
	zn.rect.Width = r.Width
	zn.rect.Height = r.Height

	c := ParseHexColor(z.Color)
	zn.rect.Style = RectStyle{
		Fill:        c.WithAlpha(zoneFillAlpha),
		Stroke:      c.WithAlpha(zoneStrokeAlpha),
		StrokeWidth: zoneStrokeWidth,
		Radius:      b.cfg.ZoneRadius,
	}
}
