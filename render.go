package projectmap

import "image"

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandRect  CommandType = iota // filled and/or stroked rounded rectangle
	CommandText                     // one line of text
	CommandImage                    // bitmap, optionally clipped to a circle
)

// RenderCommand is a single draw instruction emitted during scene traversal.
// Geometry is in the node's local space: the rectangle spans (0,0) to
// (Width, Height) and Transform maps it to the screen.
type RenderCommand struct {
	Type        CommandType
	Name        string
	Key         string
	Transform   [6]float64
	Width       float64
	Height      float64
	Alpha       float64 // accumulated world alpha
	RenderLayer uint8
	treeOrder   int // assigned during traversal for stable sort

	// CommandRect
	Style RectStyle

	// CommandText
	Text      string
	FontSize  float64
	Bold      bool
	TextColor Color

	// CommandImage
	ImageRef   string
	ClipCircle bool
	img        image.Image // resolved bitmap; nil draws a placeholder
}

// traverse walks the node tree depth-first, updating transforms and emitting
// render commands for visible, renderable nodes.
func (s *Scene) traverse(n *Node, parentTransform [6]float64, parentAlpha float64, parentRecomputed bool, treeOrder *int) {
	if !n.Visible {
		return
	}

	recompute := n.transformDirty || parentRecomputed
	if recompute {
		local := computeLocalTransform(n)
		n.worldTransform = multiplyAffine(parentTransform, local)
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}

	if n.Renderable && n.worldAlpha > 0 {
		switch n.Type {
		case NodeTypeRect:
			*treeOrder++
			s.commands = append(s.commands, RenderCommand{
				Type:        CommandRect,
				Name:        n.Name,
				Key:         n.Key,
				Transform:   n.worldTransform,
				Width:       n.Width,
				Height:      n.Height,
				Alpha:       n.worldAlpha,
				Style:       n.Style,
				RenderLayer: n.RenderLayer,
				treeOrder:   *treeOrder,
			})
		case NodeTypeText:
			if n.TextBlock != nil {
				s.commands = emitTextCommands(n.TextBlock, n, s.commands, treeOrder)
			}
		case NodeTypeImage:
			img := s.resolveImage(n)
			*treeOrder++
			s.commands = append(s.commands, RenderCommand{
				Type:        CommandImage,
				Name:        n.Name,
				Key:         n.Key,
				Transform:   n.worldTransform,
				Width:       n.Width,
				Height:      n.Height,
				Alpha:       n.worldAlpha,
				ImageRef:    n.ImageRef,
				ClipCircle:  n.ClipCircle,
				img:         img,
				RenderLayer: n.RenderLayer,
				treeOrder:   *treeOrder,
			})
			// NodeTypeContainer doesn't emit commands
		}
	}

	if len(n.children) == 0 {
		return
	}
	children := n.children
	if !n.childrenSorted {
		s.rebuildSortedChildren(n)
	}
	if n.sortedChildren != nil {
		children = n.sortedChildren
	}
	for _, child := range children {
		s.traverse(child, n.worldTransform, n.worldAlpha, recompute, treeOrder)
	}
}

// resolveImage loads the bitmap for an image node. A reference that fails to
// load is replaced in place by the node's FallbackRef, once; the failed
// reference is not retried.
func (s *Scene) resolveImage(n *Node) image.Image {
	if s.images == nil || n.ImageRef == "" {
		return nil
	}
	img, err := s.images.Load(n.ImageRef)
	if err == nil {
		return img
	}
	if n.FallbackRef == "" || n.FallbackRef == n.ImageRef {
		return nil
	}
	s.logger.Warn().Err(err).Str("ref", n.ImageRef).Str("fallback", n.FallbackRef).Msg("image load failed, using fallback")
	n.ImageRef = n.FallbackRef
	img, err = s.images.Load(n.ImageRef)
	if err != nil {
		return nil
	}
	return img
}

// rebuildSortedChildren rebuilds the ZIndex-sorted traversal order for a node.
// Uses insertion sort: zero allocations, stable, and optimal for the typical
// case of few children that are nearly sorted (O(n) when already sorted).
func (s *Scene) rebuildSortedChildren(n *Node) {
	nc := len(n.children)
	if cap(n.sortedChildren) < nc {
		n.sortedChildren = make([]*Node, nc)
	}
	n.sortedChildren = n.sortedChildren[:nc]
	copy(n.sortedChildren, n.children)
	for i := 1; i < nc; i++ {
		key := n.sortedChildren[i]
		j := i - 1
		for j >= 0 && n.sortedChildren[j].ZIndex > key.ZIndex {
			n.sortedChildren[j+1] = n.sortedChildren[j]
			j--
		}
		n.sortedChildren[j+1] = key
	}
	n.childrenSorted = true
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should sort before or at the same position as b.
// Using <= for treeOrder ensures stability.
func commandLessOrEqual(a, b RenderCommand) bool {
	if a.RenderLayer != b.RenderLayer {
		return a.RenderLayer < b.RenderLayer
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts s.commands in-place using s.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (s *Scene) mergeSort() {
	n := len(s.commands)
	if n <= 1 {
		return
	}
	if cap(s.sortBuf) < n {
		s.sortBuf = make([]RenderCommand, n)
	}
	s.sortBuf = s.sortBuf[:n]

	a := s.commands
	b := s.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(s.commands, s.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
