package projectmap

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func subs(n int) []Subscription {
	out := make([]Subscription, n)
	for i := range out {
		out[i] = Subscription{ID: i, Login: string(rune('a' + i)), AvatarURL: "/u" + string(rune('a'+i)) + ".png"}
	}
	return out
}

func TestLayoutAvatarsEmpty(t *testing.T) {
	c := LayoutAvatars(nil, 3)
	if !c.Empty() || c.OverflowLabel() != "" || c.PlateWidth != 0 {
		t.Errorf("empty cluster = %+v", c)
	}
}

func TestLayoutAvatarsFits(t *testing.T) {
	c := LayoutAvatars(subs(3), 3)
	if len(c.Badges) != 3 || c.Overflow != 0 {
		t.Fatalf("cluster = %+v", c)
	}
	if !approxEqual(c.PlateWidth, 3*AvatarBadgeBox, epsilon) {
		t.Errorf("PlateWidth = %v", c.PlateWidth)
	}
	if !approxEqual(c.PlateX+c.PlateWidth, AvatarAnchor, epsilon) {
		t.Error("plate should be right-aligned on the anchor")
	}
	for i, b := range c.Badges {
		want := c.PlateX + float64(i)*(AvatarSize+AvatarSpacing) + 2
		if !approxEqual(b.X, want, epsilon) || b.Y != 2 {
			t.Errorf("badge %d at (%v, %v), want (%v, 2)", i, b.X, b.Y, want)
		}
	}
	if c.Badges[1].Login != "b" {
		t.Error("input order not kept")
	}
}

func TestLayoutAvatarsOverflow(t *testing.T) {
	c := LayoutAvatars(subs(5), 3)
	if len(c.Badges) != 2 || c.Overflow != 3 || c.OverflowLabel() != "+3" {
		t.Fatalf("cluster = %+v", c)
	}
	if !approxEqual(c.PlateWidth, 3*AvatarBadgeBox, epsilon) {
		t.Errorf("PlateWidth = %v", c.PlateWidth)
	}
	wantX := c.PlateX + 2*(AvatarSize+AvatarSpacing) + AvatarSize/2 + 2
	if !approxEqual(c.OverflowX, wantX, epsilon) || c.OverflowY != AvatarBadgeBox/2 {
		t.Errorf("overflow label at (%v, %v)", c.OverflowX, c.OverflowY)
	}
}

func TestLayoutAvatarsDefaults(t *testing.T) {
	in := []Subscription{{AvatarURL: "  "}}
	c := LayoutAvatars(in, 0)
	if c.Badges[0].Ref != DefaultAvatarRef {
		t.Errorf("Ref = %q, want default", c.Badges[0].Ref)
	}
	if got := LayoutAvatars(subs(4), 0); got.Overflow != 2 {
		t.Errorf("maxDisplay 0 should mean %d, got overflow %d", DefaultMaxAvatars, got.Overflow)
	}
}

func TestAvatarClusterEqual(t *testing.T) {
	a := LayoutAvatars(subs(5), 3)
	b := LayoutAvatars(subs(5), 3)
	if !a.Equal(b) {
		t.Error("identical layouts should be equal")
	}
	changed := subs(5)
	changed[0].AvatarURL = "/other.png"
	if a.Equal(LayoutAvatars(changed, 3)) {
		t.Error("different avatar should not be equal")
	}
	if a.Equal(LayoutAvatars(subs(6), 3)) {
		t.Error("different overflow should not be equal")
	}
}

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	f, err := os.Create(filepath.Join(dir, "default_avatar.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	d := DirLoader{Root: dir}
	got, err := d.LoadImage(DefaultAvatarRef)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if b := got.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("bounds = %v", b)
	}

	if _, err := d.LoadImage("/missing.png"); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := d.LoadImage("https://example.com/a.png"); err == nil {
		t.Error("remote reference without a Remote loader should fail")
	}
}

func TestDirLoaderRemoteRefs(t *testing.T) {
	var got []string
	d := DirLoader{
		Root: t.TempDir(),
		Remote: ImageLoaderFunc(func(ref string) (image.Image, error) {
			got = append(got, ref)
			return image.NewRGBA(image.Rect(0, 0, 20, 20)), nil
		}),
	}

	img, err := d.LoadImage("https://avatars.example.com/u/7.png")
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 20 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if _, err := d.LoadImage("/local.png"); err == nil {
		t.Error("missing local file should fail")
	}
	if len(got) != 1 || got[0] != "https://avatars.example.com/u/7.png" {
		t.Errorf("remote calls = %v, want only the URL", got)
	}
}

func TestAvatarImagesCachesAndReportsOnce(t *testing.T) {
	calls := 0
	images := NewAvatarImages(ImageLoaderFunc(func(ref string) (image.Image, error) {
		calls++
		if ref == "/bad.png" {
			return nil, errors.New("boom")
		}
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	}))
	var failed []string
	images.OnError = func(ref string, _ error) { failed = append(failed, ref) }

	for i := 0; i < 3; i++ {
		if _, err := images.Load("/ok.png"); err != nil {
			t.Fatal(err)
		}
		if _, err := images.Load("/bad.png"); err == nil {
			t.Fatal("expected error")
		}
	}
	if calls != 2 {
		t.Errorf("loader calls = %d, want 2", calls)
	}
	if len(failed) != 1 || failed[0] != "/bad.png" {
		t.Errorf("OnError calls = %v", failed)
	}
	if img, err := images.Load("/bad.png"); img != nil || err == nil || err.Error() != "boom" {
		t.Errorf("cached failure = (%v, %v), want the first error", img, err)
	}
	if images.Len() != 2 {
		t.Errorf("Len = %d", images.Len())
	}
}

func TestAvatarImagesNilLoader(t *testing.T) {
	images := NewAvatarImages(nil)
	if _, err := images.Load("/a.png"); err == nil {
		t.Error("nil loader should fail")
	}
}

func TestAvatarImagesNilImage(t *testing.T) {
	images := NewAvatarImages(ImageLoaderFunc(func(string) (image.Image, error) { return nil, nil }))
	if _, err := images.Load("/a.png"); err == nil {
		t.Error("a nil bitmap without error should still fail")
	}
}
