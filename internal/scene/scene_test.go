package scene

import (
	"bytes"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/timeline"
)

const testW, testH = 160, 90

func explainer(sections ...content.Section) *content.Project {
	return &content.Project{Version: "1.0", Kind: content.KindExplainer, Sections: sections}
}

func compose(t *testing.T, p *content.Project, opts ...Option) (*Compositor, *timeline.Timeline) {
	t.Helper()
	var tl *timeline.Timeline
	if p.Kind == content.KindChat {
		mode, _ := content.ParseDisplayMode(p.DisplayMode)
		tl = timeline.BuildMessages(len(p.Messages), mode, 30)
	} else {
		tl = timeline.BuildSections(p.Sections, 30)
	}
	return New(p, tl, testW, testH, opts...), tl
}

func render(c *Compositor, frame int) *image.RGBA {
	dst := image.NewRGBA(c.Bounds())
	c.Render(dst, frame)
	return dst
}

type fakeObserver struct {
	mu   sync.Mutex
	seen []string
}

func (f *fakeObserver) Fallback(kind, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, kind+"="+value)
}

type fakeAssets struct {
	img         image.Image
	placeholder bool
}

func (f fakeAssets) Image(string) (image.Image, bool) { return f.img, f.placeholder }

func TestDispatch(t *testing.T) {
	for _, typ := range content.SectionTypes {
		r, fallback := Dispatch(typ)
		assert.NotNil(t, r, typ)
		assert.False(t, fallback, typ)
	}
	r, fallback := Dispatch("foo")
	assert.NotNil(t, r)
	assert.True(t, fallback)

	_, fallback = Dispatch("Bullet_List")
	assert.True(t, fallback, "tags match exactly")
}

func TestUnknownSectionRendersAsHeadline(t *testing.T) {
	unknown := content.Section{ID: "x", Type: "foo", Headline: "Hello world", Subheadline: "sub"}
	known := unknown
	known.Type = content.SectionHeadline

	cu, tl := compose(t, explainer(unknown))
	ck, _ := compose(t, explainer(known))

	require.Equal(t, []Warning{{Kind: "section_type", Value: "foo", UnitID: "x"}}, cu.Warnings())
	assert.Empty(t, ck.Warnings())

	for _, f := range []int{0, 10, 30, 60, tl.TotalFrames - 1} {
		assert.True(t, bytes.Equal(render(cu, f).Pix, render(ck, f).Pix), "frame %d", f)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	p := explainer(
		content.Section{ID: "a", Type: content.SectionIntro, Headline: "Hi", Subheadline: "there",
			Camera:     &content.Camera{Type: "ken-burns"},
			Transition: &content.Transition{Type: "glitch"}},
		content.Section{ID: "b", Type: content.SectionStats, Headline: "Numbers",
			Stats: []content.Stat{{Value: "1,200", Label: "users"}, {Value: "99.9", Label: "uptime", Suffix: "%"}}},
	)
	p.VisualStyle = &content.VisualStyle{ColorGrade: "cinematic-warm", Grain: &content.Effect{Enabled: true}}
	c, tl := compose(t, p)

	frames := []int{0, 45, 80, 95, 100, 140, tl.TotalFrames - 1}
	want := make([][]byte, len(frames))
	for i, f := range frames {
		want[i] = render(c, f).Pix
	}

	var wg sync.WaitGroup
	for i, f := range frames {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, bytes.Equal(want[i], render(c, f).Pix), "frame %d", f)
		}()
	}
	wg.Wait()
}

func TestRenderClampsOutOfRangeFrames(t *testing.T) {
	c, tl := compose(t, explainer(content.Section{ID: "a", Type: content.SectionHeadline, Headline: "Hi"}))
	assert.Equal(t, render(c, tl.TotalFrames-1).Pix, render(c, tl.TotalFrames+500).Pix)
	assert.Equal(t, render(c, 0).Pix, render(c, -3).Pix)
}

func TestFallbacksAreFlagged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rec := &fakeObserver{}
	p := explainer(content.Section{
		ID: "s1", Type: content.SectionHeadline, Headline: "Hi",
		Camera:      &content.Camera{Type: "barrel-roll"},
		Transition:  &content.Transition{Type: "spin"},
		VisualStyle: &content.VisualStyle{ColorGrade: "sepia-ish"},
	}, content.Section{ID: "s2", Type: content.SectionHeadline, Headline: "Bye"})
	p.Background = content.Background{Style: "lava"}

	c, tl := compose(t, p, WithLogger(zap.New(core)), WithObserver(rec))

	assert.ElementsMatch(t, []string{
		"background=lava", "color_grade=sepia-ish", "camera=barrel-roll", "transition=spin",
	}, rec.seen)
	assert.Len(t, c.Warnings(), 4)
	assert.Equal(t, 4, logs.Len())
	assert.Len(t, logs.FilterField(zap.String("unit_id", "s1")).All(), 3)

	for f := 0; f < tl.TotalFrames; f += 17 {
		assert.NotPanics(t, func() { render(c, f) })
	}
}

func TestTransitionFrames(t *testing.T) {
	for _, typ := range []string{"fade-black", "fade-white", "flash", "blur", "wipe-radial", "pixelate", "zoom-through"} {
		p := explainer(
			content.Section{ID: "a", Type: content.SectionHeadline, Headline: "One", Transition: &content.Transition{Type: typ}},
			content.Section{ID: "b", Type: content.SectionQuote, Quote: "Two", QuoteAttribution: "me"},
		)
		c, tl := compose(t, p)
		require.Len(t, tl.Transitions, 1, typ)
		tw := tl.Transitions[0]
		for f := tw.StartFrame; f < tw.EndFrame; f += 5 {
			assert.NotPanics(t, func() { render(c, f) }, "%s frame %d", typ, f)
		}
		assert.Empty(t, c.Warnings(), typ)
	}
}

func TestAllSectionTypesRender(t *testing.T) {
	p := explainer(
		content.Section{ID: "1", Type: content.SectionIntro, Headline: "Intro", Subheadline: "sub"},
		content.Section{ID: "2", Type: content.SectionBulletList, Headline: "List", Bullets: []string{"a", "b", "c"}},
		content.Section{ID: "3", Type: content.SectionImageHero, Headline: "Look", Image: &content.Image{URL: "x.png", Position: "left"},
			Camera: &content.Camera{Type: "zoom-in-slow"}},
		content.Section{ID: "4", Type: content.SectionComparison, Headline: "Versus", Bullets: []string{"x", "y", "z"}},
		content.Section{ID: "5", Type: content.SectionCode, Code: "func main() {\n\t// hi\n\tfmt.Println(\"x\", 42)\n}"},
		content.Section{ID: "6", Type: content.SectionOutro, Headline: "Bye", CTA: "https://example.com"},
	)
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	c, tl := compose(t, p, WithAssets(fakeAssets{img: img}))

	for f := 0; f < tl.TotalFrames; f += 23 {
		assert.NotPanics(t, func() { render(c, f) }, "frame %d", f)
	}
	assert.NotNil(t, c.sections[2].image)
	assert.NotNil(t, c.sections[5].qr)
	require.NotNil(t, c.sections[2].camera.FocusPoint, "hero camera gets an automatic focus")
}

func TestHeroExplicitFocusIsKept(t *testing.T) {
	focus := &content.Point{X: 20, Y: 30}
	p := explainer(content.Section{ID: "h", Type: content.SectionImageHero,
		Image:  &content.Image{URL: "x.png"},
		Camera: &content.Camera{Type: "zoom-in-slow", FocusPoint: focus}})
	c, _ := compose(t, p, WithAssets(fakeAssets{img: image.NewRGBA(image.Rect(0, 0, 10, 10))}))
	assert.Same(t, focus, c.sections[0].camera.FocusPoint)
}

func TestHeroContent(t *testing.T) {
	p := explainer(content.Section{ID: "h", Type: content.SectionImageHero, Image: &content.Image{URL: "x.png", Position: "background"}})
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 255
		if i%4 == 1 || i%4 == 2 {
			img.Pix[i] = 0
		}
	}
	c, _ := compose(t, p, WithAssets(fakeAssets{img: img}))

	frame := render(c, 60)
	px := frame.RGBAAt(testW/2, testH/8)
	assert.Greater(t, px.R, uint8(200), "settled hero covers the frame")
	assert.Less(t, px.G, uint8(40))
}

func TestHeroFitIsResolvedAtBuild(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for _, tt := range []struct {
		fit  string
		w, h int
	}{
		{"", testW, testH},
		{"cover", testW, testH},
		{"contain", testH, testH},
	} {
		p := explainer(content.Section{ID: "h", Type: content.SectionImageHero,
			Image: &content.Image{URL: "x.png", Position: "background", Fit: tt.fit}})
		c, tl := compose(t, p, WithAssets(fakeAssets{img: img}))
		require.NotNil(t, c.sections[0].image, tt.fit)
		assert.Equal(t, image.Pt(tt.w, tt.h), c.sections[0].image.Bounds().Size(), "fit %q", tt.fit)
		assert.NotPanics(t, func() { render(c, tl.TotalFrames-1) }, tt.fit)
	}
}

func TestChatModesRender(t *testing.T) {
	msgs := []content.Message{
		{ID: "1", Text: "hey", Sender: content.SenderThem},
		{ID: "2", Text: "hi! long time no see, how have you been?", Sender: content.SenderMe},
		{ID: "3", Text: "good", Sender: content.SenderThem},
	}
	for _, mode := range []string{"auto-scroll", "one-at-a-time", "paired"} {
		p := &content.Project{Kind: content.KindChat, DisplayMode: mode, Platform: "imessage",
			Contact: content.Contact{Name: "Sam"}, Messages: msgs}
		c, tl := compose(t, p)
		assert.Empty(t, c.Warnings(), mode)
		for f := 0; f < tl.TotalFrames; f += 11 {
			assert.NotPanics(t, func() { render(c, f) }, "%s frame %d", mode, f)
		}
	}
}

func TestChatTypingDiffersFromVisible(t *testing.T) {
	p := &content.Project{Kind: content.KindChat, Messages: []content.Message{{ID: "1", Text: "hello there", Sender: content.SenderMe}}}
	c, tl := compose(t, p)
	w, ok := tl.UnitWindow(0)
	require.True(t, ok)

	typing := render(c, w.StartFrame+10)
	shown := render(c, w.StartFrame+tl.Timing.Typing+20)
	assert.False(t, bytes.Equal(typing.Pix, shown.Pix))
}

func TestUnknownPlatform(t *testing.T) {
	rec := &fakeObserver{}
	p := &content.Project{Kind: content.KindChat, Platform: "myspace", Messages: []content.Message{{ID: "1", Text: "x", Sender: content.SenderMe}}}
	c, _ := compose(t, p, WithObserver(rec))
	assert.Equal(t, []string{"platform=myspace"}, rec.seen)
	assert.Equal(t, DefaultPlatform, c.chat.platform.ID)
}

func TestPlatformFor(t *testing.T) {
	for _, id := range Platforms() {
		p, ok := PlatformFor(id)
		assert.True(t, ok, id)
		assert.Equal(t, id, p.ID)
		assert.NotZero(t, p.FontSize, id)
	}
	p, ok := PlatformFor(" Telegram ")
	assert.True(t, ok)
	assert.Equal(t, "telegram", p.ID)

	p, ok = PlatformFor("")
	assert.True(t, ok)
	assert.Equal(t, DefaultPlatform, p.ID)

	_, ok = PlatformFor("icq")
	assert.False(t, ok)
	assert.Len(t, Platforms(), 6)
}

func TestCountUp(t *testing.T) {
	tests := []struct {
		value string
		p     float64
		want  string
	}{
		{"1,200", 1, "1,200"},
		{"1,200", 0.5, "600"},
		{"12,345,678", 1, "12,345,678"},
		{"99.9", 0, "0.0"},
		{"99.9", 1, "99.9"},
		{"$5M", 1, "$5M"},
		{"$5M", 0.4, "$2M"},
		{"N/A", 0.3, "N/A"},
		{"250", 2, "250"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountUp(tt.value, tt.p), "%s@%v", tt.value, tt.p)
	}
}

func TestComparisonColumns(t *testing.T) {
	l, r := ComparisonColumns(&content.Section{Bullets: []string{"a", "b", "c"}})
	assert.Equal(t, []string{"a", "b"}, l.Items)
	assert.Equal(t, []string{"c"}, r.Items)

	sec := &content.Section{Comparison: &content.Comparison{
		Left:  content.Column{Title: "Before", Items: []string{"slow"}},
		Right: content.Column{Title: "After", Items: []string{"fast"}},
	}}
	l, r = ComparisonColumns(sec)
	assert.Equal(t, "Before", l.Title)
	assert.Equal(t, "After", r.Title)

	l, r = ComparisonColumns(&content.Section{})
	assert.Empty(t, l.Items)
	assert.Empty(t, r.Items)
}

func TestHeroBox(t *testing.T) {
	frame := image.Rect(0, 0, 1280, 720)
	for _, pos := range []string{"", "center", "top", "bottom", "left", "right", "background"} {
		box := HeroBox(pos, 1280, 720)
		assert.True(t, box.In(frame), pos)
		assert.False(t, box.Empty(), pos)
	}
	assert.Equal(t, frame, HeroBox("background", 1280, 720))
}

func TestFitHeroCropsAroundFocus(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= 100 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	right := FitHero(img, 50, 50, "cover", content.Point{X: 90, Y: 50})
	assert.Equal(t, image.Rect(0, 0, 50, 50), right.Bounds())
	_, _, b, _ := right.At(25, 25).RGBA()
	assert.Greater(t, b, uint32(0xf000))

	left := FitHero(img, 50, 50, "cover", content.Point{X: 5, Y: 50})
	r, _, _, _ := left.At(25, 25).RGBA()
	assert.Greater(t, r, uint32(0xf000))

	contain := FitHero(img, 50, 50, "contain", content.Point{X: 50, Y: 50})
	assert.Equal(t, 50, contain.Bounds().Dx())
	assert.Equal(t, 25, contain.Bounds().Dy())
}

func TestCodeLines(t *testing.T) {
	lines := CodeLines(&content.Section{Code: "a\n\tb\n"})
	assert.Equal(t, []string{"a", "    b"}, lines)
	assert.Equal(t, []string{"x"}, CodeLines(&content.Section{Body: "x"}))
	assert.Nil(t, CodeLines(&content.Section{}))
}
