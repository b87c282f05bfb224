// Package scene composes frames. Section content is drawn innermost over
// the background, then wrapped by the effect stack and then the camera.
// The transition overlay is the outermost layer.
package scene

import (
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/ivlev/scenereel/internal/analyzer"
	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/effects"
	"github.com/ivlev/scenereel/internal/timeline"
	"github.com/ivlev/scenereel/internal/transition"
)

// Assets resolves hero image references. source.Gate satisfies it.
type Assets interface {
	Image(ref string) (img image.Image, placeholder bool)
}

// FallbackObserver is told about every default substituted for an unknown
// tag. metrics.Recorder satisfies it.
type FallbackObserver interface {
	Fallback(kind, value string)
}

// Buffers hands out scratch frames. system.FramePool satisfies it.
type Buffers interface {
	Get(r image.Rectangle) *image.RGBA
	Put(img *image.RGBA)
}

type allocBuffers struct{}

func (allocBuffers) Get(r image.Rectangle) *image.RGBA { return image.NewRGBA(r) }
func (allocBuffers) Put(*image.RGBA)                   {}

// Warning records one fallback taken while resolving the project.
type Warning struct {
	Kind   string
	Value  string
	UnitID string
}

// Option configures a Compositor.
type Option func(*Compositor)

func WithLogger(l *zap.Logger) Option {
	return func(c *Compositor) { c.logger = l }
}

func WithObserver(o FallbackObserver) Option {
	return func(c *Compositor) { c.observer = o }
}

func WithAssets(a Assets) Option {
	return func(c *Compositor) { c.assets = a }
}

func WithBuffers(b Buffers) Option {
	return func(c *Compositor) { c.buffers = b }
}

// WithDetector sets the saliency detector used to place the camera focus of
// image heroes that declare none.
func WithDetector(d analyzer.Detector) Option {
	return func(c *Compositor) { c.detector = d }
}

// section is a section with every tag resolved.
type section struct {
	src    *content.Section
	draw   SectionRenderer
	stack  effects.Stack
	camera *content.Camera
	image  image.Image
	qr     image.Image
}

// Compositor renders any frame of one project on demand. It resolves tags
// and assets once in New; Render only reads that state, so it is safe to
// call from many goroutines.
type Compositor struct {
	timeline *timeline.Timeline
	width    int
	height   int
	bg       *effects.Background
	theme    Theme
	sections []section
	chat     *chatView
	style    effects.Stack

	logger   *zap.Logger
	observer FallbackObserver
	assets   Assets
	buffers  Buffers
	detector analyzer.Detector
	warnings []Warning
}

var explainerTheme = Theme{
	Text:  effects.MustColor("#f8fafc"),
	Muted: effects.MustColor("#cbd5e1"),
	Panel: effects.MustColor("#1e293b"),
}

// New resolves p against its timeline for width×height frames.
func New(p *content.Project, tl *timeline.Timeline, width, height int, opts ...Option) *Compositor {
	c := &Compositor{
		timeline: tl,
		width:    width,
		height:   height,
		logger:   zap.NewNop(),
		buffers:  allocBuffers{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "scene"))
	if c.detector == nil {
		c.detector = analyzer.NewSaliencyDetector()
	}

	bg, ok := effects.NewBackground(p.Background)
	if !ok {
		c.fallback("background", p.Background.Style, "")
	}
	c.bg = bg

	if p.Kind == content.KindChat {
		c.resolveChat(p)
		return c
	}

	c.theme = explainerTheme
	c.theme.Accent = bg.Colors[len(bg.Colors)-1]
	base := p.Style()
	c.sections = make([]section, len(p.Sections))
	for i := range p.Sections {
		c.sections[i] = c.resolveSection(&p.Sections[i], base)
	}
	return c
}

func (c *Compositor) resolveChat(p *content.Project) {
	pl, ok := PlatformFor(p.Platform)
	if !ok {
		c.fallback("platform", p.Platform, "")
	}
	mode, _ := content.ParseDisplayMode(p.DisplayMode)
	c.chat = &chatView{platform: pl, contact: p.Contact, messages: p.Messages, mode: mode}
	if p.Background.Style == "" {
		c.bg = &effects.Background{
			Style:  effects.BackgroundSolid,
			Colors: []color.NRGBA{pl.Background, pl.Background, pl.Header},
		}
	}
	style, ok := effects.NewStack(p.Style())
	if !ok {
		c.fallback("color_grade", p.Style().ColorGrade, "")
	}
	c.style = style
}

func (c *Compositor) resolveSection(s *content.Section, base content.VisualStyle) section {
	out := section{src: s, camera: s.Camera}

	draw, fallback := Dispatch(s.Type)
	out.draw = draw
	if fallback {
		// The timeline builder already counted this one.
		c.warnings = append(c.warnings, Warning{Kind: "section_type", Value: string(s.Type), UnitID: s.ID})
		c.logger.Debug("headline renderer substituted", zap.String("unit_id", s.ID), zap.String("type", string(s.Type)))
	}

	style := base.Merge(s.VisualStyle)
	stack, ok := effects.NewStack(style)
	if !ok {
		c.fallback("color_grade", style.ColorGrade, s.ID)
	}
	out.stack = stack

	if s.Camera != nil {
		if _, ok := effects.ParseCameraType(s.Camera.Type); !ok {
			c.fallback("camera", s.Camera.Type, s.ID)
		}
	}
	if s.Transition != nil {
		if _, ok := transition.Parse(s.Transition.Type); !ok {
			c.fallback("transition", s.Transition.Type, s.ID)
		}
	}

	if s.Type == content.SectionImageHero && s.Image != nil && c.assets != nil {
		c.resolveHero(&out)
	}
	if s.Type == content.SectionOutro && s.CTA != "" {
		c.resolveQR(&out)
	}
	return out
}

func (c *Compositor) resolveHero(out *section) {
	s := out.src
	img, placeholder := c.assets.Image(s.Image.URL)
	if img == nil {
		return
	}
	box := HeroBox(s.Image.Position, c.width, c.height)

	focus := content.Point{X: 50, Y: 50}
	switch {
	case s.Camera != nil && s.Camera.FocusPoint != nil:
		// An explicit camera focus doubles as the crop anchor.
		focus = *s.Camera.FocusPoint
	case !placeholder:
		if pt, ok := analyzer.FocusPoint(c.detector, img); ok {
			focus = pt
			c.logger.Debug("auto focus", zap.String("unit_id", s.ID), zap.Float64("x", pt.X), zap.Float64("y", pt.Y))
		}
	}
	out.image = FitHero(img, box.Dx(), box.Dy(), s.Image.Fit, focus)

	if s.Camera != nil && s.Camera.FocusPoint == nil {
		cam := *s.Camera
		cam.FocusPoint = &content.Point{
			X: (float64(box.Min.X) + focus.X/100*float64(box.Dx())) / float64(c.width) * 100,
			Y: (float64(box.Min.Y) + focus.Y/100*float64(box.Dy())) / float64(c.height) * 100,
		}
		out.camera = &cam
	}
}

func (c *Compositor) resolveQR(out *section) {
	q, err := qrcode.New(out.src.CTA, qrcode.Medium)
	if err != nil {
		c.logger.Warn("cta qr code", zap.String("unit_id", out.src.ID), zap.Error(err))
		return
	}
	size := int(QRSize * float64(min(c.width, c.height)) / baseSize)
	out.qr = q.Image(max(size, 64))
}

func (c *Compositor) fallback(kind, value, unitID string) {
	c.warnings = append(c.warnings, Warning{Kind: kind, Value: value, UnitID: unitID})
	fields := []zap.Field{zap.String(kind, value)}
	if unitID != "" {
		fields = append(fields, zap.String("unit_id", unitID))
	}
	c.logger.Warn("unknown "+kind+", using default", fields...)
	if c.observer != nil {
		c.observer.Fallback(kind, value)
	}
}

// Warnings lists the fallbacks taken in New.
func (c *Compositor) Warnings() []Warning {
	return append([]Warning(nil), c.warnings...)
}

// Bounds is the frame rectangle Render expects.
func (c *Compositor) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// Render draws frame into dst, overwriting every pixel. Frames outside the
// timeline are clamped to the nearest valid one.
func (c *Compositor) Render(dst *image.RGBA, frame int) {
	frame = c.timeline.Clamp(frame)
	if c.chat != nil {
		c.renderChat(dst, frame)
		return
	}
	if len(c.sections) == 0 {
		c.bg.Draw(dst, frame)
		return
	}

	if tw, ok := c.timeline.TransitionAt(frame); ok {
		st := transition.At(tw, frame)
		if st.Kind.NeedsBoth() {
			out := c.buffers.Get(dst.Rect)
			in := c.buffers.Get(dst.Rect)
			c.renderSection(out, tw.From, frame)
			c.renderSection(in, tw.To, frame)
			transition.Wipe(dst, out, in, st.Reveal)
			c.buffers.Put(out)
			c.buffers.Put(in)
			return
		}
		unit := tw.From
		if st.Incoming {
			unit = tw.To
		}
		c.renderSection(dst, unit, frame)
		transition.Overlay(dst, st)
		return
	}

	_, w, _ := c.timeline.WindowAt(frame)
	c.renderSection(dst, w.Unit, frame)
}

func (c *Compositor) renderSection(dst *image.RGBA, unit, frame int) {
	w, ok := c.timeline.UnitWindow(unit)
	if !ok || unit < 0 || unit >= len(c.sections) {
		c.bg.Draw(dst, frame)
		return
	}
	s := &c.sections[unit]
	c.bg.Draw(dst, frame)

	layer := c.buffers.Get(dst.Rect)
	defer c.buffers.Put(layer)
	cv := NewCanvas(layer)
	defer cv.Close()

	local := w.Local(frame)
	s.draw(&Scene{
		Canvas:  cv,
		Section: s.src,
		Frame:   Frame{Global: frame, Local: local, Duration: w.DurationFrames},
		Theme:   c.theme,
		Image:   s.image,
		QR:      s.qr,
	})
	s.stack.Apply(layer)
	effects.CameraAt(s.camera, local, w.DurationFrames).Apply(dst, layer)
}

func (c *Compositor) renderChat(dst *image.RGBA, frame int) {
	c.bg.Draw(dst, frame)
	layer := c.buffers.Get(dst.Rect)
	defer c.buffers.Put(layer)
	cv := NewCanvas(layer)
	defer cv.Close()

	c.chat.draw(cv, c.timeline, frame)
	c.style.Apply(layer)
	effects.Identity().Apply(dst, layer)
}
