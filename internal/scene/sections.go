package scene

import (
	"image"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/effects"
	"github.com/ivlev/scenereel/internal/renderer"
)

// Authored sizes for a 720px short side.
const (
	titleSize    = 64
	subtitleSize = 34
	bodySize     = 26
	gapSize      = 24
	riseSize     = 24
)

var (
	headlineStagger = renderer.Stagger{Base: 0, Step: 3, Length: 25}
	bulletStagger   = renderer.Stagger{Base: 15, Step: 10, Length: 15}
	statStagger     = renderer.Stagger{Base: 15, Step: 8, Length: 20}
	itemStagger     = renderer.Stagger{Base: 25, Step: 8, Length: 15}
	codeStagger     = renderer.Stagger{Base: 10, Step: 4, Length: 10}
)

// countUpFrames is how long a stat value takes to reach its target.
const countUpFrames = 30

var outCubic = renderer.WithEasing(renderer.EaseOutCubic)

func (c *Canvas) rise(a float64) float64 {
	return (1 - a) * c.Px(riseSize)
}

func wrappedHeight(c *Canvas, text string, width float64) float64 {
	if text == "" {
		return 0
	}
	return float64(len(c.DC.WordWrap(text, width))) * c.DC.FontHeight() * lineSpacing
}

// block is one centered paragraph of a text column.
type block struct {
	text     string
	kind     FontKind
	size     float64
	col      color.NRGBA
	from, to int
	words    bool // stagger the entrance per word
}

// drawColumn stacks blocks centered on (cx, cy) and fades each over its own
// local span.
func drawColumn(c *Canvas, local int, cx, cy, width float64, blocks []block) {
	heights := make([]float64, len(blocks))
	total := 0.0
	for i, b := range blocks {
		if b.text == "" {
			continue
		}
		c.Font(b.kind, b.size)
		heights[i] = wrappedHeight(c, b.text, width)
		if total > 0 {
			total += c.Px(gapSize)
		}
		total += heights[i]
	}

	y := cy - total/2
	first := true
	for i, b := range blocks {
		if b.text == "" {
			continue
		}
		if !first {
			y += c.Px(gapSize)
		}
		first = false
		c.Font(b.kind, b.size)
		if b.words {
			drawWords(c, b.text, cx, y, width, b.col, local-b.from, headlineStagger)
		} else {
			a := renderer.Fade(local, b.from, b.to, outCubic)
			c.Wrapped(b.text, cx, y+c.rise(a), 0.5, 0, width, gg.AlignCenter, b.col, a)
		}
		y += heights[i]
	}
}

// drawWords lays text out centered and lets each word rise in on its own
// stagger slot.
func drawWords(c *Canvas, text string, cx, top, width float64, col color.NRGBA, local int, st renderer.Stagger) {
	lh := c.DC.FontHeight() * lineSpacing
	space, _ := c.DC.MeasureString(" ")
	k := 0
	for i, line := range c.DC.WordWrap(text, width) {
		lw, _ := c.DC.MeasureString(line)
		x := cx - lw/2
		y := top + float64(i)*lh
		for _, w := range strings.Fields(line) {
			a := renderer.EaseOutCubic(st.Progress(local, k))
			ww, _ := c.DC.MeasureString(w)
			c.Text(w, x, y+c.rise(a), 0, 1, col, a)
			x += ww + space
			k++
		}
	}
}

// drawTitle draws the headline strip at the top of list-like sections and
// returns its bottom edge.
func drawTitle(s *Scene, size float64) float64 {
	c := s.Canvas
	top := c.H * 0.1
	if s.Section.Headline == "" {
		return top
	}
	c.Font(Bold, size)
	width := c.W * 0.84
	a := s.Frame.Fade(0, 20, outCubic)
	h := c.Wrapped(s.Section.Headline, c.W/2, top+c.rise(a), 0.5, 0, width, gg.AlignCenter, s.Theme.Text, a)
	return top + h
}

func drawHeadline(s *Scene) {
	c, sec := s.Canvas, s.Section
	drawColumn(c, s.Frame.Local, c.W/2, c.H/2, c.W*0.8, []block{
		{text: sec.Headline, kind: Bold, size: titleSize, col: s.Theme.Text, from: 0, to: 25, words: true},
		{text: sec.Subheadline, kind: Regular, size: subtitleSize, col: s.Theme.Muted, from: 15, to: 40},
		{text: sec.Body, kind: Regular, size: bodySize, col: s.Theme.Muted, from: 30, to: 55},
	})
}

func drawIntro(s *Scene) {
	c, sec, f := s.Canvas, s.Section, s.Frame
	cx, width := c.W/2, c.W*0.85

	c.Font(Bold, 80)
	th := wrappedHeight(c, sec.Headline, width)
	c.Font(Regular, subtitleSize)
	sh := wrappedHeight(c, sec.Subheadline, width)
	barGap, barH := c.Px(22), c.Px(6)
	top := c.H/2 - (th+2*barGap+barH+sh)/2

	pop := renderer.Lerp(0.85, 1, f.Fade(0, 30, renderer.WithEasing(renderer.EaseOutBack)))
	c.Scaled(pop, cx, top+th/2, func() {
		c.Font(Bold, 80)
		c.Wrapped(sec.Headline, cx, top, 0.5, 0, width, gg.AlignCenter, s.Theme.Text, f.Fade(0, 15))
	})

	barY := top + th + barGap
	if bar := f.Fade(10, 40, outCubic) * c.Px(160); bar > 0 {
		c.Panel(cx-bar/2, barY, bar, barH, barH/2, s.Theme.Accent, 1)
	}

	a := f.Fade(20, 45, outCubic)
	c.Font(Regular, subtitleSize)
	c.Wrapped(sec.Subheadline, cx, barY+barH+barGap+c.rise(a), 0.5, 0, width, gg.AlignCenter, s.Theme.Muted, a)
}

func drawBulletList(s *Scene) {
	c, loc := s.Canvas, s.Frame.Local
	titleBottom := drawTitle(s, 52)

	c.Font(Regular, 32)
	left, width := c.W*0.14, c.W*0.72
	indent := c.Px(36)
	spacing := c.Px(22)
	heights := make([]float64, len(s.Section.Bullets))
	total := 0.0
	for i, b := range s.Section.Bullets {
		heights[i] = wrappedHeight(c, b, width-indent)
		total += heights[i]
	}
	total += spacing * float64(max(len(heights)-1, 0))
	y := math.Max(titleBottom+2*c.Px(gapSize), c.H*0.55-total/2)

	dotY := c.DC.FontHeight() * 0.75
	for i, b := range s.Section.Bullets {
		a := renderer.EaseOutCubic(bulletStagger.Progress(loc, i))
		if a > 0 {
			dx := -(1 - a) * c.Px(40)
			c.DC.SetColor(effects.WithAlpha(s.Theme.Accent, a))
			c.DC.DrawCircle(left+dx+c.Px(10), y+dotY, c.Px(7))
			c.DC.Fill()
			c.Wrapped(b, left+dx+indent, y, 0, 0, width-indent, gg.AlignLeft, s.Theme.Text, a)
		}
		y += heights[i] + spacing
	}
}

func drawStats(s *Scene) {
	c, loc := s.Canvas, s.Frame.Local
	stats := s.Section.Stats
	if len(stats) == 0 {
		drawHeadline(s)
		return
	}
	titleBottom := drawTitle(s, 52)

	cols := min(len(stats), 4)
	rows := (len(stats) + cols - 1) / cols
	gap := c.Px(gapSize)
	tileW := (c.W*0.84 - float64(cols-1)*gap) / float64(cols)
	tileH := c.Px(200)
	gridH := float64(rows)*tileH + float64(rows-1)*gap
	top := math.Max(titleBottom+2*gap, c.H*0.56-gridH/2)
	left := c.W * 0.08

	for i, st := range stats {
		a := statStagger.Progress(loc, i)
		if a <= 0 {
			continue
		}
		x := left + float64(i%cols)*(tileW+gap)
		y := top + float64(i/cols)*(tileH+gap)
		cx := x + tileW/2
		value := st.Prefix + CountUp(st.Value, renderer.Progress(loc, statStagger.Delay(i), countUpFrames)) + st.Suffix

		c.Scaled(renderer.Lerp(0.8, 1, renderer.EaseOutBack(a)), cx, y+tileH/2, func() {
			c.Panel(x, y, tileW, tileH, c.Px(18), s.Theme.Panel, 0.85*a)
			c.Font(Bold, 56)
			c.Text(value, cx, y+tileH*0.42, 0.5, 0.5, s.Theme.Accent, a)
			c.Font(Regular, 24)
			c.Text(st.Label, cx, y+tileH*0.74, 0.5, 0.5, s.Theme.Muted, a)
		})
	}
}

var numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// CountUp replaces the first number in value with its share p of the
// target. Decimals and thousands separators of the source are kept; values
// without a number are returned unchanged.
func CountUp(value string, p float64) string {
	loc := numberPattern.FindStringIndex(value)
	if loc == nil {
		return value
	}
	num := value[loc[0]:loc[1]]
	plain := strings.ReplaceAll(num, ",", "")
	target, err := strconv.ParseFloat(plain, 64)
	if err != nil {
		return value
	}
	decimals := 0
	if i := strings.IndexByte(plain, '.'); i >= 0 {
		decimals = len(plain) - i - 1
	}
	text := strconv.FormatFloat(target*renderer.Clamp01(p), 'f', decimals, 64)
	if strings.Contains(num, ",") {
		text = groupThousands(text)
	}
	return value[:loc[0]] + text + value[loc[1]:]
}

func groupThousands(s string) string {
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String() + frac
}

// HeroBox is the frame area a hero image occupies for a position tag.
func HeroBox(position string, w, h int) image.Rectangle {
	switch position {
	case "background":
		return image.Rect(0, 0, w, h)
	case "top":
		return image.Rect(0, 0, w, h*55/100)
	case "bottom":
		return image.Rect(0, h*45/100, w, h)
	case "left":
		return image.Rect(0, 0, w*55/100, h)
	case "right":
		return image.Rect(w*45/100, 0, w, h)
	}
	bw, bh := w*70/100, h*60/100
	return image.Rect((w-bw)/2, h*8/100, (w+bw)/2, h*8/100+bh)
}

// heroText is the text column left free by the image: center x, center y
// and width.
func heroText(position string, w, h float64) (float64, float64, float64) {
	switch position {
	case "background":
		return w / 2, h * 0.72, w * 0.8
	case "top":
		return w / 2, h * 0.77, w * 0.84
	case "bottom":
		return w / 2, h * 0.23, w * 0.84
	case "left":
		return w * 0.775, h / 2, w * 0.39
	case "right":
		return w * 0.225, h / 2, w * 0.39
	}
	return w / 2, h * 0.83, w * 0.84
}

// FitHero sizes img for a w×h box. cover crops around focus (percent of
// the image); contain letterboxes.
func FitHero(img image.Image, w, h int, fit string, focus content.Point) image.Image {
	if fit == "contain" {
		return imaging.Fit(img, w, h, imaging.Lanczos)
	}
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw == 0 || ih == 0 || w <= 0 || h <= 0 {
		return img
	}
	scale := math.Max(float64(w)/iw, float64(h)/ih)
	cw, ch := float64(w)/scale, float64(h)/scale
	cx := math.Min(math.Max(focus.X/100*iw, cw/2), iw-cw/2)
	cy := math.Min(math.Max(focus.Y/100*ih, ch/2), ih-ch/2)
	crop := image.Rect(
		int(math.Round(cx-cw/2)), int(math.Round(cy-ch/2)),
		int(math.Round(cx+cw/2)), int(math.Round(cy+ch/2)),
	).Add(b.Min)
	return imaging.Resize(imaging.Crop(img, crop), w, h, imaging.Lanczos)
}

func fadeImage(img image.Image, a float64) image.Image {
	if a >= 1 {
		return img
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.A = uint8(float64(c.A)*a + 0.5)
		return c
	})
}

func drawImageHero(s *Scene) {
	c, sec, f := s.Canvas, s.Section, s.Frame
	position := "center"
	if sec.Image != nil && sec.Image.Position != "" {
		position = sec.Image.Position
	}

	box := HeroBox(position, int(c.W), int(c.H))
	bx, by := float64(box.Min.X), float64(box.Min.Y)
	bw, bh := float64(box.Dx()), float64(box.Dy())
	if a := f.Fade(0, 20); s.Image != nil && a > 0 {
		zoom := renderer.Lerp(1.05, 1, f.Fade(0, 40, outCubic))
		c.DC.Push()
		if position == "center" {
			c.DC.DrawRoundedRectangle(bx, by, bw, bh, c.Px(20))
		} else {
			c.DC.DrawRectangle(bx, by, bw, bh)
		}
		c.DC.Clip()
		c.DC.ScaleAbout(zoom, zoom, bx+bw/2, by+bh/2)
		c.DC.DrawImageAnchored(fadeImage(s.Image, a), int(bx+bw/2), int(by+bh/2), 0.5, 0.5)
		c.DC.ResetClip()
		c.DC.Pop()
	}

	if position == "background" {
		g := gg.NewLinearGradient(0, c.H*0.35, 0, c.H)
		g.AddColorStop(0, color.NRGBA{A: 0})
		g.AddColorStop(1, color.NRGBA{A: 200})
		c.DC.SetFillStyle(g)
		c.DC.DrawRectangle(0, c.H*0.35, c.W, c.H*0.65)
		c.DC.Fill()
	}

	cx, cy, width := heroText(position, c.W, c.H)
	drawColumn(c, f.Local, cx, cy, width, []block{
		{text: sec.Headline, kind: Bold, size: 52, col: s.Theme.Text, from: 10, to: 35},
		{text: sec.Subheadline, kind: Regular, size: 30, col: s.Theme.Muted, from: 25, to: 50},
		{text: sec.Body, kind: Regular, size: bodySize, col: s.Theme.Muted, from: 30, to: 55},
	})
}

// ComparisonColumns returns the two sides of a comparison. Sections without
// a comparison payload split their bullets in half.
func ComparisonColumns(sec *content.Section) (content.Column, content.Column) {
	if sec.Comparison != nil {
		return sec.Comparison.Left, sec.Comparison.Right
	}
	half := (len(sec.Bullets) + 1) / 2
	return content.Column{Items: sec.Bullets[:half]}, content.Column{Items: sec.Bullets[half:]}
}

func drawComparison(s *Scene) {
	c, f := s.Canvas, s.Frame
	titleBottom := drawTitle(s, 52)
	left, right := ComparisonColumns(s.Section)

	top := math.Max(titleBottom+2*c.Px(gapSize), c.H*0.26)
	h := c.H*0.92 - top
	w := c.W * 0.4
	a := f.Fade(10, 35, outCubic)
	slide := (1 - a) * c.Px(60)

	drawColumnPanel(s, left, c.W*0.07-slide, top, w, h, a, itemStagger)
	drawColumnPanel(s, right, c.W*0.53+slide, top, w, h, a, renderer.Stagger{Base: itemStagger.Base + 4, Step: itemStagger.Step, Length: itemStagger.Length})

	if v := f.Fade(20, 40); v > 0 {
		cx, cy := c.W/2, top+h/2
		c.Scaled(renderer.Lerp(0.5, 1, renderer.EaseOutBack(v)), cx, cy, func() {
			c.DC.SetColor(effects.WithAlpha(s.Theme.Accent, v))
			c.DC.DrawCircle(cx, cy, c.Px(34))
			c.DC.Fill()
			c.Font(Bold, 28)
			c.Text("VS", cx, cy, 0.5, 0.35, s.Theme.Panel, v)
		})
	}
}

func drawColumnPanel(s *Scene, col content.Column, x, y, w, h, a float64, st renderer.Stagger) {
	c := s.Canvas
	c.Panel(x, y, w, h, c.Px(18), s.Theme.Panel, 0.85*a)
	pad := c.Px(28)
	cy := y + pad
	if col.Title != "" {
		c.Font(Bold, 34)
		cy += c.Wrapped(col.Title, x+w/2, cy, 0.5, 0, w-2*pad, gg.AlignCenter, s.Theme.Accent, a) + c.Px(gapSize)
	}
	c.Font(Regular, 26)
	for i, item := range col.Items {
		ia := renderer.EaseOutCubic(st.Progress(s.Frame.Local, i))
		ih := c.Wrapped(item, x+pad, cy+c.rise(ia), 0, 0, w-2*pad, gg.AlignLeft, s.Theme.Text, ia*a)
		cy += ih + c.Px(14)
	}
}

func drawQuote(s *Scene) {
	c, sec, f := s.Canvas, s.Section, s.Frame
	cx := c.W / 2
	width := c.W * 0.76

	c.Font(Regular, 40)
	qh := wrappedHeight(c, sec.Quote, width)
	markH := c.Px(110)
	top := c.H/2 - (markH+qh+c.Px(70))/2

	if m := f.Fade(0, 15); m > 0 {
		c.Scaled(renderer.Lerp(0.6, 1, renderer.EaseOutBack(m)), cx, top+markH/2, func() {
			c.Font(Bold, 160)
			c.Text("“", cx, top+markH*0.95, 0.5, 0.5, s.Theme.Accent, m)
		})
	}

	a := f.Fade(10, 35, outCubic)
	c.Font(Regular, 40)
	c.Wrapped(sec.Quote, cx, top+markH+c.rise(a), 0.5, 0, width, gg.AlignCenter, s.Theme.Text, a)

	if sec.QuoteAttribution != "" {
		at := f.Fade(35, 55, outCubic)
		y := top + markH + qh + c.Px(40)
		c.Font(Regular, 26)
		tw, _ := c.DC.MeasureString(sec.QuoteAttribution)
		line := c.Px(28) * at
		c.Panel(cx-tw/2-c.Px(14)-line, y+c.Px(12), line, c.Px(3), 0, s.Theme.Accent, at)
		c.Text(sec.QuoteAttribution, cx, y+c.rise(at), 0.5, 1, s.Theme.Muted, at)
	}
}

var (
	codeKeyword = effects.MustColor("#c792ea")
	codeString  = effects.MustColor("#c3e88d")
	codeNumber  = effects.MustColor("#f78c6c")
	codeComment = effects.MustColor("#697098")
	codePanel   = effects.MustColor("#0b1020")

	codeToken    = regexp.MustCompile(`"(?:[^"\\]|\\.)*"?|'(?:[^'\\]|\\.)*'?|\w+|\s+|.`)
	codeKeywords = map[string]bool{
		"func": true, "return": true, "if": true, "else": true, "for": true, "range": true,
		"var": true, "const": true, "type": true, "struct": true, "interface": true,
		"package": true, "import": true, "go": true, "defer": true, "switch": true, "case": true,
		"def": true, "class": true, "let": true, "function": true, "async": true, "await": true,
		"nil": true, "true": true, "false": true, "null": true, "None": true,
	}
)

// CodeLines splits source into the lines drawn by a code section. Tabs are
// expanded to four spaces.
func CodeLines(sec *content.Section) []string {
	src := sec.Code
	if src == "" {
		src = sec.Body
	}
	src = strings.TrimRight(strings.ReplaceAll(src, "\t", "    "), "\n")
	if src == "" {
		return nil
	}
	return strings.Split(src, "\n")
}

func tokenColor(tok string, theme Theme) color.NRGBA {
	switch {
	case codeKeywords[tok]:
		return codeKeyword
	case tok[0] == '"' || tok[0] == '\'':
		return codeString
	case tok[0] >= '0' && tok[0] <= '9':
		return codeNumber
	}
	return theme.Text
}

func drawCode(s *Scene) {
	c, f := s.Canvas, s.Frame
	top := c.H * 0.1
	if s.Section.Headline != "" {
		top = drawTitle(s, 44) + c.Px(gapSize)
	}

	c.Font(Mono, 24)
	lh := c.DC.FontHeight() * 1.45
	header := c.Px(52)
	pad := c.Px(28)
	lines := CodeLines(s.Section)
	if fit := int((c.H*0.94 - top - header - pad) / lh); len(lines) > fit {
		lines = lines[:max(fit, 0)]
	}

	x, w := c.W*0.1, c.W*0.8
	h := header + float64(len(lines))*lh + pad
	pa := f.Fade(0, 15)
	c.Panel(x, top, w, h, c.Px(16), codePanel, 0.95*pa)
	for i, dot := range []string{"#ff5f56", "#ffbd2e", "#27c93f"} {
		c.DC.SetColor(effects.WithAlpha(effects.MustColor(dot), pa))
		c.DC.DrawCircle(x+c.Px(26)+float64(i)*c.Px(22), top+header/2, c.Px(7))
		c.DC.Fill()
	}

	for i, line := range lines {
		a := codeStagger.Progress(f.Local, i)
		if a <= 0 {
			continue
		}
		lx := x + pad + (1-a)*c.Px(16)
		ly := top + header + float64(i)*lh
		if t := strings.TrimSpace(line); strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#") {
			c.Text(line, lx, ly, 0, 1, codeComment, a)
			continue
		}
		for _, tok := range codeToken.FindAllString(line, -1) {
			tw, _ := c.DC.MeasureString(tok)
			if strings.TrimSpace(tok) != "" {
				c.Text(tok, lx, ly, 0, 1, tokenColor(tok, s.Theme), a)
			}
			lx += tw
		}
	}
}

// QRSize is the authored edge length of the outro code.
const QRSize = 180

func drawOutro(s *Scene) {
	c, sec, f := s.Canvas, s.Section, s.Frame
	cx, width := c.W/2, c.W*0.8

	c.Font(Bold, 60)
	th := wrappedHeight(c, sec.Headline, width)
	c.Font(Regular, 30)
	sh := wrappedHeight(c, sec.Subheadline, width)
	c.Font(Bold, 30)
	ctaW, ctaH := 0.0, 0.0
	if sec.CTA != "" {
		tw, _ := c.DC.MeasureString(sec.CTA)
		ctaW, ctaH = tw+c.Px(64), c.DC.FontHeight()+c.Px(36)
	}
	qrH := 0.0
	if s.QR != nil {
		qrH = float64(s.QR.Bounds().Dy())
	}
	gap := c.Px(gapSize)
	total := th + sh + ctaH + qrH + 3*gap
	y := c.H/2 - total/2

	c.Font(Bold, 60)
	drawWords(c, sec.Headline, cx, y, width, s.Theme.Text, f.Local, headlineStagger)
	y += th + gap

	a := f.Fade(15, 40, outCubic)
	c.Font(Regular, 30)
	c.Wrapped(sec.Subheadline, cx, y+c.rise(a), 0.5, 0, width, gg.AlignCenter, s.Theme.Muted, a)
	y += sh + gap

	if sec.CTA != "" {
		ca := f.Fade(20, 45)
		pillY := y
		c.Scaled(renderer.Lerp(0.9, 1, renderer.EaseOutBack(ca)), cx, pillY+ctaH/2, func() {
			c.Panel(cx-ctaW/2, pillY, ctaW, ctaH, ctaH/2, s.Theme.Accent, ca)
			c.Font(Bold, 30)
			c.Text(sec.CTA, cx, pillY+ctaH/2, 0.5, 0.35, s.Theme.Panel, ca)
		})
		y += ctaH + gap
	}

	if qa := f.Fade(30, 55); s.QR != nil && qa > 0 {
		c.DC.DrawImageAnchored(fadeImage(s.QR, qa), int(cx), int(y+qrH/2), 0.5, 0.5)
	}
}
