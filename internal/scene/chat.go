package scene

import (
	"image/color"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/fogleman/gg"

	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/effects"
	"github.com/ivlev/scenereel/internal/renderer"
	"github.com/ivlev/scenereel/internal/timeline"
)

// Authored chat metrics.
const (
	chatHeaderHeight = 96
	chatMargin       = 28
	bubblePad        = 18
	bubbleGap        = 14
	typingWidth      = 96
	typingHeight     = 56
	popFrames        = 8
	scrollFrames     = 8
)

// bubble is the measured box of one message at one phase.
type bubble struct {
	state  timeline.MessageState
	msg    content.Message
	typing bool
	w, h   float64
}

// chatView draws chat projects: a platform header over a message stack.
type chatView struct {
	platform Platform
	contact  content.Contact
	messages []content.Message
	mode     content.DisplayMode
}

func (v *chatView) draw(c *Canvas, tl *timeline.Timeline, frame int) {
	headerAlpha := 1.0
	if _, w, ok := tl.WindowAt(frame); ok && w.Kind == timeline.KindIntro {
		headerAlpha = renderer.Fade(w.Local(frame), 0, max(w.DurationFrames/2, 1))
	}

	states := tl.Messages(frame)
	bubbles := make([]bubble, 0, len(states))
	for _, st := range states {
		if st.Unit < 0 || st.Unit >= len(v.messages) {
			continue
		}
		bubbles = append(bubbles, v.measure(c, st))
	}

	top := c.Px(chatHeaderHeight) + c.Px(chatMargin)
	bottom := c.H - c.Px(chatMargin)
	switch v.mode {
	case content.ModeAutoScroll:
		y := top - v.scrollOffset(c, bubbles, bottom-top)
		for _, b := range bubbles {
			v.drawBubble(c, b, y)
			y += b.h + c.Px(bubbleGap)
		}
	default:
		y := top + (bottom-top-stackHeight(c, bubbles))/2
		for _, b := range bubbles {
			v.drawBubble(c, b, y)
			y += b.h + c.Px(bubbleGap)
		}
	}

	v.drawHeader(c, bubbles, headerAlpha)
}

func (v *chatView) measure(c *Canvas, st timeline.MessageState) bubble {
	b := bubble{state: st, msg: v.messages[st.Unit], typing: st.Phase == timeline.PhaseTyping}
	if b.typing {
		b.w, b.h = c.Px(typingWidth), c.Px(typingHeight)
		return b
	}
	c.Font(Regular, v.platform.FontSize)
	pad := c.Px(bubblePad)
	maxText := c.W*0.68 - 2*pad
	lines := c.DC.WordWrap(b.msg.Text, maxText)
	textW := 0.0
	for _, l := range lines {
		lw, _ := c.DC.MeasureString(l)
		textW = math.Max(textW, lw)
	}
	b.w = textW + 2*pad
	b.h = float64(len(lines))*c.DC.FontHeight()*lineSpacing + 2*pad - c.DC.FontHeight()*(lineSpacing-1)
	return b
}

func stackHeight(c *Canvas, bubbles []bubble) float64 {
	h := 0.0
	for i, b := range bubbles {
		if i > 0 {
			h += c.Px(bubbleGap)
		}
		h += b.h
	}
	return h
}

// scrollOffset keeps the newest bubble in view. When the newest bubble
// appears or grows from typing dots into text, the offset eases from the
// previous layout to the new one.
func (v *chatView) scrollOffset(c *Canvas, bubbles []bubble, viewport float64) float64 {
	if len(bubbles) == 0 {
		return 0
	}
	target := math.Max(0, stackHeight(c, bubbles)-viewport)
	last := bubbles[len(bubbles)-1]
	var prev []bubble
	switch {
	case last.typing:
		prev = bubbles[:len(bubbles)-1]
	case last.state.Phase == timeline.PhaseVisible:
		grown := last
		grown.w, grown.h = c.Px(typingWidth), c.Px(typingHeight)
		prev = append(append(make([]bubble, 0, len(bubbles)), bubbles[:len(bubbles)-1]...), grown)
	default:
		return target
	}
	from := math.Max(0, stackHeight(c, prev)-viewport)
	return renderer.Lerp(from, target, renderer.Fade(last.state.Local, 0, scrollFrames, outCubic))
}

func (v *chatView) drawBubble(c *Canvas, b bubble, y float64) {
	pl := v.platform
	sent := b.msg.Sender == content.SenderMe
	x := c.Px(chatMargin)
	if sent {
		x = c.W - c.Px(chatMargin) - b.w
	}

	alpha, scale, dy := 1.0, 1.0, 0.0
	switch b.state.Phase {
	case timeline.PhaseTyping:
		alpha = renderer.Fade(b.state.Local, 0, popFrames/2)
	case timeline.PhaseVisible:
		alpha = renderer.Fade(b.state.Local, 0, popFrames/2)
		scale = renderer.Lerp(0.92, 1, renderer.Fade(b.state.Local, 0, popFrames, renderer.WithEasing(renderer.EaseOutBack)))
	case timeline.PhaseExit:
		p := renderer.Fade(b.state.Local, 0, b.state.Length)
		alpha = 1 - p
		dy = -p * c.Px(20)
	}
	if alpha <= 0 {
		return
	}

	fill, ink := pl.ReceivedBubble, pl.ReceivedText
	if sent {
		fill, ink = pl.SentBubble, pl.SentText
	}
	ox := x
	if sent {
		ox = x + b.w
	}
	c.Scaled(scale, ox, y+dy+b.h, func() {
		c.Panel(x, y+dy, b.w, b.h, c.Px(pl.Radius), fill, alpha)
		if b.typing {
			drawTypingDots(c, x+b.w/2, y+dy+b.h/2, b.state.Local, pl.Typing, alpha)
			return
		}
		c.Font(Regular, pl.FontSize)
		pad := c.Px(bubblePad)
		c.Wrapped(b.msg.Text, x+pad, y+dy+pad, 0, 0, b.w-2*pad+1, gg.AlignLeft, ink, alpha)
	})
}

// drawTypingDots bounces three dots, each a fixed phase behind the last.
func drawTypingDots(c *Canvas, cx, cy float64, local int, col color.NRGBA, alpha float64) {
	const period = 18.0
	spacing := c.Px(18)
	for i := range 3 {
		phase := 2*math.Pi*float64(local)/period - float64(i)*0.9
		bob := math.Max(0, math.Sin(phase))
		c.DC.SetColor(effects.WithAlpha(col, alpha*(0.55+0.45*bob)))
		c.DC.DrawCircle(cx+float64(i-1)*spacing, cy-bob*c.Px(6), c.Px(6))
		c.DC.Fill()
	}
}

func (v *chatView) drawHeader(c *Canvas, bubbles []bubble, alpha float64) {
	pl := v.platform
	h := c.Px(chatHeaderHeight)
	c.Panel(0, 0, c.W, h, 0, pl.Header, 1)

	name := v.contact.Name
	if name == "" {
		name = pl.Name
	}
	r := c.Px(28)
	ax := c.Px(chatMargin) + r
	c.DC.SetColor(effects.WithAlpha(pl.SentBubble, alpha))
	c.DC.DrawCircle(ax, h/2, r)
	c.DC.Fill()
	c.Font(Bold, 26)
	c.Text(initial(name), ax, h/2, 0.5, 0.35, pl.SentText, alpha)

	status := v.contact.Status
	for _, b := range bubbles {
		if b.typing && b.msg.Sender == content.SenderThem {
			status = "typing..."
		}
	}
	tx := ax + r + c.Px(18)
	if status == "" {
		c.Font(Bold, 28)
		c.Text(name, tx, h/2, 0, 0.35, pl.HeaderText, alpha)
		return
	}
	c.Font(Bold, 28)
	c.Text(name, tx, h/2-c.Px(4), 0, 0, pl.HeaderText, alpha)
	c.Font(Regular, 20)
	c.Text(status, tx, h/2+c.Px(6), 0, 1, pl.Typing, alpha)
}

func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return strings.ToUpper(string(r))
}
