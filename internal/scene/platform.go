package scene

import (
	"image/color"
	"sort"
	"strings"

	"github.com/ivlev/scenereel/internal/effects"
)

// Platform is the look of one chat app.
type Platform struct {
	ID             string
	Name           string
	Background     color.NRGBA
	Header         color.NRGBA
	HeaderText     color.NRGBA
	SentBubble     color.NRGBA
	SentText       color.NRGBA
	ReceivedBubble color.NRGBA
	ReceivedText   color.NRGBA
	Typing         color.NRGBA
	Radius         float64
	FontSize       float64
}

// DefaultPlatform is used for empty or unknown platform tags.
const DefaultPlatform = "whatsapp"

var platforms = map[string]Platform{
	"whatsapp": {
		Name:           "WhatsApp",
		Background:     effects.MustColor("#0b141a"),
		Header:         effects.MustColor("#202c33"),
		HeaderText:     effects.MustColor("#e9edef"),
		SentBubble:     effects.MustColor("#005c4b"),
		SentText:       effects.MustColor("#e9edef"),
		ReceivedBubble: effects.MustColor("#202c33"),
		ReceivedText:   effects.MustColor("#e9edef"),
		Typing:         effects.MustColor("#8696a0"),
		Radius:         14,
		FontSize:       30,
	},
	"imessage": {
		Name:           "iMessage",
		Background:     effects.MustColor("#000000"),
		Header:         effects.MustColor("#1c1c1e"),
		HeaderText:     effects.MustColor("#ffffff"),
		SentBubble:     effects.MustColor("#0a84ff"),
		SentText:       effects.MustColor("#ffffff"),
		ReceivedBubble: effects.MustColor("#26252a"),
		ReceivedText:   effects.MustColor("#ffffff"),
		Typing:         effects.MustColor("#8e8e93"),
		Radius:         26,
		FontSize:       30,
	},
	"messenger": {
		Name:           "Messenger",
		Background:     effects.MustColor("#ffffff"),
		Header:         effects.MustColor("#f5f5f5"),
		HeaderText:     effects.MustColor("#050505"),
		SentBubble:     effects.MustColor("#0084ff"),
		SentText:       effects.MustColor("#ffffff"),
		ReceivedBubble: effects.MustColor("#e4e6eb"),
		ReceivedText:   effects.MustColor("#050505"),
		Typing:         effects.MustColor("#65676b"),
		Radius:         22,
		FontSize:       30,
	},
	"telegram": {
		Name:           "Telegram",
		Background:     effects.MustColor("#0e1621"),
		Header:         effects.MustColor("#17212b"),
		HeaderText:     effects.MustColor("#f5f5f5"),
		SentBubble:     effects.MustColor("#2b5278"),
		SentText:       effects.MustColor("#f5f5f5"),
		ReceivedBubble: effects.MustColor("#182533"),
		ReceivedText:   effects.MustColor("#f5f5f5"),
		Typing:         effects.MustColor("#6d7f8f"),
		Radius:         16,
		FontSize:       30,
	},
	"instagram": {
		Name:           "Instagram",
		Background:     effects.MustColor("#000000"),
		Header:         effects.MustColor("#000000"),
		HeaderText:     effects.MustColor("#f5f5f5"),
		SentBubble:     effects.MustColor("#7c3aed"),
		SentText:       effects.MustColor("#ffffff"),
		ReceivedBubble: effects.MustColor("#262626"),
		ReceivedText:   effects.MustColor("#f5f5f5"),
		Typing:         effects.MustColor("#a8a8a8"),
		Radius:         24,
		FontSize:       30,
	},
	"discord": {
		Name:           "Discord",
		Background:     effects.MustColor("#313338"),
		Header:         effects.MustColor("#2b2d31"),
		HeaderText:     effects.MustColor("#f2f3f5"),
		SentBubble:     effects.MustColor("#5865f2"),
		SentText:       effects.MustColor("#ffffff"),
		ReceivedBubble: effects.MustColor("#383a40"),
		ReceivedText:   effects.MustColor("#dbdee1"),
		Typing:         effects.MustColor("#949ba4"),
		Radius:         10,
		FontSize:       28,
	},
}

// PlatformFor returns the theme for id. Unknown ids return the default
// platform with ok=false; an empty id is the default with ok=true.
func PlatformFor(id string) (Platform, bool) {
	key := strings.ToLower(strings.TrimSpace(id))
	ok := true
	if key == "" {
		key = DefaultPlatform
	}
	p, found := platforms[key]
	if !found {
		key, ok = DefaultPlatform, false
		p = platforms[key]
	}
	p.ID = key
	return p, ok
}

// Platforms lists the known platform ids, sorted.
func Platforms() []string {
	ids := make([]string, 0, len(platforms))
	for id := range platforms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
