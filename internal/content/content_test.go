package content

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatProject(msgs ...Message) *Project {
	return &Project{Version: "1.0", Kind: KindChat, Platform: "whatsapp", Messages: msgs}
}

func TestValidateChat(t *testing.T) {
	p := chatProject(
		Message{ID: "m1", Text: "hi", Sender: SenderMe},
		Message{ID: "m2", Text: "hey", Sender: SenderThem},
	)
	warns, err := p.Validate()
	require.NoError(t, err)
	assert.Empty(t, warns)
}

func TestValidateChatEmptyIsValid(t *testing.T) {
	p := chatProject()
	p.Messages = []Message{}
	_, err := p.Validate()
	assert.NoError(t, err)
}

func TestValidateChatFieldErrors(t *testing.T) {
	p := chatProject(
		Message{ID: "m1", Text: "hi", Sender: SenderMe},
		Message{ID: "m1", Text: "", Sender: "bot"},
	)
	_, err := p.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidProject)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, len(verrs))
	for i, e := range verrs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{"messages[1].id", "messages[1].text", "messages[1].sender"}, fields)
}

func TestValidateMissingUnitArray(t *testing.T) {
	_, err := chatProject().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "messages: required")

	p := &Project{Kind: KindExplainer}
	_, err = p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sections: required")
}

func TestValidateUnknownModeIsWarning(t *testing.T) {
	p := chatProject(Message{ID: "m1", Text: "hi", Sender: SenderMe})
	p.DisplayMode = "carousel"
	warns, err := p.Validate()
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "displayMode", warns[0].Field)
}

func TestValidateExplainer(t *testing.T) {
	p := &Project{Kind: KindExplainer, Sections: []Section{
		{ID: "s1", Type: SectionIntro, Headline: "Hello"},
		{ID: "s2", Type: "foo", Headline: "Unknown"},
		{ID: "s3", Type: SectionImageHero},
		{ID: "s4", Type: SectionStats, Stats: []Stat{{Value: "10"}}},
	}}
	warns, err := p.Validate()
	require.Len(t, warns, 1)
	assert.Equal(t, "sections[1].type", warns[0].Field)
	assert.Equal(t, "foo", warns[0].Value)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Equal(t, "sections[2].image.url", verrs[0].Field)
	assert.Equal(t, "sections[3].stats[0].label", verrs[1].Field)
}

func TestValidateSectionTagsMatchExactly(t *testing.T) {
	p := &Project{Kind: KindExplainer, Sections: []Section{
		{ID: "s1", Type: "Bullet_List", Headline: "Mixed case"},
	}}
	warns, err := p.Validate()
	require.NoError(t, err, "an unknown tag skips the bullet_list field checks")
	require.Len(t, warns, 1)
	assert.Equal(t, "Bullet_List", warns[0].Value)
	assert.False(t, p.Sections[0].Type.Known())
}

func TestParseDisplayMode(t *testing.T) {
	tests := []struct {
		in   string
		want DisplayMode
		ok   bool
	}{
		{"", ModeAutoScroll, true},
		{"auto-scroll", ModeAutoScroll, true},
		{" Paired ", ModePaired, true},
		{"one-at-a-time", ModeOneAtATime, true},
		{"zigzag", ModeAutoScroll, false},
	}
	for _, tt := range tests {
		got, ok := ParseDisplayMode(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestVisualStyleMerge(t *testing.T) {
	base := VisualStyle{ColorGrade: "muted", Vignette: &Effect{Enabled: true, Intensity: 0.5}}
	got := base.Merge(&VisualStyle{ColorGrade: "neon", Grain: &Effect{Enabled: true}})
	assert.Equal(t, "neon", got.ColorGrade)
	assert.Equal(t, 0.5, got.Vignette.Intensity)
	assert.True(t, got.Grain.Enabled)
	assert.Equal(t, base, base.Merge(nil))
}

func TestProjectReadWrite(t *testing.T) {
	dir := t.TempDir()
	p := &Project{
		Version: "1.0",
		Kind:    KindExplainer,
		Title:   "demo",
		Sections: []Section{
			{ID: "s1", Type: SectionQuote, Quote: "Less is more", QuoteAttribution: "Mies", Duration: 3.5,
				Transition: &Transition{Type: "fade-black"}},
		},
	}
	for _, name := range []string{"p.yaml", "p.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteProject(p, path))
		got, err := ReadProject(path)
		require.NoError(t, err, name)
		assert.Equal(t, p.Sections, got.Sections, name)
		assert.Equal(t, p.Kind, got.Kind, name)
	}

	_, err := DecodeProject([]byte("x"), ".xml")
	assert.Error(t, err)
}

func TestDecodeJSONSchema(t *testing.T) {
	data := []byte(`{"kind":"chat","displayMode":"paired","messages":[{"id":"a","text":"yo","sender":"receiver"}]}`)
	p, err := DecodeProject(data, ".json")
	require.NoError(t, err)
	require.Len(t, p.Messages, 1)
	assert.Equal(t, SenderThem, p.Messages[0].Sender)
	_, err = p.Validate()
	assert.NoError(t, err)
}
