package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeAvatarSource(t *testing.T) {
	assert.Equal(t, DefaultAvatarPath, SafeAvatarSource(nil))

	empty := ""
	assert.Equal(t, DefaultAvatarPath, SafeAvatarSource(&empty))

	blank := "   "
	assert.Equal(t, DefaultAvatarPath, SafeAvatarSource(&blank))

	custom := "https://cdn.example.com/bot.png"
	assert.Equal(t, custom, SafeAvatarSource(&custom))
}

func TestResolveAvatarURL(t *testing.T) {
	origin := "https://widget.example.com"

	assert.Equal(t, DefaultAvatarPath, ResolveAvatarURL(DefaultAvatarPath, origin))
	assert.Equal(t, "https://cdn.example.com/bot.png", ResolveAvatarURL("https://cdn.example.com/bot.png", origin))
	assert.Equal(t, "https://widget.example.com/images/bot.png", ResolveAvatarURL("/images/bot.png", origin))
	assert.Equal(t, "https://widget.example.com/images/bot.png", ResolveAvatarURL("images/bot.png", origin))

	assert.Equal(t, DefaultAvatarPath, ResolveAvatarURL("http://", origin), "unparsable absolute URL degrades to default")
}

func TestAvatarChainDegradesMonotonically(t *testing.T) {
	custom := "https://cdn.example.com/bot.png"
	chain := NewAvatarChain(&custom, "https://widget.example.com", "Priya")

	assert.Equal(t, "https://cdn.example.com/bot.png", chain.Current())

	chain.OnLoadError()
	assert.Equal(t, DefaultAvatarPath, chain.Current())

	chain.OnLoadError()
	assert.Equal(t, FallbackAvatars[0], chain.Current())

	chain.OnLoadError()
	assert.True(t, chain.IsGlyph())
	assert.Empty(t, chain.Current())

	// Further failures are no-ops; the glyph state is terminal.
	chain.OnLoadError()
	chain.OnLoadError()
	assert.True(t, chain.IsGlyph())
}

func TestAvatarChainWithoutConfiguredImage(t *testing.T) {
	chain := NewAvatarChain(nil, "https://widget.example.com", "Priya")
	assert.Equal(t, DefaultAvatarPath, chain.Current())

	chain.OnLoadError()
	assert.Equal(t, FallbackAvatars[0], chain.Current())

	chain.OnLoadError()
	assert.True(t, chain.IsGlyph())
}

func TestGlyphFor(t *testing.T) {
	glyph := GlyphFor("Priya", "bg-white rounded-full overflow-hidden")
	assert.Equal(t, "P", glyph.Char)
	assert.Equal(t, "text-[#814157]", glyph.TextColor)

	glyph = GlyphFor("Ananya", "bg-gradient-to-r rounded-full")
	assert.Equal(t, "A", glyph.Char)
	assert.Equal(t, "text-[#814157]", glyph.TextColor)

	glyph = GlyphFor("Meera", "rounded-full")
	assert.Equal(t, "M", glyph.Char)
	assert.Equal(t, "text-white", glyph.TextColor)

	glyph = GlyphFor("", "rounded-full")
	assert.Equal(t, "?", glyph.Char)
}
