package widget

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// DefaultAvatarPath is the universally available avatar, served from the
// widget's own static assets.
const DefaultAvatarPath = "/default-bot.png"

// FallbackAvatars are bundled backups tried when the default asset itself
// fails to load.
var FallbackAvatars = []string{"/assets/bot1.png", "/assets/bot2.png", "/assets/bot3.png"}

// SafeAvatarSource maps a raw config value to a loadable source: nil or blank
// resolves to the default asset, so no render target ever sees an empty
// value.
func SafeAvatarSource(botImage *string) string {
	if botImage == nil {
		return DefaultAvatarPath
	}
	trimmed := strings.TrimSpace(*botImage)
	if trimmed == "" {
		return DefaultAvatarPath
	}
	return trimmed
}

// ResolveAvatarURL fully qualifies a non-default source against the widget's
// origin. Absolute URLs pass through after validation, absolute paths and
// relative paths are rewritten, and anything unparsable degrades to the
// default asset.
func ResolveAvatarURL(source, origin string) string {
	if source == DefaultAvatarPath {
		return source
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		parsed, err := url.Parse(source)
		if err != nil || parsed.Host == "" {
			return DefaultAvatarPath
		}
		return parsed.String()
	}

	origin = strings.TrimRight(origin, "/")
	if strings.HasPrefix(source, "/") {
		return origin + source
	}
	return origin + "/" + source
}

// Glyph is the terminal avatar state: the bot name's first character rendered
// as text inside the circular slot. It cannot fail, so the fallback chain
// always terminates here.
type Glyph struct {
	Char      string `json:"char"`
	TextColor string `json:"textColor"`
}

// GlyphFor builds the text glyph for a bot name against the slot's background
// class. Light backgrounds get the accent text color, everything else white.
func GlyphFor(botName, backgroundClass string) Glyph {
	char := "?"
	if r, size := utf8.DecodeRuneInString(strings.TrimSpace(botName)); size > 0 && r != utf8.RuneError {
		char = string(r)
	}

	textColor := "text-white"
	if strings.Contains(backgroundClass, "bg-white") || strings.Contains(backgroundClass, "bg-gradient") {
		textColor = "text-[#814157]"
	}
	return Glyph{Char: char, TextColor: textColor}
}

// AvatarChain is the ordered list of candidate sources with a cursor. Load
// failures advance the cursor; past the last candidate the chain lands in the
// glyph state and stays there. Advancing is monotone, so repeated failures
// never loop.
type AvatarChain struct {
	candidates []string
	cursor     int
	glyph      bool
	botName    string
}

// NewAvatarChain builds the candidate chain for a tenant. A configured image
// is tried first, then the default asset, then the bundled fallbacks.
func NewAvatarChain(botImage *string, origin, botName string) *AvatarChain {
	source := SafeAvatarSource(botImage)

	var candidates []string
	if source != DefaultAvatarPath {
		candidates = append(candidates, ResolveAvatarURL(source, origin))
	}
	candidates = append(candidates, DefaultAvatarPath)
	candidates = append(candidates, FallbackAvatars[0])

	return &AvatarChain{candidates: candidates, botName: botName}
}

// Current returns the source to render, or "" once the chain has degraded to
// the glyph state.
func (c *AvatarChain) Current() string {
	if c.glyph {
		return ""
	}
	return c.candidates[c.cursor]
}

// OnLoadError advances to the next candidate. Each call moves strictly down
// the chain; the glyph state is terminal.
func (c *AvatarChain) OnLoadError() {
	if c.glyph {
		return
	}
	if c.cursor+1 < len(c.candidates) {
		c.cursor++
		return
	}
	c.glyph = true
}

// IsGlyph reports whether the chain has exhausted all image candidates.
func (c *AvatarChain) IsGlyph() bool {
	return c.glyph
}

// Glyph returns the terminal glyph for the given background class.
func (c *AvatarChain) Glyph(backgroundClass string) Glyph {
	return GlyphFor(c.botName, backgroundClass)
}
