// Package ansihtml converts text containing ANSI/VT100 escape sequences
// (SGR color and style codes, OSC-8 hyperlinks) into HTML fragments.
//
// The converter is built for streamed input: chunks are appended to an
// internal buffer and complete "packets" are drained from the front, so a
// chunk boundary may fall in the middle of an escape sequence without
// corrupting output. One Converter serves one logical stream; it is not
// safe for concurrent use.
package ansihtml

import (
	"strconv"
	"strings"
)

const escByte = 0x1b

// packetKind classifies the head of the buffer.
type packetKind int

const (
	kindEOS packetKind = iota
	kindText
	kindIncomplete
	kindEsc
	kindUnknown
	kindSGR
	kindOSCURL
)

type packet struct {
	kind packetKind
	text string
	url  string
}

// Color is one palette or truecolor entry. Class is the CSS class name
// used in class mode; truecolor entries carry the class "truecolor" and
// always render as inline styles.
type Color struct {
	R, G, B uint8
	Class   string
}

// Converter holds the streaming state: the unconsumed input buffer and
// the SGR attributes carried across packets.
type Converter struct {
	buf     string
	bold    bool
	fg      *Color
	bg      *Color
	openTag string // span opened by a previous text run, "" when closed

	useClasses bool
	escape     bool
	schemes    map[string]bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithClasses emits CSS class names instead of inline styles for palette
// colors. Truecolor entries still render inline.
func WithClasses() Option {
	return func(c *Converter) { c.useClasses = true }
}

// WithoutEscaping disables HTML-escaping of text content.
func WithoutEscaping() Option {
	return func(c *Converter) { c.escape = false }
}

// WithSchemes replaces the URL scheme allow-list for OSC-8 hyperlinks.
// The default list is http and https.
func WithSchemes(schemes ...string) Option {
	return func(c *Converter) {
		c.schemes = make(map[string]bool, len(schemes))
		for _, s := range schemes {
			c.schemes[s] = true
		}
	}
}

// New returns a Converter with inline styles, HTML escaping on, and the
// default hyperlink scheme allow-list.
func New(opts ...Option) *Converter {
	c := &Converter{
		escape:  true,
		schemes: map[string]bool{"http": true, "https": true},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Reset clears the buffer and all carried SGR state. An open span is
// abandoned, not closed.
func (c *Converter) Reset() {
	c.buf = ""
	c.bold = false
	c.fg = nil
	c.bg = nil
	c.openTag = ""
}

// ToHTML appends chunk to the internal buffer, drains every complete
// packet from it, and returns the concatenated HTML. A trailing
// incomplete escape sequence stays buffered for the next call, and a
// span opened for a styled run stays open across calls until the style
// changes or Flush is called, so a chunk boundary inside a styled run
// does not split the span. The method never fails: unrecognized escapes
// are skipped, truncated ones deferred.
func (c *Converter) ToHTML(chunk string) string {
	c.buf += chunk

	var out strings.Builder
	for {
		pkt := c.nextPacket()
		switch pkt.kind {
		case kindEOS, kindIncomplete:
			return out.String()
		case kindText:
			out.WriteString(c.renderText(pkt.text))
		case kindSGR:
			c.processSGR(pkt.text)
		case kindOSCURL:
			out.WriteString(c.renderHyperlink(pkt.url, pkt.text))
		case kindEsc, kindUnknown:
			// consumed, no output
		}
	}
}

// nextPacket classifies and consumes the head of the buffer. Only the
// Incomplete kind leaves the buffer untouched, which makes retrying with
// more data idempotent.
func (c *Converter) nextPacket() packet {
	b := c.buf
	if len(b) == 0 {
		return packet{kind: kindEOS}
	}

	i := strings.IndexByte(b, escByte)
	if i == -1 {
		c.buf = ""
		return packet{kind: kindText, text: b}
	}
	if i > 0 {
		c.buf = b[i:]
		return packet{kind: kindText, text: b[:i]}
	}

	// ESC at the head
	if len(b) == 1 {
		return packet{kind: kindIncomplete}
	}
	switch b[1] {
	case '[':
		return c.scanCSI()
	case ']':
		return c.scanOSC()
	default:
		c.buf = b[1:]
		return packet{kind: kindEsc}
	}
}

func isCSIParam(ch byte) bool        { return ch >= 0x30 && ch <= 0x3f }
func isCSIIntermediate(ch byte) bool { return ch >= 0x20 && ch <= 0x2f }
func isCSIFinal(ch byte) bool        { return ch >= 0x40 && ch <= 0x7e }

// scanCSI consumes one CSI sequence starting at buf[0] == ESC '['.
// A sequence whose final byte has not arrived yet is Incomplete; a byte
// outside the CSI grammar discards the lone ESC.
func (c *Converter) scanCSI() packet {
	b := c.buf
	i := 2
	for i < len(b) && isCSIParam(b[i]) {
		i++
	}
	params := b[2:i]
	for i < len(b) && isCSIIntermediate(b[i]) {
		i++
	}
	hasIntermediate := i > 2+len(params)
	if i >= len(b) {
		return packet{kind: kindIncomplete}
	}
	if !isCSIFinal(b[i]) {
		c.buf = b[1:]
		return packet{kind: kindEsc}
	}
	final := b[i]
	c.buf = b[i+1:]

	if final == 'm' && !hasIntermediate && isPlainParams(params) {
		return packet{kind: kindSGR, text: params}
	}
	return packet{kind: kindUnknown}
}

// isPlainParams reports whether the parameter bytes contain only digits
// and semicolons, i.e. no private-mode markers such as '?' or '<'.
func isPlainParams(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ';' && (s[i] < '0' || s[i] > '9') {
			return false
		}
	}
	return true
}

func isOSCByte(ch byte) bool { return ch >= 0x20 && ch <= 0x7e }

// scanOSC consumes an OSC-8 hyperlink sequence:
//
//	ESC ] 8 ; params ; URL ST text ESC ] 8 ; ; ST
//
// where ST is either BEL or ESC '\'. Any other OSC is treated as a stray
// escape and skipped one byte at a time.
func (c *Converter) scanOSC() packet {
	b := c.buf
	if len(b) < 4 {
		return packet{kind: kindIncomplete}
	}
	if b[2] != '8' || b[3] != ';' {
		c.buf = b[1:]
		return packet{kind: kindEsc}
	}

	// params field, skipped up to the next ';'
	i := 4
	for {
		if i >= len(b) {
			return packet{kind: kindIncomplete}
		}
		if b[i] == ';' {
			i++
			break
		}
		if !isOSCByte(b[i]) {
			c.buf = b[1:]
			return packet{kind: kindEsc}
		}
		i++
	}

	// URL runs until the string terminator
	urlStart := i
	var url string
	for {
		if i >= len(b) {
			return packet{kind: kindIncomplete}
		}
		switch ch := b[i]; {
		case ch == 0x07:
			url = b[urlStart:i]
			i++
		case ch == escByte:
			if i+1 >= len(b) {
				return packet{kind: kindIncomplete}
			}
			if b[i+1] != '\\' {
				c.buf = b[1:]
				return packet{kind: kindEsc}
			}
			url = b[urlStart:i]
			i += 2
		case !isOSCByte(ch):
			c.buf = b[1:]
			return packet{kind: kindEsc}
		default:
			i++
			continue
		}
		break
	}

	// visible text runs until the closing "ESC ] 8 ; ; ST"
	textStart := i
	for {
		j := strings.Index(b[i:], "\x1b]8;;")
		if j == -1 {
			return packet{kind: kindIncomplete}
		}
		end := i + j
		k := end + 5
		if k >= len(b) {
			return packet{kind: kindIncomplete}
		}
		switch b[k] {
		case 0x07:
			c.buf = b[k+1:]
			return packet{kind: kindOSCURL, url: url, text: b[textStart:end]}
		case escByte:
			if k+1 >= len(b) {
				return packet{kind: kindIncomplete}
			}
			if b[k+1] == '\\' {
				c.buf = b[k+2:]
				return packet{kind: kindOSCURL, url: url, text: b[textStart:end]}
			}
		}
		i = end + 1
	}
}

// processSGR applies semicolon-separated SGR parameters left to right.
// A zero or unparsable parameter resets everything.
func (c *Converter) processSGR(params string) {
	seq := strings.Split(params, ";")
	for i := 0; i < len(seq); i++ {
		n, err := strconv.Atoi(seq[i])
		if err != nil || n == 0 {
			c.bold = false
			c.fg = nil
			c.bg = nil
			continue
		}
		switch {
		case n == 1:
			c.bold = true
		case n == 22:
			c.bold = false
		case n == 39:
			c.fg = nil
		case n == 49:
			c.bg = nil
		case n >= 30 && n <= 37:
			c.fg = &ansiPalette[n-30]
		case n >= 40 && n <= 47:
			c.bg = &ansiPalette[n-40]
		case n >= 90 && n <= 97:
			c.fg = &ansiPalette[8+n-90]
		case n >= 100 && n <= 107:
			c.bg = &ansiPalette[8+n-100]
		case n == 38 || n == 48:
			col, skip := extendedColor(seq[i+1:])
			i += skip
			if col != nil {
				if n == 38 {
					c.fg = col
				} else {
					c.bg = col
				}
			}
		}
	}
}

// extendedColor decodes the parameters following a 38 or 48 code and
// returns the selected color, or nil when the parameters are invalid,
// together with the number of parameters consumed.
func extendedColor(rest []string) (*Color, int) {
	if len(rest) == 0 {
		return nil, 0
	}
	mode, err := strconv.Atoi(rest[0])
	if err != nil {
		return nil, 1
	}
	switch mode {
	case 5:
		if len(rest) < 2 {
			return nil, 1
		}
		idx, err := strconv.Atoi(rest[1])
		if err != nil || idx < 0 || idx > 255 {
			return nil, 2
		}
		return &palette256[idx], 2
	case 2:
		if len(rest) < 4 {
			return nil, 1
		}
		r, errR := strconv.Atoi(rest[1])
		g, errG := strconv.Atoi(rest[2])
		b, errB := strconv.Atoi(rest[3])
		if errR != nil || errG != nil || errB != nil ||
			r < 0 || r > 255 || g < 0 || g > 255 || b < 0 || b > 255 {
			return nil, 4
		}
		return &Color{R: uint8(r), G: uint8(g), B: uint8(b), Class: "truecolor"}, 4
	default:
		return nil, 1
	}
}

// Flush closes the span left open by the last styled run, if any. Call
// it after the final chunk and append the result to the output.
func (c *Converter) Flush() string {
	if c.openTag == "" {
		return ""
	}
	c.openTag = ""
	return "</span>"
}

// renderText escapes text and keeps the surrounding span in sync with
// the active SGR attributes: the current span closes when the style
// changed since the last run, and a new one opens when any attribute is
// set. Spans only open for non-empty text.
func (c *Converter) renderText(text string) string {
	if c.escape {
		text = escapeHTML(text)
	}
	if len(text) == 0 {
		return ""
	}
	tag := c.spanTag()
	if tag == c.openTag {
		return text
	}

	var sb strings.Builder
	if c.openTag != "" {
		sb.WriteString("</span>")
	}
	sb.WriteString(tag)
	sb.WriteString(text)
	c.openTag = tag
	return sb.String()
}

// spanTag renders the opening span for the active attributes, or ""
// when none are set.
func (c *Converter) spanTag() string {
	if !c.bold && c.fg == nil && c.bg == nil {
		return ""
	}

	var styles, classes []string
	if c.bold {
		styles = append(styles, "font-weight:bold")
	}
	if c.useClasses {
		classes, styles = appendColorClass(classes, styles, c.fg, "-fg")
		classes, styles = appendColorClass(classes, styles, c.bg, "-bg")
	} else {
		if c.fg != nil {
			styles = append(styles, "color:"+c.fg.rgbCSS())
		}
		if c.bg != nil {
			styles = append(styles, "background-color:"+c.bg.rgbCSS())
		}
	}

	var sb strings.Builder
	sb.WriteString("<span")
	if len(classes) > 0 {
		sb.WriteString(` class="` + strings.Join(classes, " ") + `"`)
	}
	if len(styles) > 0 {
		sb.WriteString(` style="` + strings.Join(styles, ";") + `"`)
	}
	sb.WriteString(">")
	return sb.String()
}

func appendColorClass(classes, styles []string, col *Color, suffix string) ([]string, []string) {
	if col == nil {
		return classes, styles
	}
	if col.Class == "truecolor" {
		prop := "color:"
		if suffix == "-bg" {
			prop = "background-color:"
		}
		return classes, append(styles, prop+col.rgbCSS())
	}
	return append(classes, col.Class+suffix), styles
}

func (col *Color) rgbCSS() string {
	return "rgb(" + strconv.Itoa(int(col.R)) + "," + strconv.Itoa(int(col.G)) + "," + strconv.Itoa(int(col.B)) + ")"
}

// renderHyperlink emits an anchor only when the URL scheme is on the
// allow-list; a disallowed link is dropped entirely, text included. An
// anchor closes the surrounding span so SGR attributes apply to plain
// text runs only.
func (c *Converter) renderHyperlink(url, text string) string {
	scheme, _, ok := strings.Cut(url, ":")
	if !ok || !c.schemes[scheme] {
		return ""
	}
	a := `<a href="` + escapeHTML(url) + `">` + escapeHTML(text) + `</a>`
	if c.openTag != "" {
		c.openTag = ""
		return "</span>" + a
	}
	return a
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
