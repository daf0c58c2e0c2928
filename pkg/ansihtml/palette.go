package ansihtml

// ansiPalette holds the 8 standard and 8 bright terminal colors. The RGB
// values match the common xterm defaults used by web-based log viewers.
var ansiPalette = [16]Color{
	{0, 0, 0, "ansi-black"},
	{187, 0, 0, "ansi-red"},
	{0, 187, 0, "ansi-green"},
	{187, 187, 0, "ansi-yellow"},
	{0, 0, 187, "ansi-blue"},
	{187, 0, 187, "ansi-magenta"},
	{0, 187, 187, "ansi-cyan"},
	{255, 255, 255, "ansi-white"},

	{85, 85, 85, "ansi-bright-black"},
	{255, 85, 85, "ansi-bright-red"},
	{0, 255, 0, "ansi-bright-green"},
	{255, 255, 85, "ansi-bright-yellow"},
	{85, 85, 255, "ansi-bright-blue"},
	{255, 0, 255, "ansi-bright-magenta"},
	{0, 255, 255, "ansi-bright-cyan"},
	{255, 255, 255, "ansi-bright-white"},
}

// palette256 is the xterm 256-color table: the 16 ANSI colors, a 6x6x6
// color cube, and a 24-step grayscale ramp.
var palette256 = buildPalette256()

// cubeLevels are the channel values used by the 6x6x6 cube.
var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

func buildPalette256() [256]Color {
	var p [256]Color
	copy(p[:16], ansiPalette[:])

	i := 16
	for _, r := range cubeLevels {
		for _, g := range cubeLevels {
			for _, b := range cubeLevels {
				p[i] = Color{R: r, G: g, B: b, Class: "truecolor"}
				i++
			}
		}
	}

	// grayscale ramp: 24 shades from 8 in steps of 10
	for s := 0; s < 24; s++ {
		v := uint8(8 + s*10)
		p[i] = Color{R: v, G: v, B: v, Class: "truecolor"}
		i++
	}
	return p
}
