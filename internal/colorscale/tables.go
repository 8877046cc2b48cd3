package colorscale

// Temperature covers -20 °C to 46 °C in 2 °C steps.
var Temperature = Scale{
	Name: "temperature",
	Stops: []ColorStop{
		{Threshold: -20, RGB: RGB{0, 255, 255}}, // cyan
		{Threshold: -18, RGB: RGB{56, 199, 255}},
		{Threshold: -16, RGB: RGB{112, 143, 255}},
		{Threshold: -14, RGB: RGB{168, 87, 255}},
		{Threshold: -12, RGB: RGB{224, 31, 255}},
		{Threshold: -10, RGB: RGB{128, 0, 128}}, // violet
		{Threshold: -8, RGB: RGB{144, 0, 144}},
		{Threshold: -6, RGB: RGB{160, 0, 160}},
		{Threshold: -4, RGB: RGB{176, 0, 176}},
		{Threshold: -2, RGB: RGB{192, 0, 192}},
		{Threshold: 0, RGB: RGB{0, 0, 139}}, // dark blue
		{Threshold: 2, RGB: RGB{0, 47, 175}},
		{Threshold: 4, RGB: RGB{0, 94, 211}},
		{Threshold: 6, RGB: RGB{0, 141, 247}},
		{Threshold: 8, RGB: RGB{0, 188, 255}},
		{Threshold: 10, RGB: RGB{0, 255, 0}}, // green
		{Threshold: 12, RGB: RGB{51, 255, 0}},
		{Threshold: 14, RGB: RGB{102, 255, 0}},
		{Threshold: 16, RGB: RGB{153, 255, 0}},
		{Threshold: 18, RGB: RGB{204, 255, 0}},
		{Threshold: 20, RGB: RGB{255, 255, 0}}, // yellow
		{Threshold: 22, RGB: RGB{255, 204, 0}},
		{Threshold: 24, RGB: RGB{255, 153, 0}},
		{Threshold: 26, RGB: RGB{255, 102, 0}},
		{Threshold: 28, RGB: RGB{255, 51, 0}},
		{Threshold: 30, RGB: RGB{255, 128, 0}}, // orange
		{Threshold: 32, RGB: RGB{255, 96, 0}},
		{Threshold: 34, RGB: RGB{255, 64, 0}},
		{Threshold: 36, RGB: RGB{255, 32, 0}},
		{Threshold: 38, RGB: RGB{255, 0, 0}},
		{Threshold: 40, RGB: RGB{204, 0, 0}}, // dark red
		{Threshold: 42, RGB: RGB{153, 0, 0}},
		{Threshold: 44, RGB: RGB{102, 0, 0}},
		{Threshold: 46, RGB: RGB{0, 255, 255}},
	},
}

// CloudCover covers 0 % (clear, deep sky blue) to 100 % (overcast, slate).
var CloudCover = Scale{
	Name: "cloud_cover",
	Stops: []ColorStop{
		{Threshold: 0, RGB: RGB{30, 144, 255}},
		{Threshold: 3, RGB: RGB{40, 150, 254}},
		{Threshold: 6, RGB: RGB{51, 156, 254}},
		{Threshold: 9, RGB: RGB{62, 163, 254}},
		{Threshold: 12, RGB: RGB{72, 169, 253}},
		{Threshold: 15, RGB: RGB{82, 175, 252}},
		{Threshold: 18, RGB: RGB{93, 181, 252}},
		{Threshold: 21, RGB: RGB{104, 187, 252}},
		{Threshold: 24, RGB: RGB{114, 194, 251}},
		{Threshold: 27, RGB: RGB{124, 200, 250}},
		{Threshold: 30, RGB: RGB{135, 206, 250}}, // light sky blue
		{Threshold: 33, RGB: RGB{143, 206, 246}},
		{Threshold: 36, RGB: RGB{150, 207, 242}},
		{Threshold: 39, RGB: RGB{158, 208, 238}},
		{Threshold: 42, RGB: RGB{165, 208, 234}},
		{Threshold: 45, RGB: RGB{173, 208, 230}},
		{Threshold: 48, RGB: RGB{181, 209, 227}},
		{Threshold: 51, RGB: RGB{188, 210, 223}},
		{Threshold: 54, RGB: RGB{196, 210, 219}},
		{Threshold: 57, RGB: RGB{203, 210, 215}},
		{Threshold: 60, RGB: RGB{211, 211, 211}}, // light gray
		{Threshold: 63, RGB: RGB{204, 204, 205}},
		{Threshold: 66, RGB: RGB{196, 196, 199}},
		{Threshold: 69, RGB: RGB{189, 189, 193}},
		{Threshold: 72, RGB: RGB{182, 182, 187}},
		{Threshold: 75, RGB: RGB{174, 174, 180}},
		{Threshold: 78, RGB: RGB{167, 167, 174}},
		{Threshold: 81, RGB: RGB{160, 160, 168}},
		{Threshold: 84, RGB: RGB{152, 152, 162}},
		{Threshold: 87, RGB: RGB{142, 142, 152}},
		{Threshold: 90, RGB: RGB{130, 130, 140}},
		{Threshold: 93, RGB: RGB{118, 118, 128}},
		{Threshold: 96, RGB: RGB{106, 106, 116}},
		{Threshold: 99, RGB: RGB{94, 94, 104}},
		{Threshold: 100, RGB: RGB{90, 90, 100}},
	},
}
