package model

type Canvas struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	BaselineY float64 `json:"baselineY"`
}

type Glyph struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

type Circle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Drawing is the list of primitives a renderer turns into a vector image.
type Drawing struct {
	Canvas  Canvas   `json:"canvas"`
	Glyphs  []Glyph  `json:"glyphs"`
	Lines   []Line   `json:"lines"`
	Circles []Circle `json:"circles"`
}
