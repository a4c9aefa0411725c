package model

type TokenKind string

const (
	KindNote TokenKind = "note"
	KindBar  TokenKind = "bar"
	KindRest TokenKind = "rest"
)

// Token is one parsed event. Exactly one of Note, Bar or Rest is set,
// matching Kind.
type Token struct {
	Kind TokenKind  `json:"kind"`
	Note *NoteEvent `json:"note,omitempty"`
	Bar  *BarEvent  `json:"bar,omitempty"`
	Rest *RestEvent `json:"rest,omitempty"`
}

// BarEvent carries barline, repeat or bracketed text through for display.
type BarEvent struct {
	Marker string `json:"marker"`
}

type RestEvent struct {
	Duration   float64     `json:"duration"`
	SourceText string      `json:"sourceText"`
	Flags      RenderFlags `json:"renderFlags"`
}

type NoteEvent struct {
	Degree        int         `json:"degree"`
	Accidental    int         `json:"accidental"`
	OctaveOffset  int         `json:"octaveOffset"`
	Duration      float64     `json:"duration"`
	PitchIndex    int         `json:"pitchIndex"`
	AbsolutePitch int         `json:"absolutePitch"`
	DisplayLabel  string      `json:"displayLabel"`
	SourceText    string      `json:"sourceText"`
	Flags         RenderFlags `json:"renderFlags"`
}

type RenderFlags struct {
	BeamLevel      int  `json:"beamLevel"`
	Dotted         bool `json:"dotted"`
	ExtensionCount int  `json:"extensionCount"`
}

func NoteToken(n NoteEvent) Token { return Token{Kind: KindNote, Note: &n} }

func BarToken(marker string) Token { return Token{Kind: KindBar, Bar: &BarEvent{Marker: marker}} }

func RestToken(r RestEvent) Token { return Token{Kind: KindRest, Rest: &r} }
