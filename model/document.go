package model

type BlockType string

const (
	MelodyBlock BlockType = "melody"
	ChordsBlock BlockType = "chords"
)

type Block struct {
	Type    BlockType `json:"type"`
	Content string    `json:"content"`
}

type Settings struct {
	HorizontalSpacing float64 `json:"horizontalSpacing"`
	VerticalScale     float64 `json:"verticalScale"`
}

// Envelope is the persisted form of a document body.
type Envelope struct {
	Blocks   []Block  `json:"blocks"`
	Settings Settings `json:"settings"`
}

// DocumentRecord is what the storage collaborator keeps per document.
type DocumentRecord struct {
	Owner     string   `json:"owner"`
	Title     string   `json:"title"`
	Album     string   `json:"album"`
	KeyIndex  int      `json:"keyIndex"`
	TempoBPM  int      `json:"tempoBPM"`
	Envelope  Envelope `json:"envelope"`
	UpdatedAt int64    `json:"updatedAt,omitempty"`
}

type DocumentSummary struct {
	Title     string `json:"title"`
	Album     string `json:"album"`
	UpdatedAt int64  `json:"updatedAt"`
}
