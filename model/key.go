package model

// Key is one entry of the fixed key catalog. DegreeLabels holds the display
// names of scale degrees 1 through 7.
type Key struct {
	Name           string    `json:"name"`
	RootPitchClass int       `json:"rootPitchClass"`
	DegreeLabels   [7]string `json:"degreeLabels"`
}
