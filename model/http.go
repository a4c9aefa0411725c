package model

type ParseRequestBody struct {
	Text     string `json:"text"`
	KeyIndex int    `json:"keyIndex"`
}

type ParseResponse struct {
	Tokens        []Token `json:"tokens"`
	TotalDuration float64 `json:"totalDuration"`
}

type LayoutRequestBody struct {
	Blocks   []Block  `json:"blocks"`
	KeyIndex int      `json:"keyIndex"`
	Settings Settings `json:"settings"`
}

type LayoutResponse struct {
	Drawings []Drawing `json:"drawings"`
}

type ImportResponse struct {
	Text             string `json:"text"`
	DetectedKeyIndex int    `json:"detectedKeyIndex"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
