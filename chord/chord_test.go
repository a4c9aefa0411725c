package chord

import (
	"testing"

	"github.com/jsphweid/jianpu/model"
	"github.com/stretchr/testify/assert"
)

func TestSplitGlyphs(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]string{"C", " ", "G", "7"}, SplitGlyphs("C G7"))
	assert.Equal([]string{"♭", "Ⅳ"}, SplitGlyphs("♭Ⅳ"))
	assert.Nil(SplitGlyphs(""))
}

func TestCreateChordKey(t *testing.T) {
	notes := []int{67, 60, 64}
	assert.Equal(t, "60-64-67", CreateChordKey(notes))
	assert.Equal(t, []int{67, 60, 64}, notes, "input must not be reordered")
}

func TestMarkMembersKeepsFirstNoteAtOnset(t *testing.T) {
	events := []model.ScoreEvent{
		{Pitch: 72, Start: 1, Duration: 1},
		{Pitch: 60, Start: 0, Duration: 1},
		{Pitch: 64, Start: 0, Duration: 1},
		{Pitch: 67, Start: 0, Duration: 1},
		{Rest: true, Start: 2, Duration: 1},
		{Pitch: 74, Start: 3, Duration: 1},
	}
	marked := MarkMembers(events)

	assert := assert.New(t)
	assert.Len(marked, 6)
	assert.Equal(60, marked[0].Pitch)
	assert.False(marked[0].ChordMember)
	assert.True(marked[1].ChordMember)
	assert.True(marked[2].ChordMember)
	assert.False(marked[3].ChordMember)
	assert.False(marked[4].ChordMember)
	assert.False(marked[5].ChordMember)
}

func TestOnsets(t *testing.T) {
	events := []model.ScoreEvent{
		{Pitch: 67, Start: 0},
		{Pitch: 60, Start: 0},
		{Pitch: 62, Start: 1},
	}
	assert.Equal(t, map[float64]string{0: "60-67"}, Onsets(events))
}
