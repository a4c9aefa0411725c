package scale

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKeyAt(t *testing.T) {
	assert := assert.New(t)

	k, err := KeyAt(0)
	assert.NoError(err)
	assert.Equal("C Major", k.Name)

	k, err = KeyAt(NumbersOnly)
	assert.NoError(err)
	assert.Equal(0, k.RootPitchClass)
	assert.Equal("1", k.DegreeLabels[0])
	assert.Equal(13, Count())
}

func TestCatalogOrder(t *testing.T) {
	want := []string{
		"C Major", "G Major", "D Major", "A Major", "E Major", "B Major", "F# Major",
		"Db Major", "Ab Major", "Eb Major", "Bb Major", "F Major", "Numbers Only",
	}
	assert.Equal(t, len(want), Count())
	for i, name := range want {
		assert.Equal(t, name, MustKeyAt(i).Name, "index %d", i)
	}
}

func TestIndexOfFifthsMatchesCatalogPositions(t *testing.T) {
	assert := assert.New(t)
	for fifths := 0; fifths <= 6; fifths++ {
		assert.Equal(fifths, IndexOfFifths(fifths), "fifths %d", fifths)
	}
	for fifths := -1; fifths >= -5; fifths-- {
		assert.Equal(12+fifths, IndexOfFifths(fifths), "fifths %d", fifths)
	}
	assert.Equal(7, IndexOfFifths(7))
	assert.Equal(6, IndexOfFifths(-6))
}

func TestKeyAtOutOfRange(t *testing.T) {
	for _, idx := range []int{-1, 13, 100} {
		_, err := KeyAt(idx)
		assert.True(t, errors.Is(err, ErrOutOfRangeKey), "index %d", idx)
	}
}

func TestIndexOfFifths(t *testing.T) {
	cases := map[int]string{
		0:  "C Major",
		1:  "G Major",
		2:  "D Major",
		-1: "F Major",
		-3: "Eb Major",
		6:  "F# Major",
		-6: "F# Major",
		7:  "Db Major",
		-7: "B Major",
	}
	for fifths, name := range cases {
		assert.Equal(t, name, MustKeyAt(IndexOfFifths(fifths)).Name, "fifths %d", fifths)
	}
}

func TestIndexOfFifthsDefaultsToC(t *testing.T) {
	assert.Equal(t, 0, IndexOfFifths(9))
	assert.Equal(t, 0, IndexOfFifths(-12))
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].Name = "changed"
	assert.Equal(t, "C Major", MustKeyAt(0).Name)
}

func TestFifthsRoundTrip(t *testing.T) {
	for i := 0; i < NumbersOnly; i++ {
		assert.Equal(t, i, IndexOfFifths(Fifths(i)), "index %d", i)
	}
	assert.Equal(t, -2, Fifths(10))
	assert.Equal(t, -1, Fifths(11))
	assert.Equal(t, 1, Fifths(1))
	assert.Equal(t, 0, Fifths(NumbersOnly))
}
