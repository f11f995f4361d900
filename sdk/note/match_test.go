package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPitchClass(t *testing.T) {
	for a := Note(30); a < 90; a++ {
		for b := Note(50); b < 75; b++ {
			res := Match([]Note{a}, []Note{b})
			want := (int(a)-int(b))%12 == 0
			assert.Equal(t, want, res.PerNote[0], "%v vs %v", a, b)
			assert.Equal(t, want, res.AllCorrect)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		detected []Note
		expected []Note
		perNote  []bool
		all      bool
		mismatch LengthMismatch
	}{
		{"exact", []Note{60, 64, 67}, []Note{60, 64, 67}, []bool{true, true, true}, true, LengthOK},
		{"octaves", []Note{48, 76}, []Note{60, 64}, []bool{true, true}, true, LengthOK},
		{"one wrong", []Note{60, 65}, []Note{60, 64}, []bool{true, false}, false, LengthOK},
		{"empty detected", nil, []Note{60, 64}, []bool{false, false}, false, TooFew},
		{"too few", []Note{60}, []Note{60, 64}, []bool{true, false}, false, TooFew},
		{"too many", []Note{60, 64, 67}, []Note{60, 64}, []bool{true, true}, false, TooMany},
		{"both empty", nil, nil, []bool{}, true, LengthOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Match(tt.detected, tt.expected)
			assert.Equal(t, tt.perNote, res.PerNote)
			assert.Equal(t, tt.all, res.AllCorrect)
			assert.Equal(t, tt.mismatch, res.Mismatch)
		})
	}
}

func TestMatchIsPure(t *testing.T) {
	detected := []Note{60, 62, 64}
	expected := []Note{72, 63, 64}
	first := Match(detected, expected)
	second := Match(detected, expected)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.Correct())
	assert.Equal(t, []Note{60, 62, 64}, detected)
}

func TestLengthMismatchString(t *testing.T) {
	assert.Equal(t, "too few answers", TooFew.String())
	assert.Equal(t, "too many answers", TooMany.String())
	assert.Equal(t, "ok", LengthOK.String())
}
