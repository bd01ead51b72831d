package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{title: "Abc Def!", want: "abcdef"},
		{title: "T", want: "t"},
		{title: "OK Computer", want: "okcomputer"},
		{title: "  Mezzanine (Deluxe) 2019 ", want: "mezzaninedeluxe2019"},
		{title: "Sigur Rós", want: "sigurrs"},
		{title: "!!!", want: ""},
		{title: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			assert.Equal(t, tc.want, Make(tc.title))
		})
	}
}
