package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPosFromInput(t *testing.T) {
	iv := func(n int) *int { return &n }

	tests := []struct {
		name    string
		in      windowSetPosInput
		want    [4]*int // x, y, w, h
		wantZ   string
		wantErr bool
	}{
		{
			name: "split fields",
			in:   windowSetPosInput{X: iv(10), Y: iv(20), Width: iv(800), Height: iv(600)},
			want: [4]*int{iv(10), iv(20), iv(800), iv(600)},
		},
		{
			name: "loc string",
			in:   windowSetPosInput{Loc: "[100,200]"},
			want: [4]*int{iv(100), iv(200), nil, nil},
		},
		{
			name: "size object",
			in:   windowSetPosInput{Size: map[string]any{"w": float64(640), "h": float64(480)}},
			want: [4]*int{nil, nil, iv(640), iv(480)},
		},
		{
			name: "loc and size arrays",
			in:   windowSetPosInput{Loc: []any{float64(5), float64(6)}, Size: []any{float64(7), float64(8)}},
			want: [4]*int{iv(5), iv(6), iv(7), iv(8)},
		},
		{
			name: "loc wins over split fields",
			in:   windowSetPosInput{Loc: "50,60", X: iv(1), Y: iv(2)},
			want: [4]*int{iv(50), iv(60), nil, nil},
		},
		{
			name:  "z only",
			in:    windowSetPosInput{Z: " Topmost "},
			want:  [4]*int{nil, nil, nil, nil},
			wantZ: "topmost",
		},
		{name: "nothing to change", in: windowSetPosInput{}, wantErr: true},
		{name: "bad loc", in: windowSetPosInput{Loc: "center"}, wantErr: true},
		{name: "bad size", in: windowSetPosInput{Size: []any{float64(1)}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := setPosFromInput(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for i, got := range []*int{pos.X, pos.Y, pos.W, pos.H} {
				if tt.want[i] == nil {
					assert.Nil(t, got)
				} else {
					require.NotNil(t, got)
					assert.Equal(t, *tt.want[i], *got)
				}
			}
			assert.Equal(t, tt.wantZ, pos.Z)
		})
	}
}
