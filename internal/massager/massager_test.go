package massager

import (
	"testing"

	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/stretchr/testify/assert"
)

func raw(name, desc string) domain.RawRepoRecord {
	return domain.RawRepoRecord{
		Name:        name,
		Stars:       100,
		Language:    "Go",
		Description: desc,
		Added:       map[domain.Window]int64{30: 5, 90: 9},
		Baseline:    map[domain.Window]int64{30: 95, 90: 91},
	}
}

func TestMassager_Massage(t *testing.T) {
	m := New([]domain.Window{7, 30})
	out := m.Massage([]domain.RawRepoRecord{raw("a/one", "first"), raw("b/two", "")})

	assert.Len(t, out, 2)
	assert.Equal(t, "a/one", out[0].Name)
	assert.Equal(t, "b/two", out[1].Name)
	assert.Equal(t, int64(100), out[0].Stars)
	assert.Equal(t, &domain.GrowthValue{Baseline: 95, Added: 5}, out[0].Data[30])

	// every window of the column model has a key, missing ones are null
	v, ok := out[0].Data[7]
	assert.True(t, ok)
	assert.Nil(t, v)

	// windows outside the column model are not copied
	_, ok = out[0].Data[90]
	assert.False(t, ok)
}

func TestMassager_Exclusion(t *testing.T) {
	records := []domain.RawRepoRecord{
		raw("a/latin", "A fast web framework"),
		raw("b/empty", "   "),
		raw("c/han", "一个快速的框架"),
		raw("d/extA", "old \u3400 glyph"),
		raw("e/extB", "rare \U00020001 glyph"),
		raw("f/kana", "ひらがな only"),
	}

	testCases := []struct {
		name      string
		opts      []Option
		wantNames []string
	}{
		{
			name:      "no policy keeps everything",
			wantNames: []string{"a/latin", "b/empty", "c/han", "d/extA", "e/extB", "f/kana"},
		},
		{
			name:      "latin audience drops empty and CJK descriptions",
			opts:      []Option{WithExclude(LatinAudience())},
			wantNames: []string{"a/latin", "f/kana"},
		},
		{
			name:      "empty only",
			opts:      []Option{WithExclude(EmptyDescription)},
			wantNames: []string{"a/latin", "c/han", "d/extA", "e/extB", "f/kana"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := New([]domain.Window{30}, tc.opts...).Massage(records)
			names := make([]string, 0, len(out))
			for _, r := range out {
				names = append(names, r.Name)
			}
			assert.Equal(t, tc.wantNames, names)
			assert.LessOrEqual(t, len(out), len(records))
		})
	}
}

func TestContainsCJK(t *testing.T) {
	assert.False(t, ContainsCJK(""))
	assert.False(t, ContainsCJK("plain ascii"))
	assert.True(t, ContainsCJK("\u4E00"))
	assert.True(t, ContainsCJK("\u9FCC"))
	assert.False(t, ContainsCJK("\u9FCD"), "just past the unified block bound")
	assert.True(t, ContainsCJK("\u4DB5"))
	assert.True(t, ContainsCJK("\U0002F800"))
	assert.False(t, ContainsCJK("한국어"), "hangul is not in the ranges")
}
