package chunk

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault-go/internal/model"
)

func words(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "w%d", i)
	}
	return b.String()
}

func testMeta() model.SourceMeta {
	return model.SourceMeta{
		Source:  "report.pdf",
		Kind:    model.KindPDF,
		ModTime: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func Test_Split_WordCounts(t *testing.T) {
	var cases = []struct {
		name      string
		wordCount int
		chunks    int
		sizes     []int
	}{
		{name: "one_word", wordCount: 1, chunks: 1, sizes: []int{1}},
		{name: "shorter_than_window", wordCount: 150, chunks: 1, sizes: []int{150}},
		{name: "exact_window", wordCount: 200, chunks: 1, sizes: []int{200}},
		{name: "just_over_window", wordCount: 201, chunks: 2, sizes: []int{200, 41}},
		{name: "450_words", wordCount: 450, chunks: 3, sizes: []int{200, 200, 130}},
		{name: "two_full_windows", wordCount: 360, chunks: 2, sizes: []int{200, 200}},
	}

	s := DefaultSplitter()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := s.Split(words(c.wordCount), testMeta())
			require.Len(t, out, c.chunks)
			for i, ch := range out {
				assert.Len(t, strings.Fields(ch.Text), c.sizes[i])
			}
		})
	}
}

func Test_Split_OverlapInvariant(t *testing.T) {
	// The last Overlap words of chunk i equal the first Overlap words of
	// chunk i+1, for every consecutive pair.
	s := DefaultSplitter()
	for _, n := range []int{250, 450, 777, 1600} {
		t.Run(fmt.Sprintf("%d_words", n), func(t *testing.T) {
			out := s.Split(words(n), testMeta())
			require.NotEmpty(t, out)
			for i := 0; i+1 < len(out); i++ {
				prev := strings.Fields(out[i].Text)
				next := strings.Fields(out[i+1].Text)
				require.GreaterOrEqual(t, len(prev), Overlap)
				tail := prev[len(prev)-Overlap:]
				head := next[:Overlap]
				assert.Equal(t, tail, head, "chunks %d/%d", i, i+1)
			}
		})
	}
}

func Test_Split_EmptyText(t *testing.T) {
	s := DefaultSplitter()
	assert.Nil(t, s.Split("", testMeta()))
	assert.Nil(t, s.Split("   \n\t  ", testMeta()))
}

func Test_Split_MetadataAndIdentity(t *testing.T) {
	meta := testMeta()
	out := DefaultSplitter().Split(words(450), meta)
	require.Len(t, out, 3)

	for i, ch := range out {
		assert.Equal(t, meta, ch.Meta)
		assert.Equal(t, i, ch.Ordinal)
		assert.Equal(t, fmt.Sprintf("report.pdf:%d", i), ch.ID())
	}
	assert.Equal(t, 0, out[0].WordOffset)
	assert.Equal(t, 160, out[1].WordOffset)
	assert.Equal(t, 320, out[2].WordOffset)
}

func Test_NewSplitter_BadGeometry(t *testing.T) {
	// Overlap >= size falls back rather than looping forever.
	s := NewSplitter(10, 10)
	out := s.Split(words(25), testMeta())
	require.NotEmpty(t, out)
	assert.Len(t, strings.Fields(out[0].Text), 10)
}

func Test_Split_CollapsesWhitespace(t *testing.T) {
	out := DefaultSplitter().Split("alpha\n\nbeta\t gamma  delta", testMeta())
	require.Len(t, out, 1)
	assert.Equal(t, "alpha beta gamma delta", out[0].Text)
}
