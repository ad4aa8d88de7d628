package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func refsOf(n int) []FileRef {
	refs := make([]FileRef, n)
	for i := range refs {
		refs[i] = FileRef{Seq: int64(i), Kind: KindDocument, Pointer: fmt.Sprintf("p%d", i)}
	}
	return refs
}

func TestBuildPageSplits25IntoThree(t *testing.T) {
	refs := refsOf(25)

	p0 := BuildPage(refs, 0, PageSize)
	assert.Len(t, p0.Files, 10)
	assert.False(t, p0.HasPrev)
	assert.True(t, p0.HasNext)
	assert.Equal(t, int64(0), p0.Files[0].Seq)

	p1 := BuildPage(refs, 1, PageSize)
	assert.Len(t, p1.Files, 10)
	assert.True(t, p1.HasPrev)
	assert.True(t, p1.HasNext)
	assert.Equal(t, int64(10), p1.Files[0].Seq)

	p2 := BuildPage(refs, 2, PageSize)
	assert.Len(t, p2.Files, 5)
	assert.True(t, p2.HasPrev)
	assert.False(t, p2.HasNext)
	assert.Equal(t, int64(24), p2.Files[4].Seq)
}

func TestBuildPageClampsOutOfRange(t *testing.T) {
	refs := refsOf(25)

	past := BuildPage(refs, 99, PageSize)
	assert.Equal(t, 2, past.Index)
	assert.Len(t, past.Files, 5)

	neg := BuildPage(refs, -3, PageSize)
	assert.Equal(t, 0, neg.Index)
	assert.Len(t, neg.Files, 10)
}

func TestBuildPageEmpty(t *testing.T) {
	p := BuildPage(nil, 0, PageSize)
	assert.Equal(t, 0, p.TotalCount)
	assert.Empty(t, p.Files)
	assert.False(t, p.HasPrev)
	assert.False(t, p.HasNext)
}

func TestBuildPageExactMultiple(t *testing.T) {
	p := BuildPage(refsOf(20), 1, PageSize)
	assert.Len(t, p.Files, 10)
	assert.False(t, p.HasNext)
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 1, PageCount(0, PageSize))
	assert.Equal(t, 1, PageCount(1, PageSize))
	assert.Equal(t, 1, PageCount(10, PageSize))
	assert.Equal(t, 2, PageCount(11, PageSize))
	assert.Equal(t, 3, PageCount(25, PageSize))
}

func TestLabelFallback(t *testing.T) {
	named := FileRef{Kind: KindPhoto, Seq: 4, DisplayName: "holiday.jpg"}
	assert.Equal(t, "holiday.jpg", named.Label())

	anon := FileRef{Kind: KindPhoto, Seq: 4}
	assert.Equal(t, "photo_0005", anon.Label())
}
