package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gzgl/internal/graphics/device"
	"gzgl/internal/graphics/material"
)

func itemsAt(distances ...float32) *DrawList {
	l := &DrawList{Kind: ListTranslucent}
	for i, d := range distances {
		l.Items = append(l.Items, &DrawItem{Distance: d, Material: material.Material{Handle: uint32(i)}})
	}
	return l
}

func TestSortByDistanceFarthestFirst(t *testing.T) {
	l := itemsAt(10, 50, 30, 50, 5)
	l.SortByDistance()
	for i := 1; i < l.Len(); i++ {
		assert.GreaterOrEqual(t, l.Items[i-1].Distance, l.Items[i].Distance)
	}
	assert.Equal(t, uint32(1), l.Items[0].Material.Handle, "equal distances keep their order")
	assert.Equal(t, uint32(3), l.Items[1].Material.Handle)

	before := append([]*DrawItem(nil), l.Items...)
	l.SortByDistance()
	assert.Equal(t, before, l.Items)
}

func TestSortGroupsByMaterial(t *testing.T) {
	l := &DrawList{}
	for _, h := range []uint32{3, 1, 3, 2} {
		l.Items = append(l.Items, &DrawItem{Material: material.Material{Handle: h}})
	}
	l.Sort()
	var got []uint32
	for _, it := range l.Items {
		got = append(got, it.Material.Handle)
	}
	assert.Equal(t, []uint32{1, 2, 3, 3}, got)
}

func TestDrawInfoReusesItems(t *testing.T) {
	di := newDrawInfo()
	it := di.newItem()
	it.Kind = ListMasked
	it.Verts = append(it.Verts, device.Vertex{X: 1}, device.Vertex{X: 2})
	di.Add(it)
	assert.Equal(t, 1, di.Total())
	assert.Equal(t, ListMasked, di.List(ListMasked).Kind)

	di.Reset()
	assert.Zero(t, di.Total())
	again := di.newItem()
	require.Same(t, it, again)
	assert.Empty(t, again.Verts)
	assert.Equal(t, 2, cap(again.Verts))
	assert.Equal(t, ListKind(0), again.Kind)

	assert.NotSame(t, again, di.newItem())
}

func TestDrawInfoStack(t *testing.T) {
	var s drawInfoStack
	assert.Nil(t, s.current())

	outer := s.push()
	outer.Add(&DrawItem{Kind: ListPlain})
	inner := s.push()
	assert.NotSame(t, outer, inner)
	assert.Same(t, inner, s.current())

	s.pop()
	assert.Same(t, outer, s.current())
	assert.Equal(t, 1, outer.Total(), "popping leaves the outer scene alone")

	s.pop()
	s.pop()
	assert.Nil(t, s.current())
	assert.Same(t, outer, s.push(), "freed infos are reused")
	assert.Zero(t, s.current().Total())
}

func TestListKindProperties(t *testing.T) {
	assert.True(t, ListTranslucent.DepthSorted())
	assert.False(t, ListPlain.DepthSorted())
	assert.True(t, ListTranslucentBorder.Unsorted())
	assert.False(t, ListTranslucentBorder.DepthSorted())
	assert.False(t, ListPlain.Unsorted())
	assert.True(t, ListMasked.Masked())
	assert.True(t, ListFog.Fog())
	assert.True(t, ListLight.Lit())
}
