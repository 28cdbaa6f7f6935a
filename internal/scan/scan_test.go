package scan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHandle struct{ id int }

func (fakeHandle) Transfer() {}

// nestingHandle is a transferable that itself holds a transferable.
type nestingHandle struct{ Inner fakeHandle }

func (nestingHandle) Transfer() {}

func TestScanSkipsPrimitivesAndNil(t *testing.T) {
	require.Empty(t, Scan(nil))
	require.Empty(t, Scan(42))
	require.Empty(t, Scan("hello"))
	require.Empty(t, Scan([]int{1, 2, 3}))
}

func TestScanFindsHandlesInSlice(t *testing.T) {
	got := Scan([]any{1, fakeHandle{id: 1}, "x", fakeHandle{id: 2}})
	require.Len(t, got, 2)
	require.Equal(t, fakeHandle{id: 1}, got[0])
	require.Equal(t, fakeHandle{id: 2}, got[1])
}

func TestScanFindsHandlesInMap(t *testing.T) {
	got := Scan(map[string]any{"a": fakeHandle{id: 1}})
	require.Len(t, got, 1)
}

func TestScanDoesNotDescendIntoTransferable(t *testing.T) {
	type wrapper struct {
		Inner nestingHandle
	}
	got := Scan(wrapper{Inner: nestingHandle{Inner: fakeHandle{id: 7}}})
	require.Len(t, got, 1)
	require.Equal(t, nestingHandle{Inner: fakeHandle{id: 7}}, got[0])
}

func TestScanStructExportedFieldsOnly(t *testing.T) {
	type s struct {
		Pub  fakeHandle
		priv fakeHandle
	}
	got := Scan(s{Pub: fakeHandle{id: 1}, priv: fakeHandle{id: 2}})
	require.Len(t, got, 1)
	require.Equal(t, fakeHandle{id: 1}, got[0])
}

func TestScanNestedSliceOfMaps(t *testing.T) {
	got := Scan([]map[string]any{
		{"a": fakeHandle{id: 1}},
		{"b": fakeHandle{id: 2}},
	})
	require.Len(t, got, 2)
}
