package sfinspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/sfinspect/domain/model"
)

// newTestDirectory returns a directory holding the named establishments in order
func newTestDirectory(t *testing.T, entries ...[2]string) *Directory {
	t.Helper()

	dir := NewDirectory()
	for _, entry := range entries {
		e, err := model.NewEstablishment(entry[0], entry[1])
		require.NoError(t, err)
		require.True(t, dir.Insert(e))
	}
	return dir
}

// names lists the establishment names of dir in order
func names(dir *Directory) []string {
	var out []string
	for e := range dir.All() {
		out = append(out, e.Name())
	}
	return out
}

func TestDirectory_Insert(t *testing.T) {
	t.Parallel()

	dir := NewDirectory()
	first, err := model.NewEstablishment("Joe's Diner", "94110", model.WithAddress("1 Main St"), model.WithPhone("555"))
	require.NoError(t, err)
	sameIdentity, err := model.NewEstablishment("JOE'S DINER", "94110", model.WithAddress("2 Main St"), model.WithPhone("556"))
	require.NoError(t, err)
	otherZip, err := model.NewEstablishment("Joe's Diner", "94103")
	require.NoError(t, err)

	assert.True(t, dir.Insert(first))
	assert.False(t, dir.Insert(sameIdentity), "identity decides uniqueness, not address or phone")
	assert.False(t, dir.Insert(first))
	assert.True(t, dir.Insert(otherZip))
	assert.False(t, dir.Insert(nil))

	assert.Equal(t, 2, dir.Len())
	assert.Equal(t, []*model.Establishment{first, otherZip}, dir.Establishments())

	got, ok := dir.Lookup("joe's DINER", "94110")
	require.True(t, ok)
	assert.Same(t, first, got)

	_, ok = dir.Lookup("Joe's Diner", "94111")
	assert.False(t, ok)
}

func TestDirectory_InspectionCount(t *testing.T) {
	t.Parallel()

	dir := newTestDirectory(t, [2]string{"A", "94110"}, [2]string{"B", "94110"})
	assert.Equal(t, 0, dir.InspectionCount())

	a, _ := dir.Lookup("A", "94110")
	b, _ := dir.Lookup("B", "94110")
	inspection, err := model.NewInspection(model.MustParseDate("01/02/2019"), 90, "", "")
	require.NoError(t, err)
	a.AddInspection(inspection)
	a.AddInspection(inspection)
	b.AddInspection(inspection)

	assert.Equal(t, 3, dir.InspectionCount())
}

func TestDirectory_FindByNameKeyword(t *testing.T) {
	t.Parallel()

	dir := newTestDirectory(t,
		[2]string{"Sunrise Diner", "94110"},
		[2]string{"Pizza Palace", "94103"},
		[2]string{"Blue Diner", "94133"},
		[2]string{"blue diner", "94103"},
		[2]string{"Taqueria", "94110"},
	)

	tests := []struct {
		name    string
		keyword string
		want    []string
		wantOK  bool
	}{
		{
			name:    "sorted by name then zip",
			keyword: "diner",
			want:    []string{"blue diner", "Blue Diner", "Sunrise Diner"},
			wantOK:  true,
		},
		{
			name:    "case-insensitive keyword",
			keyword: "PIZZA",
			want:    []string{"Pizza Palace"},
			wantOK:  true,
		},
		{
			name:    "inner substring",
			keyword: "aqu",
			want:    []string{"Taqueria"},
			wantOK:  true,
		},
		{
			name:    "no match",
			keyword: "sushi",
			wantOK:  false,
		},
		{
			name:    "empty keyword",
			keyword: "",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			found, ok := dir.FindByNameKeyword(tt.keyword)
			if !tt.wantOK {
				assert.False(t, ok)
				assert.Nil(t, found)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, names(found))
		})
	}

	t.Run("result sorting leaves the source in insertion order", func(t *testing.T) {
		t.Parallel()
		_, _ = dir.FindByNameKeyword("diner")
		assert.Equal(t, []string{"Sunrise Diner", "Pizza Palace", "Blue Diner", "blue diner", "Taqueria"}, names(dir))
	})
}

func TestDirectory_FindByZipSubstring(t *testing.T) {
	t.Parallel()

	dir := newTestDirectory(t,
		[2]string{"Zeta", "94110"},
		[2]string{"Alpha", "94103"},
		[2]string{"Alpha", "94110"},
		[2]string{"Gamma", "94133"},
	)

	tests := []struct {
		name    string
		keyword string
		want    [][2]string
		wantOK  bool
	}{
		{
			name:    "exact zip",
			keyword: "94110",
			want:    [][2]string{{"Alpha", "94110"}, {"Zeta", "94110"}},
			wantOK:  true,
		},
		{
			name:    "prefix",
			keyword: "941",
			want:    [][2]string{{"Alpha", "94103"}, {"Alpha", "94110"}, {"Gamma", "94133"}, {"Zeta", "94110"}},
			wantOK:  true,
		},
		{
			name:    "suffix",
			keyword: "33",
			want:    [][2]string{{"Gamma", "94133"}},
			wantOK:  true,
		},
		{
			name:    "no match",
			keyword: "10001",
			wantOK:  false,
		},
		{
			name:    "empty keyword",
			keyword: "",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			found, ok := dir.FindByZipSubstring(tt.keyword)
			if !tt.wantOK {
				assert.False(t, ok)
				assert.Nil(t, found)
				return
			}
			require.True(t, ok)

			var got [][2]string
			for e := range found.All() {
				got = append(got, [2]string{e.Name(), e.Zip()})
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirectory_QueryResultsShareEstablishments(t *testing.T) {
	t.Parallel()

	dir := newTestDirectory(t, [2]string{"Joe's Diner", "94110"})
	found, ok := dir.FindByZipSubstring("94110")
	require.True(t, ok)

	original, _ := dir.Lookup("Joe's Diner", "94110")
	result, _ := found.Lookup("Joe's Diner", "94110")
	assert.Same(t, original, result)
}
