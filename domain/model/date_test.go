package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "four digit year", input: "01/02/2019", want: "01/02/2019"},
		{name: "two digit year is expanded", input: "01/02/19", want: "01/02/2019"},
		{name: "year 2000 as 00", input: "12/31/00", want: "12/31/2000"},
		{name: "upper bound", input: "12/31/2025", want: "12/31/2025"},
		{name: "leap day", input: "02/29/2016", want: "02/29/2016"},
		{name: "empty", input: "", wantErr: ErrInvalidFormat},
		{name: "single digit month", input: "1/02/2019", wantErr: ErrInvalidFormat},
		{name: "dash separators", input: "01-02-2019", wantErr: ErrInvalidFormat},
		{name: "letters", input: "ab/cd/efgh", wantErr: ErrInvalidFormat},
		{name: "three digit year", input: "01/02/201", wantErr: ErrInvalidFormat},
		{name: "trailing time", input: "01/02/2019 12:00:00 AM", wantErr: ErrInvalidFormat},
		{name: "year out of range", input: "01/02/2026", wantErr: ErrInvalidYear},
		{name: "two digit year out of range", input: "01/02/26", wantErr: ErrInvalidYear},
		{name: "year 1999", input: "01/02/1999", wantErr: ErrInvalidYear},
		{name: "month zero", input: "00/02/2019", wantErr: ErrInvalidMonth},
		{name: "month thirteen", input: "13/02/2019", wantErr: ErrInvalidMonth},
		{name: "day zero", input: "01/00/2019", wantErr: ErrInvalidDay},
		{name: "april 31", input: "04/31/2019", wantErr: ErrInvalidDay},
		{name: "february 29 off year", input: "02/29/2019", wantErr: ErrInvalidDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDate(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseDate_ErrorCategories(t *testing.T) {
	t.Parallel()

	_, err := ParseDate("bad")
	assert.ErrorIs(t, err, ErrFormat)

	for _, input := range []string{"01/02/2030", "14/02/2019", "06/31/2019"} {
		_, err := ParseDate(input)
		assert.ErrorIs(t, err, ErrRange, input)
	}
}

func TestNewDate_DayBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		month int
		max   int
	}{
		{1, 31}, {3, 31}, {4, 30}, {5, 31}, {6, 30}, {7, 31},
		{8, 31}, {9, 30}, {10, 31}, {11, 30}, {12, 31},
	}

	for _, tt := range tests {
		_, err := NewDate(tt.month, tt.max, 2019)
		assert.NoError(t, err, "month %d day %d", tt.month, tt.max)

		_, err = NewDate(tt.month, tt.max+1, 2019)
		assert.ErrorIs(t, err, ErrInvalidDay, "month %d day %d", tt.month, tt.max+1)
	}
}

func TestNewDate_LeapYearTable(t *testing.T) {
	t.Parallel()

	leap := map[int]bool{2000: true, 2004: true, 2008: true, 2012: true, 2016: true, 2020: true, 2024: true}

	for year := 2000; year <= 2025; year++ {
		for _, y := range []int{year, year - 2000} {
			_, err := NewDate(2, 29, y)
			if leap[year] {
				assert.NoError(t, err, "year %d", y)
			} else {
				assert.ErrorIs(t, err, ErrInvalidDay, "year %d", y)
			}

			_, err = NewDate(2, 28, y)
			assert.NoError(t, err, "year %d", y)
		}
	}
}

func TestNewDate_RoundTrip(t *testing.T) {
	t.Parallel()

	for year := 2000; year <= 2025; year++ {
		for month := 1; month <= 12; month++ {
			for day := 1; day <= daysIn(month, year); day++ {
				d, err := NewDate(month, day, year)
				require.NoError(t, err)

				parsed, err := ParseDate(d.String())
				require.NoError(t, err)
				require.Equal(t, d, parsed)
			}
		}
	}
}

func TestNewDate_ShortAndLongYearsAreEqual(t *testing.T) {
	t.Parallel()

	short, err := NewDate(3, 4, 5)
	require.NoError(t, err)
	long, err := NewDate(3, 4, 2005)
	require.NoError(t, err)

	assert.True(t, short.Equal(long))
	assert.Equal(t, 0, short.Compare(long))
	assert.Equal(t, 2005, short.Year())
	assert.Equal(t, "03/04/2005", short.String())
}

func TestDate_Compare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"earlier year", "12/31/2018", "01/01/2019", -1},
		{"later month", "05/01/2019", "04/30/2019", 1},
		{"earlier day", "05/01/2019", "05/02/2019", -1},
		{"equal", "05/01/2019", "05/01/19", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, b := MustParseDate(tt.a), MustParseDate(tt.b)
			assert.Equal(t, tt.want, a.Compare(b))
			assert.Equal(t, -tt.want, b.Compare(a))
			assert.Equal(t, tt.want < 0, a.Before(b))
		})
	}
}

func TestDate_Time(t *testing.T) {
	t.Parallel()

	d := MustParseDate("07/04/2021")
	assert.Equal(t, time.Date(2021, time.July, 4, 0, 0, 0, 0, time.UTC), d.Time())
	assert.Equal(t, 7, d.Month())
	assert.Equal(t, 4, d.Day())
}

func TestMustParseDate_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustParseDate("2021-07-04") })
}
