package sfinspect

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inspectionHeader is the header line of the public inspection dataset
const inspectionHeader = "business_id,business_name,business_address,business_city,business_state," +
	"business_postal_code,business_latitude,business_longitude,business_location,business_phone_number," +
	"inspection_id,inspection_date,inspection_score,inspection_type,violation_id,violation_description,risk_category"

// csvLine renders rec as one CSV line, quoting fields that hold a comma
func csvLine(rec Record) string {
	fields := make([]string, len(rec))
	for i, v := range rec {
		if strings.Contains(v, ",") {
			v = `"` + v + `"`
		}
		fields[i] = v
	}
	return strings.Join(fields, ",")
}

// csvData renders a header and the given rows
func csvData(rows ...Record) []byte {
	lines := []string{inspectionHeader}
	for _, rec := range rows {
		lines = append(lines, csvLine(rec))
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// writeFile writes data to name inside dir and returns the path
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestNewBuilder(t *testing.T) {
	t.Parallel()

	builder := NewBuilder()
	require.NotNil(t, builder, "NewBuilder() should not return nil")
	assert.Len(t, builder.paths, 0, "NewBuilder() should have empty paths slice")
	assert.Len(t, builder.filesystems, 0, "NewBuilder() should have empty filesystems slice")
	assert.Len(t, builder.readers, 0, "NewBuilder() should have empty readers slice")
	assert.NotNil(t, builder.logger, "NewBuilder() should have a logger")
}

func TestBuilder_Configuration(t *testing.T) {
	t.Parallel()

	t.Run("chain paths", func(t *testing.T) {
		t.Parallel()
		builder := NewBuilder().
			AddPath("a.csv").
			AddPaths("b.csv.gz", "c.xlsx")
		assert.Equal(t, []string{"a.csv", "b.csv.gz", "c.xlsx"}, builder.paths)
	})

	t.Run("add filesystem and reader", func(t *testing.T) {
		t.Parallel()
		builder := NewBuilder().
			AddFS(fstest.MapFS{}).
			AddReader(strings.NewReader(""), "upload.csv", FileTypeCSV)
		assert.Len(t, builder.filesystems, 1)
		require.Len(t, builder.readers, 1)
		assert.Equal(t, "upload.csv", builder.readers[0].name)
		assert.Equal(t, FileTypeCSV, builder.readers[0].fileType)
	})

	t.Run("nil logger discards", func(t *testing.T) {
		t.Parallel()
		builder := NewBuilder().SetLogger(nil)
		assert.NotNil(t, builder.logger)
	})

	t.Run("sheet", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "2019", NewBuilder().SetSheet("2019").sheet)
	})
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	csvPath := writeFile(t, tmpDir, "inspections.csv", csvData())
	txtPath := writeFile(t, tmpDir, "notes.txt", []byte("hello"))
	emptyDir := filepath.Join(tmpDir, "empty")
	require.NoError(t, os.MkdirAll(emptyDir, 0o750))

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()
		builder, err := NewBuilder().AddPath(csvPath).Build(context.Background())
		require.NoError(t, err)
		require.Len(t, builder.inputs, 1)
		assert.Equal(t, "inspections.csv", builder.inputs[0].name)
		assert.Equal(t, FileTypeCSV, builder.inputs[0].fileType)
	})

	errorTests := []struct {
		name    string
		builder *Builder
		wantErr error
		wantMsg string
	}{
		{
			name:    "no inputs",
			builder: NewBuilder(),
			wantErr: ErrNoInput,
		},
		{
			name:    "missing file",
			builder: NewBuilder().AddPath(filepath.Join(tmpDir, "missing.csv")),
			wantErr: ErrFileNotFound,
		},
		{
			name:    "unsupported file",
			builder: NewBuilder().AddPath(txtPath),
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "directory without supported files",
			builder: NewBuilder().AddPath(emptyDir),
			wantErr: ErrFileNotFound,
		},
		{
			name:    "nil filesystem",
			builder: NewBuilder().AddFS(nil),
			wantMsg: "FS cannot be nil",
		},
		{
			name:    "filesystem without supported files",
			builder: NewBuilder().AddFS(fstest.MapFS{"readme.md": &fstest.MapFile{Data: []byte("#")}}),
			wantMsg: "no supported files found",
		},
		{
			name:    "nil reader",
			builder: NewBuilder().AddReader(nil, "upload.csv", FileTypeCSV),
			wantMsg: "cannot be nil",
		},
		{
			name:    "unsupported reader type",
			builder: NewBuilder().AddReader(strings.NewReader(""), "upload.txt", FileTypeUnsupported),
			wantErr: ErrUnsupportedFormat,
		},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			builder, err := tt.builder.Build(context.Background())
			require.Error(t, err)
			assert.Nil(t, builder)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}

	t.Run("unreadable file", func(t *testing.T) {
		t.Parallel()
		if os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced for root")
		}
		path := writeFile(t, t.TempDir(), "locked.csv", csvData())
		require.NoError(t, os.Chmod(path, 0o000))

		_, err := NewBuilder().AddPath(path).Build(context.Background())
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewBuilder().AddPath(csvPath).Build(ctx)
		assert.ErrorIs(t, err, ErrContextCancelled)
	})
}

func TestBuilder_Load(t *testing.T) {
	t.Parallel()

	t.Run("same establishment across spellings of one date", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		path := writeFile(t, tmpDir, "inspections.csv", csvData(
			inspectionRecord("Joe's Diner", "94110", "1 Main St", "+14155550100", "01/02/2019 12:00:00 AM", "95", "", ""),
			inspectionRecord("Joe's Diner", "94110", "1 Main St", "+14155550100", "1/2/19 12:00:00 AM", "95", "", ""),
		))

		dir, report, err := Load(context.Background(), path)
		require.NoError(t, err)
		require.Equal(t, 1, dir.Len())
		e, ok := dir.Lookup("Joe's Diner", "94110")
		require.True(t, ok)
		assert.Equal(t, 2, e.InspectionCount())

		assert.Equal(t, 3, report.Rows)
		assert.Equal(t, 2, report.Loaded)
		assert.Equal(t, 1, report.Rejected, "the header row is rejected")
		assert.Equal(t, 1, report.ByCategory[CategoryFormat])
		assert.NotEqual(t, uuid.Nil, report.RunID)
	})

	t.Run("overlong line is rejected and the load continues", func(t *testing.T) {
		t.Parallel()
		data := inspectionHeader + "\n" +
			csvLine(inspectionRecord("Joe's Diner", "94110", "", "", "01/02/2019", "95", "", "")) + "\n" +
			strings.Repeat("x", maxLineSize+1) + "\n" +
			csvLine(inspectionRecord("Cafe", "94103", "", "", "01/15/2020", "100", "", "")) + "\n"
		path := writeFile(t, t.TempDir(), "inspections.csv", []byte(data))

		dir, report, err := Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 2, dir.Len())
		assert.Equal(t, 4, report.Rows)
		assert.Equal(t, 2, report.Loaded)
		assert.Equal(t, 2, report.Rejected, "the header and the overlong line")
		assert.Equal(t, 2, report.ByCategory[CategoryFormat])
	})

	t.Run("every input kind feeds one directory", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()

		// Directory inputs are walked in lexical order
		dataDir := filepath.Join(tmpDir, "data")
		writeFile(t, dataDir, "a.csv.gz", compressBytes(t, CompressionGZ, csvData(
			inspectionRecord("Joe's Diner", "94110", "1 Main St", "555", "01/02/2019", "95", "", ""),
		)))
		writeFile(t, dataDir, "b/c.csv.zst", compressBytes(t, CompressionZSTD, csvData(
			inspectionRecord("JOE'S DINER", "94110", "", "", "03/04/2019", "88", "Unclean floors", "Low Risk"),
		)))
		writeFile(t, dataDir, "ignored.txt", []byte("not an input"))

		parquetPath := writeFile(t, tmpDir, "more.parquet.xz", compressBytes(t, CompressionXZ, parquetFixture(t,
			[]string{"c0", "c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8", "c9", "c10", "c11", "c12"},
			[][]*string{{ptr("7"), ptr("Taqueria"), nil, nil, nil, ptr("94103"), nil, nil, nil, nil, nil, ptr("05/06/2019"), ptr("90")}},
		)))

		mapFS := fstest.MapFS{
			"fs/inspections.csv": &fstest.MapFile{Data: csvData(
				inspectionRecord("Cafe", "94133", "", "", "02/02/2020", "70", "", ""),
			)},
		}

		xlsxRow := []string(inspectionRecord("Pizza Palace", "94110", "", "", "07/08/2021", "99", "", ""))
		xlsxData := xlsxFixture(t, map[string][][]string{"2021": {xlsxRow}}, "2021")

		upload := bytes.NewReader(compressBytes(t, CompressionGZ, csvData(
			inspectionRecord("Cafe", "94133", "", "", "02/03/2020", "75", "", ""),
		)))

		builder, err := NewBuilder().
			AddPath(dataDir).
			AddPath(parquetPath).
			AddFS(mapFS).
			AddReader(bytes.NewReader(xlsxData), "sheet.xlsx", FileTypeXLSX).
			AddReader(upload, "upload.csv.gz", FileTypeCSV).
			Build(context.Background())
		require.NoError(t, err)

		var names []string
		for _, in := range builder.inputs {
			names = append(names, in.name)
		}
		assert.Equal(t, []string{"a.csv", "c.csv", "more.parquet", "inspections.csv", "sheet.xlsx", "upload.csv"}, names)

		dir, report, err := builder.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, dir.Len())
		assert.Equal(t, 6, dir.InspectionCount())
		assert.Equal(t, 6, report.Loaded)

		joe, ok := dir.Lookup("joe's diner", "94110")
		require.True(t, ok)
		assert.Equal(t, 2, joe.InspectionCount())
		assert.Equal(t, "1 Main St", joe.Address())

		cafe, ok := dir.Lookup("Cafe", "94133")
		require.True(t, ok)
		assert.Equal(t, 2, cafe.InspectionCount())

		_, ok = dir.Lookup("Taqueria", "94103")
		assert.True(t, ok)
		_, ok = dir.Lookup("Pizza Palace", "94110")
		assert.True(t, ok)
	})

	t.Run("rejected rows are logged", func(t *testing.T) {
		t.Parallel()
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

		data := csvData(inspectionRecord("Joe's Diner", "941", "", "", "01/02/2019", "95", "", ""))
		builder, err := NewBuilder().
			AddReader(bytes.NewReader(data), "upload.csv", FileTypeCSV).
			SetLogger(logger).
			Build(context.Background())
		require.NoError(t, err)

		_, report, err := builder.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.ByCategory[CategoryIdentity])
		assert.Contains(t, logs.String(), "row rejected")
		assert.Contains(t, logs.String(), "source=upload.csv")
		assert.Contains(t, logs.String(), "line=2")
		assert.Contains(t, logs.String(), "load finished")
		assert.Contains(t, logs.String(), "run_id="+report.RunID.String())
	})

	t.Run("unreadable input aborts the load", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "broken.csv.gz", []byte("not gzip"))

		_, _, err := Load(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load failed")
		assert.Contains(t, err.Error(), "broken.csv")
	})

	t.Run("load before build", func(t *testing.T) {
		t.Parallel()
		_, _, err := NewBuilder().AddPath("inspections.csv").Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "did you call Build()?")
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		builder, err := NewBuilder().
			AddReader(bytes.NewReader(csvData()), "upload.csv", FileTypeCSV).
			Build(context.Background())
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err = builder.Load(ctx)
		assert.ErrorIs(t, err, ErrContextCancelled)
	})

	t.Run("package level load without paths", func(t *testing.T) {
		t.Parallel()
		_, _, err := Load(context.Background())
		assert.ErrorIs(t, err, ErrNoInput)
	})
}
