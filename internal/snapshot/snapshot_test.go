package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/rail-data/internal/model"
)

func testRecords() []model.PositionRecord {
	return []model.PositionRecord{
		{TrainCode: "A101", Status: "R", Latitude: "53.1", Longitude: "-6.2", Direction: "Northbound"},
		{TrainCode: "E917", Status: "N", Latitude: "0", Longitude: "0", Direction: "Southbound"},
		{TrainCode: "D303", Status: "T", Latitude: "51.9018", Longitude: "-8.4582", Direction: "To Cobh, via Glounthaune"},
	}
}

func TestFileName(t *testing.T) {
	polledAt := time.Date(2024, 1, 15, 12, 30, 45, 123456000, time.UTC)
	got := FileName(polledAt)
	want := "trains_20240115T123045.123456Z.csv"
	if got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
	if strings.ContainsAny(got, ": ") {
		t.Errorf("FileName() = %q contains characters unsafe for file names", got)
	}
	if !IsSnapshotFile(got) {
		t.Errorf("IsSnapshotFile(%q) = false, want true", got)
	}
}

func TestFileName_NormalisesToUTC(t *testing.T) {
	dublin := time.FixedZone("IST", 3600)
	local := time.Date(2024, 7, 1, 13, 0, 0, 0, dublin)
	if got, want := FileName(local), "trains_20240701T120000.000000Z.csv"; got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}

func TestWriter_WriteFormat(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)
	polledAt := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	path, err := w.Write(testRecords()[:1], polledAt)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	want := ",train_code,train_status,train_latitude,train_longitude,train_direction,datetime\n" +
		"0,A101,R,53.1,-6.2,Northbound,2024-01-15T12:00:00Z\n"
	if string(data) != want {
		t.Errorf("file contents =\n%s\nwant\n%s", data, want)
	}
}

func TestWriter_CreatesDirAndLeavesNoTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	w := NewWriter(dir, nil)

	if _, err := w.Write(testRecords(), time.Now()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if !IsSnapshotFile(entries[0].Name()) {
		t.Errorf("entry %q does not follow the snapshot naming convention", entries[0].Name())
	}
}

func TestWriter_SameTimestampOverwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)
	polledAt := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	first, err := w.Write(testRecords(), polledAt)
	if err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	second, err := w.Write(testRecords()[:1], polledAt)
	if err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	if first != second {
		t.Errorf("paths differ: %q vs %q", first, second)
	}

	ds, err := Aggregate(dir)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if ds.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (second write replaces the first)", ds.Len())
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)
	polledAt := time.Date(2024, 1, 15, 12, 0, 0, 987654321, time.UTC)
	records := testRecords()

	if _, err := w.Write(records, polledAt); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	ds, err := Aggregate(dir)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if ds.Len() != len(records) {
		t.Fatalf("Len() = %d, want %d", ds.Len(), len(records))
	}
	for i, got := range ds.Records {
		want := records[i]
		want.Timestamp = polledAt
		if got.TrainCode != want.TrainCode || got.Status != want.Status ||
			got.Latitude != want.Latitude || got.Longitude != want.Longitude ||
			got.Direction != want.Direction {
			t.Errorf("Records[%d] = %+v, want %+v", i, got, want)
		}
		if !got.Timestamp.Equal(polledAt) {
			t.Errorf("Records[%d].Timestamp = %v, want %v", i, got.Timestamp, polledAt)
		}
	}
}

func TestAggregate_EmptyDir(t *testing.T) {
	ds, err := Aggregate(t.TempDir())
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if ds == nil || ds.Len() != 0 {
		t.Errorf("dataset = %+v, want empty", ds)
	}
}

func TestAggregate_MissingDir(t *testing.T) {
	_, err := Aggregate(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("Aggregate() on a missing directory returned nil error")
	}
}

func TestAggregate_SkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)
	polledAt := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	if _, err := w.Write(testRecords(), polledAt); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	corrupt := map[string]string{
		"trains_00000000T000000.000000Z.csv": "not,a\nsnapshot\n",
		"trains_00000000T000001.000000Z.csv": "",
		"trains_00000000T000002.000000Z.csv": ",train_code,train_status,train_latitude,train_longitude,train_direction,datetime\n0,A101,R,53.1,-6.2,Northbound,yesterday\n",
		"trains_00000000T000003.000000Z.csv": ",code,status,lat,lon,dir,datetime\n",
	}
	for name, content := range corrupt {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	ds, err := Aggregate(dir)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if ds.Len() != len(testRecords()) {
		t.Errorf("Len() = %d, want %d", ds.Len(), len(testRecords()))
	}
	if len(ds.Skipped) != len(corrupt) {
		t.Errorf("len(Skipped) = %d, want %d", len(ds.Skipped), len(corrupt))
	}
}

func TestAggregate_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)
	if _, err := w.Write(testRecords(), time.Now()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	for _, name := range []string{"notes.txt", "trains_map.html", ".trains_123.tmp", "positions.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("junk"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "trains_dir.csv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	ds, err := Aggregate(dir)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if ds.Len() != len(testRecords()) || len(ds.Skipped) != 0 {
		t.Errorf("Len() = %d, Skipped = %v; want %d and none", ds.Len(), ds.Skipped, len(testRecords()))
	}
}

func TestAggregate_TwoPolls(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, nil)
	t1 := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Minute)

	p1, err := w.Write(testRecords(), t1)
	if err != nil {
		t.Fatalf("Write t1 failed: %v", err)
	}
	p2, err := w.Write(testRecords()[:2], t2)
	if err != nil {
		t.Fatalf("Write t2 failed: %v", err)
	}
	if p1 == p2 {
		t.Fatalf("two polls produced the same file %q", p1)
	}

	ds, err := Aggregate(dir)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	groups := make(map[int64]int)
	for _, r := range ds.Records {
		groups[r.Timestamp.UnixNano()]++
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %v, want 2", groups)
	}
	if groups[t1.UnixNano()] != 3 || groups[t2.UnixNano()] != 2 {
		t.Errorf("groups = %v, want t1:3 t2:2", groups)
	}

	// Name order is chronological order.
	if !ds.Records[0].Timestamp.Equal(t1) || !ds.Records[ds.Len()-1].Timestamp.Equal(t2) {
		t.Error("records are not in chronological listing order")
	}
}

func TestReadFile_LegacyNaiveTimestamps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trains_2024-01-15 12:00:00.123456.csv")
	content := ",train_code,train_status,train_latitude,train_longitude,train_direction,datetime\n" +
		"0,A101,R,53.1,-6.2,Northbound,2024-01-15 12:00:00.123456\n" +
		"1,E917,N,0.0,0.0,Southbound,2024-01-15 12:00:00.123456\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := ReadFile(path, time.UTC)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	want := time.Date(2024, 1, 15, 12, 0, 0, 123456000, time.UTC)
	for i, r := range records {
		if !r.Timestamp.Equal(want) {
			t.Errorf("records[%d].Timestamp = %v, want %v", i, r.Timestamp, want)
		}
	}
}

func TestReadFile_FileFormatError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trains_bad.csv")
	content := ",train_code,train_status,train_latitude,train_longitude,train_direction,datetime\n" +
		"0,A101,R,53.1,-6.2,Northbound,2024-01-15T12:00:00Z\n" +
		"1,E917,N,0,0,Southbound,soon\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := ReadFile(path, time.UTC)

	var ferr *FileFormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("err = %v, want *FileFormatError", err)
	}
	if ferr.Line != 3 {
		t.Errorf("Line = %d, want 3", ferr.Line)
	}
	if ferr.Path != path {
		t.Errorf("Path = %q, want %q", ferr.Path, path)
	}
}
