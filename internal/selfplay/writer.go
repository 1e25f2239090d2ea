package selfplay

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// RecordWriter streams duel records into a zstd parquet file.
// Rows go to tmp/ first and the file is moved next to it only
// when Finalize succeeds, so readers never see a partial file.
type RecordWriter struct {
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[DuelRecord]
	rows   int
}

func NewRecordWriter(outDir string) (*RecordWriter, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}

	absOut, err := filepath.Abs(outDir)
	if err != nil {
		absOut = outDir
	}
	tmpDir := filepath.Join(absOut, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("duels_%d.parquet", time.Now().UnixNano())
	tmpPath := filepath.Join(tmpDir, name)

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[DuelRecord](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", "duel_record_v1")

	return &RecordWriter{
		tmpPath: tmpPath,
		outPath: filepath.Join(absOut, name),
		file:    f,
		writer:  w,
	}, nil
}

func (rw *RecordWriter) OutPath() string { return rw.outPath }
func (rw *RecordWriter) Rows() int       { return rw.rows }

func (rw *RecordWriter) Write(records []DuelRecord) error {
	if rw.writer == nil {
		return fmt.Errorf("record writer is closed")
	}
	if len(records) == 0 {
		return nil
	}
	if _, err := rw.writer.Write(records); err != nil {
		return err
	}
	rw.rows += len(records)
	return nil
}

// Finalize closes the file and moves it out of tmp/. With no
// rows written the tmp file is removed and the path is empty.
func (rw *RecordWriter) Finalize() (string, error) {
	if rw.writer == nil {
		return "", nil
	}

	closeErr := rw.writer.Close()
	rw.writer = nil
	_ = rw.file.Sync()
	fileErr := rw.file.Close()
	rw.file = nil

	if closeErr != nil {
		return "", fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return "", fmt.Errorf("close parquet file: %w", fileErr)
	}

	if rw.rows == 0 {
		_ = os.Remove(rw.tmpPath)
		return "", nil
	}
	if err := os.Rename(rw.tmpPath, rw.outPath); err != nil {
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return rw.outPath, nil
}

// ReadRecords loads every record of a finalized file.
func ReadRecords(path string) ([]DuelRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, err
	}

	reader := parquet.NewGenericReader[DuelRecord](pf)
	defer reader.Close()

	records := make([]DuelRecord, reader.NumRows())
	n, err := reader.Read(records)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return records[:n], nil
}
