package clinvar

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/wgs-report/internal/genome"
	"github.com/inodb/wgs-report/internal/vcf"
)

// DuckDBIndex serves lookups from a clinvar table produced by BuildDuckDB.
type DuckDBIndex struct {
	db       *sql.DB
	lookupPS *sql.Stmt
}

// SourceInfo records which VCF a DuckDB index was built from.
type SourceInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	Records int64
}

// OpenDuckDB opens an existing index database read-only.
func OpenDuckDB(path string) (*DuckDBIndex, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open clinvar index: %w", err)
	}
	db, err := sql.Open("duckdb", path+"?access_mode=read_only")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	ps, err := db.Prepare(`SELECT chrom, pos, id, ref, alt, significance, review_status, gene_info
		FROM clinvar
		WHERE chrom=? AND pos=? AND ref=? AND alt=?
		ORDER BY seq`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open clinvar index %s: %w", path, err)
	}
	return &DuckDBIndex{db: db, lookupPS: ps}, nil
}

// Lookup implements Index.
func (x *DuckDBIndex) Lookup(chrom string, pos int64, ref, alt string) ([]Record, error) {
	rows, err := x.lookupPS.Query(genome.NormalizeChrom(chrom), pos, strings.ToUpper(ref), strings.ToUpper(alt))
	if err != nil {
		return nil, fmt.Errorf("clinvar lookup %s:%d: %w", chrom, pos, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Chrom, &r.Pos, &r.ID, &r.Ref, &r.Alt,
			&r.Significance, &r.ReviewStatus, &r.GeneInfo); err != nil {
			return nil, fmt.Errorf("scan clinvar record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clinvar records: %w", err)
	}
	return out, nil
}

// Source returns the provenance row written by BuildDuckDB.
func (x *DuckDBIndex) Source() (SourceInfo, error) {
	var si SourceInfo
	err := x.db.QueryRow(`SELECT source_path, source_size, source_mtime, records FROM clinvar_meta`).
		Scan(&si.Path, &si.Size, &si.ModTime, &si.Records)
	if err != nil {
		return SourceInfo{}, fmt.Errorf("read clinvar index metadata: %w", err)
	}
	return si, nil
}

// Close closes the prepared statement and the database.
func (x *DuckDBIndex) Close() error {
	x.lookupPS.Close()
	return x.db.Close()
}

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE clinvar (
		seq BIGINT,
		chrom VARCHAR,
		pos BIGINT,
		id VARCHAR,
		ref VARCHAR,
		alt VARCHAR,
		significance VARCHAR,
		review_status VARCHAR,
		gene_info VARCHAR
	)`); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE TABLE clinvar_meta (
		source_path VARCHAR,
		source_size BIGINT,
		source_mtime TIMESTAMP,
		records BIGINT
	)`)
	return err
}

// BuildDuckDB loads every allele of the ClinVar VCF at vcfPath into a fresh
// DuckDB database at dbPath, replacing any existing file. Multi-allelic
// records become one row per alternate allele.
func BuildDuckDB(vcfPath, dbPath string) (SourceInfo, error) {
	info, err := os.Stat(vcfPath)
	if err != nil {
		return SourceInfo{}, fmt.Errorf("stat clinvar vcf: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return SourceInfo{}, fmt.Errorf("create index directory: %w", err)
	}
	if err := os.Remove(dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return SourceInfo{}, fmt.Errorf("replace clinvar index: %w", err)
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return SourceInfo{}, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	if err := ensureSchema(db); err != nil {
		return SourceInfo{}, fmt.Errorf("ensure schema: %w", err)
	}

	n, err := appendVCF(db, vcfPath)
	if err != nil {
		return SourceInfo{}, err
	}

	if _, err := db.Exec(`CREATE INDEX idx_clinvar_lookup ON clinvar (chrom, pos, ref, alt)`); err != nil {
		return SourceInfo{}, fmt.Errorf("index clinvar table: %w", err)
	}

	si := SourceInfo{Path: vcfPath, Size: info.Size(), ModTime: info.ModTime().UTC(), Records: n}
	if _, err := db.Exec(`INSERT INTO clinvar_meta VALUES (?, ?, ?, ?)`,
		si.Path, si.Size, si.ModTime, si.Records); err != nil {
		return SourceInfo{}, fmt.Errorf("write clinvar index metadata: %w", err)
	}
	return si, nil
}

// appendVCF streams the VCF into the clinvar table with the Appender API.
func appendVCF(db *sql.DB, vcfPath string) (int64, error) {
	p, err := vcf.NewParser(vcfPath)
	if err != nil {
		return 0, fmt.Errorf("open clinvar vcf: %w", err)
	}
	defer p.Close()

	conn, err := db.Conn(context.Background())
	if err != nil {
		return 0, fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "clinvar")
		return err
	}); err != nil {
		return 0, fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	var seq int64
	for {
		v, err := p.Next()
		if err != nil {
			return 0, fmt.Errorf("read clinvar vcf: %w", err)
		}
		if v == nil {
			break
		}
		for _, a := range vcf.SplitMultiAllelic(v) {
			r := newRecord(a, a.Alt)
			if err := appender.AppendRow(
				seq, r.Chrom, r.Pos, r.ID, r.Ref, r.Alt,
				r.Significance, r.ReviewStatus, r.GeneInfo,
			); err != nil {
				return 0, fmt.Errorf("append clinvar record: %w", err)
			}
			seq++
		}
	}

	if err := appender.Flush(); err != nil {
		return 0, fmt.Errorf("flush clinvar records: %w", err)
	}
	return seq, nil
}
