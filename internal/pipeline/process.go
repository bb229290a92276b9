package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bomscrub/internal"
	"bomscrub/internal/config"
	"bomscrub/internal/grid"
	"bomscrub/internal/storage"
)

// Mode selects which transformation sequence a run applies. Cost-walk output
// wants one row per physical instance; database upload wants one row per
// manufacturer with alternates folded in.
type Mode string

const (
	ModeCostWalk Mode = "costwalk"
	ModeDBUpload Mode = "db"
)

// ParseMode validates a mode string from the CLI.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModeCostWalk, ModeDBUpload:
		return Mode(value), nil
	default:
		return "", fmt.Errorf("unsupported mode: %s (want costwalk|db)", value)
	}
}

// ProcessingService runs the full extraction and normalization pipeline over
// one workbook per invocation. Each run owns its input exclusively and builds
// a new output table; a hard failure aborts the run without partial results.
type ProcessingService struct {
	cfg config.Config
	tpl config.Template
	db  *storage.DB
	log *zap.Logger
}

func NewProcessingService(cfg config.Config, tpl config.Template, db *storage.DB, log *zap.Logger) *ProcessingService {
	return &ProcessingService{cfg: cfg, tpl: tpl, db: db, log: log}
}

// Result is one completed run: the normalized BOM, everything flagged for
// manual review, and the run counters.
type Result struct {
	RunID  string
	Bom    internal.Bom
	Flags  []internal.ReviewFlag
	Counts internal.RunCounts
}

// ProcessWorkbook reads a workbook, classifies it, parses every board sheet,
// applies the mode's transformations, validates invariants, and records the
// run. Structural and data-integrity failures abort; the caller fixes the
// source file and re-runs.
func (s *ProcessingService) ProcessWorkbook(path string, mode Mode) (Result, error) {
	start := time.Now()

	sheets, err := ReadWorkbook(path)
	if err != nil {
		return Result{}, err
	}
	return s.process(filepath.Base(path), sheets, mode, start)
}

// ProcessSheets is ProcessWorkbook over grids already in memory, for callers
// with their own input provider (HTML tables, tests).
func (s *ProcessingService) ProcessSheets(fileName string, sheets []grid.Sheet, mode Mode) (Result, error) {
	return s.process(fileName, sheets, mode, time.Now())
}

func (s *ProcessingService) process(fileName string, sheets []grid.Sheet, mode Mode, start time.Time) (Result, error) {
	if !IsV3BOM(sheets, s.tpl) {
		return Result{}, fmt.Errorf("%s: no sheet matches the %s template identifiers", fileName, s.tpl.Name)
	}

	bom, flags, err := ParseBOM(fileName, sheets, s.tpl)
	if err != nil {
		return Result{}, err
	}
	if s.cfg.StrictColumns {
		for _, flag := range flags {
			if flag.Kind == internal.ReviewUnmatchedColumn {
				return Result{}, fmt.Errorf("sheet %s: column %q has no consensus rename", flag.Sheet, flag.Value)
			}
		}
	}

	counts := internal.RunCounts{Sheets: len(sheets), Boards: len(bom.Boards)}
	taxonomy := NewTaxonomy(s.tpl)

	for i, board := range bom.Boards {
		transformed, boardFlags, err := s.transformBoard(board, mode, taxonomy, &counts)
		if err != nil {
			return Result{}, err
		}
		if err := ValidateBoard(transformed); err != nil {
			return Result{}, err
		}
		bom.Boards[i] = transformed
		flags = append(flags, boardFlags...)
		counts.Records += len(transformed.Records)
	}
	counts.Reviewed = len(flags)

	result := Result{RunID: uuid.NewString(), Bom: bom, Flags: flags, Counts: counts}
	if s.db != nil {
		if err := s.db.InsertRun(result.RunID, string(mode), bom, flags, counts, time.Since(start)); err != nil {
			return Result{}, err
		}
	}

	s.log.Info("workbook processed",
		zap.String("run", result.RunID),
		zap.String("file", fileName),
		zap.String("mode", string(mode)),
		zap.Int("boards", counts.Boards),
		zap.Int("records", counts.Records),
		zap.Int("review", counts.Reviewed),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

func (s *ProcessingService) transformBoard(board internal.Board, mode Mode, taxonomy *Taxonomy, counts *internal.RunCounts) (internal.Board, []internal.ReviewFlag, error) {
	records := board.Records
	flags := []internal.ReviewFlag{}

	records, merged := MergeAlternates(records)
	counts.Merged += merged

	records = DropEmptyDesignator(records)
	records = DropZeroQty(records)

	records, err := CleanDesignators(records)
	if err != nil {
		return internal.Board{}, nil, fmt.Errorf("sheet %s: %w", board.SheetName, err)
	}

	switch mode {
	case ModeCostWalk:
		split, splitFlags, splitCount := SplitQuantities(board.SheetName, records)
		records = split
		flags = append(flags, splitFlags...)
		counts.Split += splitCount

	case ModeDBUpload:
		records = DropSubUnitQty(records)
		records = DropUnwanted(records, s.tpl.UnwantedDescriptions, s.tpl.UnwantedComponents)

		normalized, taxonomyFlags := taxonomy.NormalizeRecords(board.SheetName, records)
		records = normalized
		flags = append(flags, taxonomyFlags...)

		split, splitCount, err := SplitManufacturers(records, s.tpl.SplitExempt)
		if err != nil {
			return internal.Board{}, nil, fmt.Errorf("sheet %s: %w", board.SheetName, err)
		}
		records = split
		counts.Split += splitCount

		records = MergeTypeIntoDescription(records)
		records = StripPartNumbersFromDescription(records)

	default:
		return internal.Board{}, nil, fmt.Errorf("unsupported mode: %s", mode)
	}

	s.log.Debug("board transformed",
		zap.String("sheet", board.SheetName),
		zap.Int("records", len(records)),
		zap.Int("review", len(flags)),
	)

	board.Records = records
	return board, flags, nil
}
