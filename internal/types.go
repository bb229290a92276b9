package internal

// Record is one normalized BOM line. All fields are plain strings and an
// absent cell is the empty string, so consumers never deal with nil values.
type Record struct {
	Item           string
	ComponentType  string
	DevicePackage  string
	Description    string
	Unit           string
	Classification string
	Manufacturer   string
	MfgPartNumber  string
	ULVDENumber    string
	ValidatedAt    string
	Qty            string
	Designator     string
	UnitPrice      string
	SubTotal       string
}

// BoardHeader carries the board-level metadata block found above the table.
type BoardHeader struct {
	ModelNo      string
	BoardName    string
	Manufacturer string
	BuildStage   string
	Date         string
	MaterialCost string
	OverheadCost string
	TotalCost    string
}

// Board is one logical BOM instance: its metadata plus the ordered records
// parsed from a single sheet.
type Board struct {
	SheetName string
	Header    BoardHeader
	Records   []Record
}

// Bom is the top-level aggregate for one workbook.
type Bom struct {
	FileName string
	Boards   []Board
}

// ReviewKind classifies non-fatal findings that are surfaced instead of
// raised: consensus disagreements and fractional quantities.
type ReviewKind string

const (
	ReviewUnmatchedColumn ReviewKind = "unmatched_column"
	ReviewUnknownCategory ReviewKind = "unknown_category"
	ReviewFractionalQty   ReviewKind = "fractional_qty"
)

// ReviewFlag records a value the pipeline kept unchanged because it could not
// be normalized with confidence.
type ReviewFlag struct {
	Kind  ReviewKind
	Sheet string
	Item  string
	Value string
}

// RunCounts summarizes one pipeline run for bookkeeping.
type RunCounts struct {
	Sheets   int
	Boards   int
	Records  int
	Split    int
	Merged   int
	Reviewed int
}

// RunRow is one stored pipeline run as listed from the database.
type RunRow struct {
	ID        string
	FileName  string
	Mode      string
	Counts    RunCounts
	TookMs    int64
	CreatedAt string
}
