package xlsx

import "github.com/branchmove/branch-service/internal/branch"

// ColumnIndex locates a column either by numeric position or by header name
type ColumnIndex struct {
	// Index is the numeric column index (0-based)
	Index *int `json:"index,omitempty"`
	// Header is the header name to match (case-insensitive)
	Header *string `json:"header,omitempty"`
}

// NewNumericIndex creates a column index from a numeric position
func NewNumericIndex(index int) ColumnIndex {
	return ColumnIndex{Index: &index}
}

// NewHeaderIndex creates a column index from a header name
func NewHeaderIndex(header string) ColumnIndex {
	return ColumnIndex{Header: &header}
}

// IsNumeric returns true if this is a numeric index
func (c ColumnIndex) IsNumeric() bool {
	return c.Index != nil
}

// IsHeader returns true if this is a header-based index
func (c ColumnIndex) IsHeader() bool {
	return c.Header != nil
}

func header(name string) *ColumnIndex {
	c := NewHeaderIndex(name)
	return &c
}

// ColumnMapping maps branch fields to sheet columns
type ColumnMapping struct {
	ID                    *ColumnIndex `json:"id,omitempty"`
	Name                  ColumnIndex  `json:"name"`   // Required
	Region                ColumnIndex  `json:"region"` // Required
	SubRegion             *ColumnIndex `json:"subRegion,omitempty"`
	Type                  *ColumnIndex `json:"type,omitempty"`
	Lat                   ColumnIndex  `json:"lat"` // Required
	Lon                   ColumnIndex  `json:"lon"` // Required
	ServesAdjacentRegions *ColumnIndex `json:"servesAdjacentRegions,omitempty"`
	ATMCount              *ColumnIndex `json:"atmCount,omitempty"`
	Density               *ColumnIndex `json:"density,omitempty"`
	Accessible            *ColumnIndex `json:"accessible,omitempty"`
	Parking               *ColumnIndex `json:"parking,omitempty"`
	ExtendedHours         *ColumnIndex `json:"extendedHours,omitempty"`
	EasyAccess            *ColumnIndex `json:"easyAccess,omitempty"`
	ServiceTypes          *ColumnIndex `json:"serviceTypes,omitempty"`
}

// DefaultColumnMapping matches the header row of the branch export sheet
func DefaultColumnMapping() *ColumnMapping {
	return &ColumnMapping{
		ID:                    header("ID"),
		Name:                  NewHeaderIndex("Name"),
		Region:                NewHeaderIndex("Region"),
		SubRegion:             header("Sub Region"),
		Type:                  header("Type"),
		Lat:                   NewHeaderIndex("Latitude"),
		Lon:                   NewHeaderIndex("Longitude"),
		ServesAdjacentRegions: header("Serves Adjacent Regions"),
		ATMCount:              header("ATM Count"),
		Density:               header("Density"),
		Accessible:            header("Accessible"),
		Parking:               header("Parking"),
		ExtendedHours:         header("Extended Hours"),
		EasyAccess:            header("Easy Access"),
		ServiceTypes:          header("Service Types"),
	}
}

// Options represents branch sheet parser options
type Options struct {
	// ColumnMapping is the mapping configuration
	ColumnMapping *ColumnMapping `json:"columnMapping,omitempty"`
	// HasHeader indicates whether the first row is a header
	HasHeader bool `json:"hasHeader,omitempty"`
	// SkipEmptyRows indicates whether to skip empty rows
	SkipEmptyRows bool `json:"skipEmptyRows,omitempty"`
	// Sheet is the sheet name to parse (default: first sheet)
	Sheet string `json:"sheet,omitempty"`
	// DefaultDensity applies when the density cell is blank
	DefaultDensity branch.Density `json:"defaultDensity,omitempty"`
}

// DefaultOptions returns default parser options
func DefaultOptions() Options {
	return Options{
		ColumnMapping:  DefaultColumnMapping(),
		HasHeader:      true,
		SkipEmptyRows:  true,
		DefaultDensity: branch.DensityMedium,
	}
}

// ParseError is a row-level problem that drops the row
type ParseError struct {
	RowNumber     int    `json:"rowNumber,omitempty"`
	Field         string `json:"field,omitempty"`
	Message       string `json:"message"`
	OriginalValue string `json:"originalValue,omitempty"`
}

// ParseWarning is a row-level problem that keeps the row
type ParseWarning struct {
	RowNumber int    `json:"rowNumber,omitempty"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
}

// ParseResult is the outcome of parsing one workbook
type ParseResult struct {
	Branches  []branch.Location `json:"branches"`
	Errors    []ParseError      `json:"errors"`
	Warnings  []ParseWarning    `json:"warnings"`
	TotalRows int               `json:"totalRows"`
	ValidRows int               `json:"validRows"`
}

// InvalidIndex indicates a column was not found or not specified
const InvalidIndex = -1

type resolvedColumns struct {
	id            int
	name          int
	region        int
	subRegion     int
	kind          int
	lat           int
	lon           int
	adjacent      int
	atm           int
	density       int
	accessible    int
	parking       int
	extendedHours int
	easyAccess    int
	serviceTypes  int
}
