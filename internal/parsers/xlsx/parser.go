// Package xlsx imports branch reference data from spreadsheet exports.
package xlsx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/branchmove/branch-service/internal/branch"
)

var (
	listSeparator = regexp.MustCompile(`[,;|]`)
	numberCleaner = regexp.MustCompile(`[\s°]`)
)

// Parser reads branch rows from an XLSX workbook
type Parser struct {
	options Options
}

// NewParser creates a new parser, filling unset options from DefaultOptions
func NewParser(options Options) *Parser {
	opts := DefaultOptions()

	if options.ColumnMapping != nil {
		opts.ColumnMapping = options.ColumnMapping
		opts.HasHeader = options.HasHeader
		opts.SkipEmptyRows = options.SkipEmptyRows
	}
	if options.Sheet != "" {
		opts.Sheet = options.Sheet
	}
	if options.DefaultDensity != "" {
		opts.DefaultDensity = options.DefaultDensity
	}

	return &Parser{
		options: opts,
	}
}

// Parse parses workbook content into branch locations. Workbook level
// failures are reported in the result, not as an error.
func (p *Parser) Parse(content []byte) (*ParseResult, error) {
	result := &ParseResult{
		Branches: make([]branch.Location, 0),
		Errors:   make([]ParseError, 0),
		Warnings: make([]ParseWarning, 0),
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		result.Errors = append(result.Errors, ParseError{
			Message: fmt.Sprintf("Failed to parse Excel file: %v", err),
		})
		return result, nil
	}
	defer f.Close()

	sheetName, err := p.selectSheet(f)
	if err != nil {
		result.Errors = append(result.Errors, ParseError{Message: err.Error()})
		return result, nil
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		result.Errors = append(result.Errors, ParseError{
			Message: fmt.Sprintf("Failed to read worksheet: %v", err),
		})
		return result, nil
	}

	if len(rows) == 0 {
		result.Warnings = append(result.Warnings, ParseWarning{Message: "Excel file is empty"})
		return result, nil
	}

	var headers []string
	dataStartRow := 0
	if p.options.HasHeader {
		headers = make([]string, len(rows[0]))
		for i, cell := range rows[0] {
			headers[i] = strings.TrimSpace(cell)
		}
		dataStartRow = 1
	}

	if len(rows) > dataStartRow {
		result.TotalRows = len(rows) - dataStartRow
	}

	cols, err := resolveColumns(headers, p.options.ColumnMapping)
	if err != nil {
		result.Errors = append(result.Errors, ParseError{Message: err.Error()})
		return result, nil
	}

	seen := make(map[string]int)
	for i := dataStartRow; i < len(rows); i++ {
		rawRow := rows[i]
		rowNumber := i + 1

		if p.options.SkipEmptyRows && isEmptyRow(rawRow) {
			continue
		}

		loc, rowErrors, rowWarnings := p.mapRow(rawRow, rowNumber, cols)
		result.Warnings = append(result.Warnings, rowWarnings...)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			continue
		}

		if err := loc.Validate(); err != nil {
			rawData, _ := json.Marshal(rawRow)
			result.Errors = append(result.Errors, ParseError{
				RowNumber:     rowNumber,
				Message:       err.Error(),
				OriginalValue: string(rawData),
			})
			continue
		}

		if first, dup := seen[loc.Name]; dup {
			result.Errors = append(result.Errors, ParseError{
				RowNumber: rowNumber,
				Field:     "name",
				Message:   fmt.Sprintf("Duplicate branch name, first seen on row %d", first),
			})
			continue
		}
		seen[loc.Name] = rowNumber

		if loc.ID == 0 {
			loc.ID = len(result.Branches) + 1
		}
		result.Branches = append(result.Branches, loc)
	}

	result.ValidRows = len(result.Branches)
	log.Debug().
		Str("sheet", sheetName).
		Int("total_rows", result.TotalRows).
		Int("valid_rows", result.ValidRows).
		Int("errors", len(result.Errors)).
		Msg("Parsed branch sheet")
	return result, nil
}

func (p *Parser) selectSheet(f *excelize.File) (string, error) {
	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	if p.options.Sheet == "" {
		return sheetList[0], nil
	}

	for _, name := range sheetList {
		if name == p.options.Sheet {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet %q not found. Available sheets: %s", p.options.Sheet, strings.Join(sheetList, ", "))
}

func resolveColumns(headers []string, mapping *ColumnMapping) (*resolvedColumns, error) {
	if mapping == nil {
		return nil, fmt.Errorf("no column mapping provided")
	}

	resolve := func(col *ColumnIndex) int {
		if col == nil {
			return InvalidIndex
		}
		if col.IsNumeric() {
			return *col.Index
		}
		if col.IsHeader() {
			want := strings.ToLower(strings.TrimSpace(*col.Header))
			for i, h := range headers {
				if strings.ToLower(h) == want {
					return i
				}
			}
		}
		return InvalidIndex
	}

	cols := &resolvedColumns{
		id:            resolve(mapping.ID),
		name:          resolve(&mapping.Name),
		region:        resolve(&mapping.Region),
		subRegion:     resolve(mapping.SubRegion),
		kind:          resolve(mapping.Type),
		lat:           resolve(&mapping.Lat),
		lon:           resolve(&mapping.Lon),
		adjacent:      resolve(mapping.ServesAdjacentRegions),
		atm:           resolve(mapping.ATMCount),
		density:       resolve(mapping.Density),
		accessible:    resolve(mapping.Accessible),
		parking:       resolve(mapping.Parking),
		extendedHours: resolve(mapping.ExtendedHours),
		easyAccess:    resolve(mapping.EasyAccess),
		serviceTypes:  resolve(mapping.ServiceTypes),
	}

	required := []struct {
		field string
		idx   int
	}{
		{"name", cols.name},
		{"region", cols.region},
		{"lat", cols.lat},
		{"lon", cols.lon},
	}
	for _, r := range required {
		if r.idx == InvalidIndex {
			return nil, fmt.Errorf("column mapping missing required field: %s", r.field)
		}
	}
	return cols, nil
}

func (p *Parser) mapRow(rawRow []string, rowNumber int, cols *resolvedColumns) (branch.Location, []ParseError, []ParseWarning) {
	var (
		errs     []ParseError
		warnings []ParseWarning
	)

	get := func(idx int) string {
		if idx == InvalidIndex || idx >= len(rawRow) {
			return ""
		}
		return strings.TrimSpace(rawRow[idx])
	}

	fail := func(field, value, msg string) {
		errs = append(errs, ParseError{RowNumber: rowNumber, Field: field, Message: msg, OriginalValue: value})
	}
	warn := func(field, msg string) {
		warnings = append(warnings, ParseWarning{RowNumber: rowNumber, Field: field, Message: msg})
	}

	flag := func(field string, idx int) bool {
		raw := get(idx)
		if raw == "" {
			return false
		}
		v, ok := parseBool(raw)
		if !ok {
			warn(field, fmt.Sprintf("Unrecognized yes/no value %q, treating as no", raw))
		}
		return v
	}

	loc := branch.Location{
		Name:                  branch.NormalizeName(get(cols.name)),
		Region:                branch.NormalizeName(get(cols.region)),
		SubRegion:             get(cols.subRegion),
		Type:                  get(cols.kind),
		ServesAdjacentRegions: flag("servesAdjacentRegions", cols.adjacent),
		Accessible:            flag("accessible", cols.accessible),
		Parking:               flag("parking", cols.parking),
		ExtendedHours:         flag("extendedHours", cols.extendedHours),
		EasyAccess:            flag("easyAccess", cols.easyAccess),
		Density:               p.options.DefaultDensity,
	}

	if raw := get(cols.id); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			warn("id", "Invalid id, a sequential id will be assigned")
		} else {
			loc.ID = id
		}
	}

	lat, err := parseDecimal(get(cols.lat))
	if err != nil {
		fail("lat", get(cols.lat), "Invalid latitude value")
	}
	lon, err := parseDecimal(get(cols.lon))
	if err != nil {
		fail("lon", get(cols.lon), "Invalid longitude value")
	}
	loc.Coordinate = branch.Coordinate{Lat: lat, Lon: lon}

	if raw := get(cols.atm); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail("atmCount", raw, "Invalid ATM count")
		} else {
			loc.ATMCount = n
		}
	}

	if raw := get(cols.density); raw != "" {
		d := branch.Density(strings.ToLower(raw))
		if !d.Valid() {
			fail("density", raw, "Density must be low, medium or high")
		} else {
			loc.Density = d
		}
	}

	for _, part := range listSeparator.Split(get(cols.serviceTypes), -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		st, ok := parseServiceType(part)
		if !ok {
			warn("serviceTypes", fmt.Sprintf("Unknown service type %q, ignoring", part))
			continue
		}
		if !loc.HasService(st) {
			loc.ServiceTypes = append(loc.ServiceTypes, st)
		}
	}
	if loc.ServiceTypes == nil {
		loc.ServiceTypes = []branch.ServiceType{}
	}

	return loc, errs, warnings
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseDecimal accepts both "41.0082" and "41,0082". A string holding both
// separators uses the last one as the decimal point.
func parseDecimal(value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty numeric value")
	}

	cleaned := numberCleaner.ReplaceAllString(value, "")

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	if lastComma > lastDot {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else if lastDot > lastComma {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	return strconv.ParseFloat(cleaned, 64)
}

func parseBool(value string) (v bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true", "1", "x":
		return true, true
	case "no", "n", "false", "0", "-":
		return false, true
	}
	return false, false
}

func parseServiceType(value string) (branch.ServiceType, bool) {
	switch strings.ToLower(value) {
	case "individual", "retail":
		return branch.ServiceIndividual, true
	case "corporate":
		return branch.ServiceCorporate, true
	case "sme":
		return branch.ServiceSME, true
	}
	return "", false
}
