// Package rules loads relation rule catalogs. A catalog is a CSV table
// with a header row; column matching is case-insensitive and tolerant of
// column order:
//
//	RuleId,CaseType,MainTableId,MainTableName,RelatedTableId,RelatedTableName,FieldFilter,Tolerance
//
// Only RuleId, CaseType and MainTableName are required. Tolerance is
// optional per rule; absent values fall back to the case type's default at
// evaluation time.
package rules

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
)

// Load reads a rule catalog file.
func Load(path string) ([]model.RelationRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rules: open %s: %w", path, err)
	}
	defer f.Close()
	rules, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("rules: %s: %w", path, err)
	}
	return rules, nil
}

// Parse reads a rule catalog from r.
func Parse(r io.Reader) ([]model.RelationRule, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cols := columnIndex(header)
	if _, ok := cols["ruleid"]; !ok {
		return nil, fmt.Errorf("missing RuleId column")
	}
	if _, ok := cols["casetype"]; !ok {
		return nil, fmt.Errorf("missing CaseType column")
	}
	if _, ok := cols["maintablename"]; !ok {
		return nil, fmt.Errorf("missing MainTableName column")
	}

	var rules []model.RelationRule
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rule, err := parseRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func parseRecord(record []string, cols map[string]int) (model.RelationRule, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rule := model.RelationRule{
		RuleID:           field("ruleid"),
		CaseType:         model.CaseType(field("casetype")),
		MainTableID:      field("maintableid"),
		MainTableName:    field("maintablename"),
		RelatedTableID:   field("relatedtableid"),
		RelatedTableName: field("relatedtablename"),
		FieldFilter:      field("fieldfilter"),
	}
	if rule.RuleID == "" {
		return rule, fmt.Errorf("empty RuleId")
	}
	if rule.CaseType == "" {
		return rule, fmt.Errorf("empty CaseType")
	}
	if rule.MainTableName == "" {
		return rule, fmt.Errorf("empty MainTableName")
	}
	if rule.MainTableID == "" {
		rule.MainTableID = rule.MainTableName
	}
	if rule.RelatedTableID == "" {
		rule.RelatedTableID = rule.RelatedTableName
	}

	if tol := field("tolerance"); tol != "" {
		v, err := strconv.ParseFloat(tol, 64)
		if err != nil {
			return rule, fmt.Errorf("bad Tolerance %q: %w", tol, err)
		}
		rule.Tolerance = &v
	}
	return rule, nil
}
