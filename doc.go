// Package spatialcheck provides an embedded quality-assurance engine for
// vector geospatial datasets.
//
// The engine evaluates relation rules against a dataset's layers and
// collects findings into a validation result. Built-in evaluators cover:
//
//   - Containment: points covered by polygons, lines and polygons within
//     boundary polygons, vertex alignment against an outline
//   - Exclusion: polygon overlap within and across layers, polygons crossed
//     by lines, polygons containing forbidden points
//   - Connectivity: near-but-unsnapped line endpoints, isolated segments,
//     both optionally partitioned by an attribute field
//   - Attribute consistency: connected segments and paired centerlines that
//     disagree on compared fields, with junction and angle exemptions
//   - Geometry quality: sharp bends, self-intersections, line crossings,
//     duplicate geometry, duplicated polygon holes
//   - Density: point spacing (flat and surface-dependent) and vertex spacing
//
// # Quick Start
//
// Open a dataset, build an engine and run a rule set:
//
//	ds, err := memory.Open(layers)
//	if err != nil {
//	    panic(err)
//	}
//	defer ds.Close()
//
//	engine, err := spatialcheck.New(ds,
//	    spatialcheck.WithLogLevel(slog.LevelInfo),
//	    spatialcheck.WithProgress(func(ev model.ProgressEvent) {
//	        fmt.Printf("%s %d/%d\n", ev.CaseType, ev.Processed, ev.Total)
//	    }),
//	)
//	if err != nil {
//	    panic(err)
//	}
//	defer engine.Close()
//
//	result, err := engine.Process(ctx, rules)
//	if err != nil {
//	    panic(err)
//	}
//	for _, f := range result.Errors {
//	    fmt.Println(f.ErrorCode, f.TableName, f.FeatureID, f.Message)
//	}
//
// Rules are plain values; load them from a CSV catalog with the rules
// package or construct them directly:
//
//	rule := model.RelationRule{
//	    RuleID:        "R-001",
//	    CaseType:      model.CasePointWithinPolygon,
//	    MainTableID:   "HYDRANT",
//	    MainTableName: "hydrant",
//	    RelatedTableID:   "DISTRICT",
//	    RelatedTableName: "district",
//	}
//
// Geometry unions and spatial indexes built during a run are cached per
// table and filter, so rule sets touching the same boundary layers do not
// rebuild them. Long-lived engines call ClearExpiredCaches between runs.
package spatialcheck
