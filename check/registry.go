package check

import "github.com/wgsystem-1/SpatialCheckProMax-sub000/model"

// DefaultRegistry returns a registry with every built-in evaluator bound.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// Containment family.
	r.Register(model.CasePointCoverage, EvaluatorFunc(evalPointCoverage))
	r.Register(model.CasePointWithinPolygon, EvaluatorFunc(evalPointWithinPolygon))
	r.Register(model.CaseLineWithinPolygon, EvaluatorFunc(evalLineWithinPolygon))
	r.Register(model.CasePolygonWithinPolygon, EvaluatorFunc(evalPolygonWithinPolygon))
	r.Register(model.CasePolygonContainsLine, EvaluatorFunc(evalPolygonContainsLine))
	r.Register(model.CaseVertexAlignment, EvaluatorFunc(evalVertexAlignment))

	// Exclusion family.
	r.Register(model.CasePolygonNotOverlap, EvaluatorFunc(evalPolygonNotOverlap))
	r.Register(model.CasePolygonNotOverlapRelated, EvaluatorFunc(evalPolygonNotOverlapRelated))
	r.Register(model.CasePolygonNotIntersectLine, EvaluatorFunc(evalPolygonNotIntersectLine))
	r.Register(model.CasePolygonNotContainPoint, EvaluatorFunc(evalPolygonNotContainPoint))

	// Connectivity family.
	r.Register(model.CaseLineConnectivity, EvaluatorFunc(evalLineConnectivity))
	r.Register(model.CaseLineDisconnection, EvaluatorFunc(evalLineDisconnection))
	r.Register(model.CaseLineConnectivityByField, EvaluatorFunc(evalLineConnectivityByField))
	r.Register(model.CaseLineDisconnectByField, EvaluatorFunc(evalLineDisconnectionByField))

	// Attribute consistency family.
	r.Register(model.CaseConnectedFieldConsistency, EvaluatorFunc(evalConnectedFieldConsistency))
	r.Register(model.CaseCenterlineFieldMismatch, EvaluatorFunc(evalCenterlineFieldMismatch))

	// Geometry quality family.
	r.Register(model.CaseSharpBend, EvaluatorFunc(evalSharpBend))
	r.Register(model.CaseSelfIntersection, EvaluatorFunc(evalSelfIntersection))
	r.Register(model.CaseLineCrossLine, EvaluatorFunc(evalLineCrossLine))
	r.Register(model.CaseHoleDuplicate, EvaluatorFunc(evalHoleDuplicate))
	r.Register(model.CaseDuplicateGeometry, EvaluatorFunc(evalDuplicateGeometry))

	// Density family.
	r.Register(model.CasePointSpacing, EvaluatorFunc(evalPointSpacing))
	r.Register(model.CasePointSpacingBySurface, EvaluatorFunc(evalPointSpacingBySurface))
	r.Register(model.CaseVertexSpacing, EvaluatorFunc(evalVertexSpacing))

	return r
}
