package core

import "orgmatrix/pkg/domain"

// DefaultRulesEngine returns an engine with the standard integrity rules
// registered. Every persistent store should be built on one of these unless a
// test needs to bypass rule evaluation.
func DefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(MatrixIntegrityRule())
	engine.Register(AssignmentValueRule())
	return engine
}
