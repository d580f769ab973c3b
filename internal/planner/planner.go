package planner

import (
	"errors"

	"disposal-platform/internal/catalog"
)

// Recommend picks a disposal method from item attributes.
//
// Rules are evaluated in order, first match wins:
//  1. facility age >= 20 years  -> production_cut (regardless of quantity)
//  2. quantity >= 500           -> recycle
//  3. quantity >= 100           -> aid
//  4. otherwise                 -> physical
//
// Pure and total: no side effects, every input maps to a method.
func Recommend(quantity, facilityAge int) catalog.Method {
	if facilityAge >= 20 {
		return catalog.MethodProductionCut
	}
	if quantity >= 500 {
		return catalog.MethodRecycle
	}
	if quantity >= 100 {
		return catalog.MethodAid
	}
	return catalog.MethodPhysical
}

var ErrUnknownMethod = errors.New("planner: unknown disposal method")

// Evaluation is the cost/benefit outcome of applying a method to a quantity.
// All amounts use integer arithmetic; inputs are integral so there is no
// rounding concern.
type Evaluation struct {
	Method          catalog.Method `json:"method"`
	Cost            int64          `json:"cost"`
	ExpectedBenefit int64          `json:"expected_benefit"`
	NetEffect       int64          `json:"net_effect"`
	EnvScore        int            `json:"env_score"`
	RiskScore       int            `json:"risk_score"`
}

// Evaluate computes cost, benefit and net effect for a method and quantity.
// Env and risk scores are copied from the catalog entry; they do not scale
// with quantity. Returns ErrUnknownMethod if the catalog has no such method.
func Evaluate(cat *catalog.Catalog, method catalog.Method, quantity int) (Evaluation, error) {
	def, ok := cat.Lookup(method)
	if !ok {
		return Evaluation{}, ErrUnknownMethod
	}

	q := int64(quantity)
	cost := def.CostPerUnit * q
	benefit := def.BenefitPerUnit * q

	return Evaluation{
		Method:          method,
		Cost:            cost,
		ExpectedBenefit: benefit,
		NetEffect:       benefit - cost,
		EnvScore:        def.EnvScore,
		RiskScore:       def.RiskScore,
	}, nil
}
