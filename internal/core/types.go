package core

import "orgmatrix/pkg/domain"

type (
	Organization    = domain.Organization
	Branding        = domain.Branding
	Course          = domain.Course
	Assignment      = domain.Assignment
	Matrix          = domain.Matrix
	Result          = domain.Result
	RulesEngine     = domain.RulesEngine
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
)
