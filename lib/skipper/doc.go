// Package skipper is a thin layer over GORM for resources served by a REST API.
//
// A record type usually gets a companion creation type generated by
// newmodelgen: the same fields minus the primary key, with an alias-keyed
// Get/Set pair. Model is the capability both sides share, so a creation value
// can be copied into the stored record and turned into an all-equal Predicate.
// QueryFilter folds URL query parameters into the same kind of Predicate.
package skipper
