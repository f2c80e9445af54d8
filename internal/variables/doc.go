// Package variables declares the ritual variable catalog and validates
// candidate assignments against each variable's domain.
//
// Every variable carries a tier. Tier I variables are mandatory before a
// render may be consented to; tiers II through VI are optional and additive,
// each with a documented neutral default the equivalence mapper substitutes
// when the variable was never assigned.
//
// The catalog is fixed at compile time; treat this package as the single
// source of truth for variable identifiers, domains, and defaults.
package variables
