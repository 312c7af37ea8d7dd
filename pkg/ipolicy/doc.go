/*
Package ipolicy validates instance sizing policies.

Three checks are exposed, each usable on its own:

  - CheckParameterSyntax: a policy in wire form. Keys must be recognized,
    ratios numeric, disk-templates a non-empty list of known templates,
    and minmax/std integer specs (which are then passed to
    CheckISpecSyntax).
  - CheckISpecSyntax: the min/max list and std spec of a typed policy.
  - CheckDiskTemplates: an allowed disk template list.

Every failure is a *types.ConfigurationError; there is no boolean result.

# Check Order

	┌───────────────── structure ─────────────────┐   ┌──── ordering ────┐
	│ minmax non-empty                             │   │ min <= max        │
	│ every entry has min and max                  │ → │ (each entry,      │
	│ each spec has exactly the six parameters     │   │  each parameter)  │
	│ std present and complete (checkStd)          │   │ min <= std <= max │
	└──────────────────────────────────────────────┘   │ (checkStd, every  │
	                                                     │  entry)           │
	                                                     └───────────────────┘

All structural checks finish before any value is compared, so a missing
parameter is reported even when another entry also has min > max.

The std spec must fit inside every min/max entry, not just one of them.
*/
package ipolicy
