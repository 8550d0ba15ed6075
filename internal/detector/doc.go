// Package detector scores accounts against behavioral bot heuristics.
//
// Two scoring surfaces are provided. Scorer implements the fast crawl-phase
// filter: an additive, uncapped rule set over a single profile snapshot,
// cheap enough to run on every discovered follower. Detector implements the
// deep analysis: weighted follow, posting-pattern, and text sub-analyses
// over the account's recent posts, producing a full AccountReport.
package detector
