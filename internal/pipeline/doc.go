// Package pipeline provides a framework for executing analysis steps in
// sequence.
//
// The pipeline pattern is used to process accounts through multiple stages:
// profile and post fetching, optional language-model classification, heuristic
// detection, and persistence. Each stage is implemented as a Step that
// receives the accumulated analysis state and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running analysis runs
//
// The pipeline supports both individual accounts and batch processing with
// concurrency control using errgroup.
package pipeline
