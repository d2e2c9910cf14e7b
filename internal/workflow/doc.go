// Package workflow coordinates job processing with a bounded worker pool.
//
// Workers claim the oldest queued job from the store (the claim itself is
// the durable queued-to-processing transition), run transcription and then
// frame extraction sequentially, package the archive, and record a terminal
// state. Progress events bracket each stage but never gate progression.
// Uploaded source files are deleted exactly once when a job reaches a
// terminal state, whichever one that is.
package workflow
