// Package orchestration runs one simulation task per portfolio concurrently
// under a single wall-clock budget and collects the outcomes in input order.
// Presentation is decoupled through the ProgressReporter and ResultPresenter
// interfaces.
package orchestration
