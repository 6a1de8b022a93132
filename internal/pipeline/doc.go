// Package pipeline drives the three kmerx modes. Each mode is a strictly
// sequential walk through named states; external work goes through the
// engine.Engine interface, so the whole flow runs in tests against a fake.
package pipeline
