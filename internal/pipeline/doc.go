// Package pipeline runs one extension build from source to deployment.
//
// The stages run strictly in order: fetch, locate, patch, build, deploy.
// The first failing stage stops the run and its error is returned wrapped
// in a *StageError naming the stage.
package pipeline
