// Package process terminates the headless browser and its helper processes
// when a PDF exporter is closed.
package process
