// Package tools implements the catalog-backed tools the specialized
// assistants run: build assembly, component prices, bottleneck estimation
// and game requirement checks. Everything answers from the in-memory
// catalog; no tool reaches out to external services.
package tools
