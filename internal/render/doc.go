// Package render wires the mapper, synthesis engine, and exporters into the
// pipeline the fulfillment machine invokes on consent. It owns artifact
// naming and the per-render grimoire log.
package render
