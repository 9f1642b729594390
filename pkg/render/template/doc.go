// Package template defines the renderer seam the engines in its subpackages
// satisfy. Engines execute templates into render scopes so output is
// accumulated in pooled pages and can be streamed or composed.
package template
