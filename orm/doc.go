/*
Package orm provides an easy to use db wrapper.

Models are plain structs with a Validate method. They are serialized with the
amino binary-bare encoding and stored under a bucket prefix, so that all
instances of a model can be iterated in key order.

Sequence provides monotonic counters and Log an append-only list of models
(an index counter plus one payload entry per element).
*/
package orm
