/*
Package params computes effective parameters from layered configuration.

Every function here is a pure merge: layers are applied in order, the later
layer wins per key, keys present in one layer only pass through, and the
result is a new map. Inputs are never modified and nothing is cached, so
callers may resolve from any goroutine as long as nobody mutates the
snapshot at the same time.

# Layers

Hypervisor parameters (FillHV):

	built-in defaults for the instance's hypervisor
	  └─► cluster hvparams[hv]
	        └─► cluster os_hvp[os][hv]      (only if both exist)
	              └─► instance hvparams

Node parameters (FillND):

	cluster ndparams ─► group ndparams ─► node ndparams

Instance policy (FillIPolicy, GroupIPolicy):

	DefaultIPolicy ─► cluster ipolicy ─► group ipolicy

For policies every key of the diff replaces the base value outright (a new
minmax list discards the old one) except std, which is merged per spec
parameter. Unknown keys ride along in Extra.

Resolvers never fail. Whether the result is valid is a separate question for
pkg/ipolicy.
*/
package params
