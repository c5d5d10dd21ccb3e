/*
Package domain holds the vocabulary shared by the observers and their adapters.

# Channels

Every intercepted access fires three phases on a property observer: a "before" phase that
may override (reads, calls) or cancel (writes) the access, the main phase, and an "after"
phase. An object observer republishes each phase on two channels:

  - "<kind>", e.g. "set", for every property;
  - "<kind>:<property>", e.g. "set:x", for one property.

On the before phases the property channel takes precedence over the generic one.
*/
package domain
