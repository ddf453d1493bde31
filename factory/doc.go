/*
Package factory resolves the concrete implementation configured for a capability.

A capability is an abstract, named service - e.g., "Template" - with exactly one
concrete implementation selected by configuration at a time.
A [Capability] declares two interface types every implementation must satisfy:
its Base, which a type satisfies by embedding the capability's base struct,
and its Interface, the capability's contract.

Implementations are registered against a [*Registry] with [Register],
which checks both requirements right away.
[Load] reads factory_settings.<capability> from the config,
and constructs the implementation registered under that name,
optionally caching it as the single instance of that capability.
*/
package factory
