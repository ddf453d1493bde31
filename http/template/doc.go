/*
Package template defines what a template backend for a trailrunner app does
and provides an implementation of it backed by [html/template].

Any backend satisfies [Templater] and embeds [Base],
which together satisfy the "Template" capability a runner resolves through package factory.

[*Engine] is the default backend.
Templates are looked up relative to the directory set with [*Engine.SetTemplateDir].
Every render binds the variables persisted with [*Engine.PersistTemplateVar]
followed by those passed to [*Engine.LoadTemplate], so the latter win on collision.
Variables are available in a template by name:

	<main>{{ .content }}</main>

When a request asks for it with the debug query parameter,
rendered output is outlined so it stands out on the page.
*/
package template
