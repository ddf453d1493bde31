/*
Package config loads the ini file a trailrunner app is configured with.

A [*Store] is constructed once by the composition root with [New]
and loaded exactly once with [*Store.Load].
Sections in the file become the first level of keys;
values are looked up with [*Store.Get] or a whole section at a time with [*Store.Section].

	[datetime]
	timezone = America/Chicago

	[factory_settings]
	template = html

Keys are case-insensitive.
Any value can be overridden by an environment variable named SECTION_KEY,
e.g., DATETIME_TIMEZONE.
*/
package config
