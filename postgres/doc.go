/*
Package postgres connects a trailrunner app to PostgreSQL through GORM.

Connection details come from the [database] section of the app's ini file.
Connecting runs any migrations not yet recorded in the migrations table;
with testdb set, the public schema is dropped first.
GORM's own log output goes through the app's logger.Logger.
*/
package postgres
