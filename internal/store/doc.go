// Package store enumerates the backing stores a setting value may live in
// and defines the Manager contract each store implements: get, set, unset
// and reset against one backend.
//
// Concrete kinds carry an explicit precedence rank; the virtual Auto kind
// reads through the concrete kinds in descending rank and returns the first
// defined value. Managers for the environment, dotenv file, project file,
// explicit override and declared-default stores live here; the
// database-backed manager lives in internal/platform/postgres.
package store
