// Package domain holds the pure campaign membership model: the role
// hierarchy, the member and invite state machines, and the policy rules
// their callers enforce. Nothing in this package touches storage.
package domain
