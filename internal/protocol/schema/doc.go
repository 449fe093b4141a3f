// Package schema names the Zusi ids this client speaks and validates the
// shape of host responses.
package schema
