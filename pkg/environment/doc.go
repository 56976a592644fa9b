// Package environment names the deployment environments the service runs in.
package environment
